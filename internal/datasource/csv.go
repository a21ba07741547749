package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"db_migrator/internal/domain"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVSource один файл на таблицу, первая строка заголовок. resource игнорируется.
type CSVSource struct {
	path      string
	delimiter rune
	encoding  string
}

type CSVOption func(*CSVSource)

func WithDelimiter(d rune) CSVOption {
	return func(s *CSVSource) {
		s.delimiter = d
	}
}

// WithEncoding поддерживает utf-8, latin-1 и windows-1251
func WithEncoding(name string) CSVOption {
	return func(s *CSVSource) {
		s.encoding = name
	}
}

func NewCSVSource(path string, opts ...CSVOption) *CSVSource {
	s := &CSVSource{path: path, delimiter: ','}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CSVSource) decoder() (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s.encoding)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251, nil
	default:
		return nil, fmt.Errorf("unsupported csv encoding: %s", s.encoding)
	}
}

func (s *CSVSource) FetchAll(ctx context.Context, resource string, criteria domain.Criteria) ([]domain.Record, error) {
	enc, err := s.decoder()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv source %s: %w", s.path, err)
	}
	defer f.Close()

	var r io.Reader
	if enc != nil {
		r = transform.NewReader(f, enc.NewDecoder())
	} else {
		// BOM в начале utf-8 файла иначе попадает в имя первой колонки
		r = transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}

	reader := csv.NewReader(r)
	reader.Comma = s.delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv source %s has no header row", s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header from %s: %w", s.path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []domain.Record
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d from %s: %w", line, s.path, err)
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("csv line %d in %s has %d fields, header has %d", line, s.path, len(row), len(header))
		}

		record := make(domain.Record, len(header))
		for i, col := range header {
			record[col] = row[i]
		}
		if criteria.Match(record) {
			records = append(records, record)
		}
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}
