package datasource

import (
	"context"
	"fmt"
	"os"

	"db_migrator/internal/domain"

	"github.com/tidwall/gjson"
)

// JSONSource читает выгрузку в JSON. resource это путь gjson (users, data.users),
// пустой resource означает весь документ.
type JSONSource struct {
	path string
}

func NewJSONSource(path string) *JSONSource {
	return &JSONSource{path: path}
}

func (s *JSONSource) FetchAll(ctx context.Context, resource string, criteria domain.Criteria) ([]domain.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read json source %s: %w", s.path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json in %s", s.path)
	}

	result := gjson.ParseBytes(data)
	if resource != "" {
		result = result.Get(resource)
	}
	if !result.Exists() {
		return []domain.Record{}, nil
	}

	var items []gjson.Result
	switch {
	case result.IsArray():
		items = result.Array()
	case result.IsObject() && keyedRows(result):
		// {"10": {...}, "11": {...}}: каждая запись это значение по ключу
		result.ForEach(func(_, value gjson.Result) bool {
			items = append(items, value)
			return true
		})
	case result.IsObject():
		items = []gjson.Result{result}
	default:
		return nil, fmt.Errorf("json resource %q is not an object or array", resource)
	}

	records := make([]domain.Record, 0, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !item.IsObject() {
			return nil, fmt.Errorf("json resource %q: item %d is not an object", resource, i)
		}
		fields, _ := item.Value().(map[string]interface{})
		record := domain.Record(fields)
		if criteria.Match(record) {
			records = append(records, record)
		}
	}
	return records, nil
}

// keyedRows истинно для непустого объекта, все значения которого объекты
func keyedRows(result gjson.Result) bool {
	keyed := false
	result.ForEach(func(_, value gjson.Result) bool {
		keyed = value.IsObject()
		return keyed
	})
	return keyed
}
