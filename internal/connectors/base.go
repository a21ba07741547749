package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"db_migrator/internal/domain"
)

// baseConnector общая часть для всех диалектов поверх database/sql
type baseConnector struct {
	db      *sql.DB
	dialect string
}

func (b *baseConnector) Dialect() string { return b.dialect }

func (b *baseConnector) Disconnect() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *baseConnector) Ping() error {
	if b.db == nil {
		return fmt.Errorf("not connected to database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return b.db.PingContext(ctx)
}

func (b *baseConnector) Placeholder(index int) string {
	switch b.dialect {
	case "postgres":
		return fmt.Sprintf("$%d", index)
	case "oracle":
		return fmt.Sprintf(":%d", index)
	default: // mariadb, sqlite
		return "?"
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z0-9_\.]+$`)

// QuoteIdent поддерживает имена вида schema.table
func (b *baseConnector) QuoteIdent(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty identifier")
	}
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("invalid identifier: %s", name)
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "" {
			return "", fmt.Errorf("invalid identifier: %s", name)
		}
		switch b.dialect {
		case "mariadb", "sqlite":
			parts[i] = "`" + p + "`"
		case "oracle":
			// кавычки в Oracle делают имя регистрозависимым
			parts[i] = p
		default: // postgres
			parts[i] = "\"" + p + "\""
		}
	}
	return strings.Join(parts, "."), nil
}

func (b *baseConnector) ExecuteSelect(ctx context.Context, query string, args ...interface{}) ([]domain.Record, error) {
	if b.db == nil {
		return nil, fmt.Errorf("not connected to database")
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (b *baseConnector) DeleteAll(ctx context.Context, table string) (int64, error) {
	if b.db == nil {
		return 0, fmt.Errorf("not connected to database")
	}
	quoted, err := b.QuoteIdent(table)
	if err != nil {
		return 0, err
	}
	result, err := b.db.ExecContext(ctx, "DELETE FROM "+quoted)
	if err != nil {
		return 0, fmt.Errorf("delete from %s failed: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", table, err)
	}
	return affected, nil
}

// insertStatement собирает INSERT с плейсхолдерами текущего диалекта
func (b *baseConnector) insertStatement(table string, columns []string) (string, error) {
	quotedTable, err := b.QuoteIdent(table)
	if err != nil {
		return "", err
	}
	if len(columns) == 0 {
		if b.dialect == "mariadb" {
			return fmt.Sprintf("INSERT INTO %s () VALUES ()", quotedTable), nil
		}
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", quotedTable), nil
	}

	quotedCols := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		if quotedCols[i], err = b.QuoteIdent(col); err != nil {
			return "", err
		}
		placeholders[i] = b.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quotedTable, strings.Join(quotedCols, ","), strings.Join(placeholders, ",")), nil
}

// insertWithLastID для диалектов, где драйвер поддерживает LastInsertId
func (b *baseConnector) insertWithLastID(ctx context.Context, table string, columns []string, values []interface{}) (interface{}, error) {
	if b.db == nil {
		return nil, fmt.Errorf("not connected to database")
	}
	stmt, err := b.insertStatement(table, columns)
	if err != nil {
		return nil, err
	}
	result, err := b.db.ExecContext(ctx, stmt, values...)
	if err != nil {
		return nil, fmt.Errorf("insert into %s failed: %w", table, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get generated id for %s: %w", table, err)
	}
	return id, nil
}

func scanRecords(rows *sql.Rows) ([]domain.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var records []domain.Record
	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}

		record := make(domain.Record, len(columns))
		for i, colName := range columns {
			record[colName] = normalizeValue(values[i])
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// normalizeValue приводит значения драйверов к простым типам
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		// Конвертируем []byte в string (для TEXT, BLOB и т.д.)
		return string(val)
	case time.Time, string, int64, float64, bool:
		return val
	case int32:
		return int64(val)
	case int16:
		return int64(val)
	case int8:
		return int64(val)
	case int:
		return int64(val)
	case float32:
		return float64(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
