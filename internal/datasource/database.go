package datasource

import (
	"context"
	"fmt"
	"strings"

	"db_migrator/internal/connectors"
	"db_migrator/internal/domain"
)

// DatabaseSource читает старые таблицы через коннектор
type DatabaseSource struct {
	conn connectors.DatabaseConnector
}

func NewDatabaseSource(conn connectors.DatabaseConnector) *DatabaseSource {
	return &DatabaseSource{conn: conn}
}

func (s *DatabaseSource) FetchAll(ctx context.Context, resource string, criteria domain.Criteria) ([]domain.Record, error) {
	query, args, err := s.buildSelect(resource, "*", criteria)
	if err != nil {
		return nil, err
	}
	return s.conn.ExecuteSelect(ctx, query, args...)
}

func (s *DatabaseSource) FetchColumn(ctx context.Context, resource, column string, criteria domain.Criteria) ([]interface{}, error) {
	col, err := s.conn.QuoteIdent(column)
	if err != nil {
		return nil, err
	}
	query, args, err := s.buildSelect(resource, col, criteria)
	if err != nil {
		return nil, err
	}
	records, err := s.conn.ExecuteSelect(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return firstColumn(records, column), nil
}

func (s *DatabaseSource) FetchOne(ctx context.Context, resource, column string, criteria domain.Criteria) (interface{}, error) {
	col, err := s.conn.QuoteIdent(column)
	if err != nil {
		return nil, err
	}
	query, args, err := s.buildSelect(resource, col, criteria)
	if err != nil {
		return nil, err
	}
	if s.conn.Dialect() == "oracle" {
		query += " FETCH FIRST 1 ROWS ONLY"
	} else {
		query += " LIMIT 1"
	}
	records, err := s.conn.ExecuteSelect(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	values := firstColumn(records, column)
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// FetchAllByQuery выполняет запрос как есть, плейсхолдеры в синтаксисе драйвера
func (s *DatabaseSource) FetchAllByQuery(ctx context.Context, query string, args ...interface{}) ([]domain.Record, error) {
	return s.conn.ExecuteSelect(ctx, query, args...)
}

func (s *DatabaseSource) buildSelect(resource, columns string, criteria domain.Criteria) (string, []interface{}, error) {
	table, err := s.conn.QuoteIdent(resource)
	if err != nil {
		return "", nil, fmt.Errorf("invalid resource: %w", err)
	}
	where, args, err := s.whereClause(criteria)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT %s FROM %s%s", columns, table, where), args, nil
}

// whereClause собирает условия field = ? через AND
func (s *DatabaseSource) whereClause(criteria domain.Criteria) (string, []interface{}, error) {
	if len(criteria) == 0 {
		return "", nil, nil
	}

	keys := criteria.Keys()
	conds := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	for i, field := range keys {
		col, err := s.conn.QuoteIdent(field)
		if err != nil {
			return "", nil, fmt.Errorf("invalid criteria field: %w", err)
		}
		conds = append(conds, fmt.Sprintf("%s = %s", col, s.conn.Placeholder(i+1)))
		args = append(args, criteria[field])
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// firstColumn вытаскивает значения колонки. Драйверы могут вернуть имя
// в другом регистре (Oracle), поэтому при промахе берется единственная колонка.
func firstColumn(records []domain.Record, column string) []interface{} {
	out := make([]interface{}, 0, len(records))
	for _, r := range records {
		if v, ok := r[column]; ok {
			out = append(out, v)
			continue
		}
		for _, v := range r {
			out = append(out, v)
			break
		}
	}
	return out
}
