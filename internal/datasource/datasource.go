// Package datasource описывает источники старых данных: база, JSON и CSV файлы.
package datasource

import (
	"context"
	"fmt"

	"db_migrator/internal/config"
	"db_migrator/internal/connectors"
	"db_migrator/internal/domain"
)

// DataSource базовый контракт: все строки ресурса, подходящие под фильтр
type DataSource interface {
	FetchAll(ctx context.Context, resource string, criteria domain.Criteria) ([]domain.Record, error)
}

// AdvancedDataSource нужен постпроцессорам, которым мало FetchAll
type AdvancedDataSource interface {
	DataSource
	FetchColumn(ctx context.Context, resource, column string, criteria domain.Criteria) ([]interface{}, error)
	// FetchOne возвращает nil, если строк нет
	FetchOne(ctx context.Context, resource, column string, criteria domain.Criteria) (interface{}, error)
	FetchAllByQuery(ctx context.Context, query string, args ...interface{}) ([]domain.Record, error)
}

// New создает источник для таблицы. Для database коннектор берется из
// connections по имени из data_source.connection и должен быть уже подключен.
func New(cfg config.DataSourceConfig, table config.TableConfig, connections map[string]connectors.DatabaseConnector) (DataSource, error) {
	switch cfg.Type {
	case config.SourceDatabase:
		conn, ok := connections[cfg.Connection]
		if !ok {
			return nil, fmt.Errorf("connection %s is not opened", cfg.Connection)
		}
		return NewDatabaseSource(conn), nil
	case config.SourceJSON:
		if table.SourcePath == "" {
			return nil, fmt.Errorf("missing source_path for %s with json data source", table.Entity)
		}
		return NewJSONSource(table.SourcePath), nil
	case config.SourceCSV:
		if table.SourcePath == "" {
			return nil, fmt.Errorf("missing source_path for %s with csv data source", table.Entity)
		}
		opts := []CSVOption{WithEncoding(cfg.Encoding)}
		if cfg.Delimiter != "" {
			opts = append(opts, WithDelimiter([]rune(cfg.Delimiter)[0]))
		}
		return NewCSVSource(table.SourcePath, opts...), nil
	default:
		return nil, fmt.Errorf("unknown data source type: %s", cfg.Type)
	}
}
