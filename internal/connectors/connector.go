package connectors

import (
	"context"
	"fmt"

	"db_migrator/internal/config"
	"db_migrator/internal/domain"
)

type DatabaseConnector interface {
	// Функции по умолчанию
	Connect() error
	Ping() error
	Disconnect() error

	// Dialect имя диалекта: mariadb, oracle, postgres, sqlite
	Dialect() string
	// Placeholder плейсхолдер параметра с номером index (с единицы)
	Placeholder(index int) string
	// QuoteIdent проверяет и экранирует имя таблицы или колонки
	QuoteIdent(name string) (string, error)

	// SELECT query and return []records
	ExecuteSelect(ctx context.Context, query string, args ...interface{}) ([]domain.Record, error)
	// Insert вставляет строку и возвращает сгенерированный id
	Insert(ctx context.Context, table string, columns []string, values []interface{}) (interface{}, error)
	// DeleteAll очищает таблицу и возвращает число удаленных строк
	DeleteAll(ctx context.Context, table string) (int64, error)
	// Для процедур
	ExecuteProcedure(ctx context.Context, procName string, args ...interface{}) (int, error)
}

// New создает коннектор по драйверу из конфига. Подключение не открывается.
func New(cfg config.DatabaseConfig) (DatabaseConnector, error) {
	switch cfg.Driver {
	case "mariadb", "mysql":
		return NewMariaDBConnector(cfg), nil
	case "oracle":
		return NewOracleConnector(cfg), nil
	case "postgres":
		return NewPostgresConnector(cfg), nil
	case "sqlite":
		return NewSQLiteConnector(cfg), nil
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}
