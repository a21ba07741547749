package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"db_migrator/internal/config"

	_ "modernc.org/sqlite"
)

type SQLiteConnector struct {
	baseConnector
	config config.DatabaseConfig
}

func NewSQLiteConnector(cfg config.DatabaseConfig) *SQLiteConnector {
	return &SQLiteConnector{
		baseConnector: baseConnector{dialect: "sqlite"},
		config:        cfg,
	}
}

func (s *SQLiteConnector) dsn() string {
	if s.config.DSN != "" {
		return s.config.DSN
	}
	dsn := s.config.DBName
	if !strings.Contains(dsn, "?") && dsn != ":memory:" {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	}
	return dsn
}

func (s *SQLiteConnector) Connect() error {
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// одно соединение: иначе :memory: у каждого соединения своя база
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	s.db = db
	return nil
}

func (s *SQLiteConnector) Insert(ctx context.Context, table string, columns []string, values []interface{}) (interface{}, error) {
	return s.insertWithLastID(ctx, table, columns, values)
}

func (s *SQLiteConnector) ExecuteProcedure(ctx context.Context, procName string, args ...interface{}) (int, error) {
	return 0, fmt.Errorf("sqlite does not support stored procedures (%s)", procName)
}

// Exec выполняет произвольный запрос, используется для подготовки схемы
func (s *SQLiteConnector) Exec(ctx context.Context, query string, args ...interface{}) error {
	if s.db == nil {
		return fmt.Errorf("not connected to database")
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec failed: %w", err)
	}
	return nil
}
