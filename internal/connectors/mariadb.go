package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"db_migrator/internal/config"

	"github.com/go-sql-driver/mysql"
)

type MariaDBConnector struct {
	baseConnector
	config config.DatabaseConfig
}

func NewMariaDBConnector(cfg config.DatabaseConfig) *MariaDBConnector {
	return &MariaDBConnector{
		baseConnector: baseConnector{dialect: "mariadb"},
		config:        cfg,
	}
}

// dsn собирает строку подключения, если она не задана явно
func (m *MariaDBConnector) dsn() string {
	if m.config.DSN != "" {
		return m.config.DSN
	}
	c := mysql.NewConfig()
	c.User = m.config.User
	c.Passwd = m.config.Password
	c.Net = "tcp"
	port := m.config.Port
	if port == 0 {
		port = 3306
	}
	c.Addr = fmt.Sprintf("%s:%d", m.config.Host, port)
	c.DBName = m.config.DBName
	c.ParseTime = true
	if m.config.Timeout > 0 {
		c.Timeout = time.Duration(m.config.Timeout) * time.Second
	}
	return c.FormatDSN()
}

func (m *MariaDBConnector) Connect() error {
	db, err := sql.Open("mysql", m.dsn())
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("ping failed: %w", err)
	}

	m.db = db
	return nil
}

func (m *MariaDBConnector) Insert(ctx context.Context, table string, columns []string, values []interface{}) (interface{}, error) {
	return m.insertWithLastID(ctx, table, columns, values)
}

func (m *MariaDBConnector) ExecuteProcedure(ctx context.Context, procName string, args ...interface{}) (int, error) {
	if m.db == nil {
		return 0, fmt.Errorf("not connected to database")
	}
	quoted, err := m.QuoteIdent(procName)
	if err != nil {
		return 0, err
	}
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = "?"
	}
	query := fmt.Sprintf("CALL %s(%s)", quoted, strings.Join(placeholders, ", "))

	result, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute procedure %s: %w", procName, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for procedure %s: %w", procName, err)
	}

	return int(rowsAffected), nil
}
