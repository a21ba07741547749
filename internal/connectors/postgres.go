package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"db_migrator/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresConnector struct {
	baseConnector
	config config.DatabaseConfig
	// IDColumn колонка первичного ключа для RETURNING
	IDColumn string
}

func NewPostgresConnector(cfg config.DatabaseConfig) *PostgresConnector {
	return &PostgresConnector{
		baseConnector: baseConnector{dialect: "postgres"},
		config:        cfg,
		IDColumn:      "id",
	}
}

func (p *PostgresConnector) dsn() string {
	if p.config.DSN != "" {
		return p.config.DSN
	}
	port := p.config.Port
	if port == 0 {
		port = 5432
	}
	sslMode := p.config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.config.User, p.config.Password),
		Host:   fmt.Sprintf("%s:%d", p.config.Host, port),
		Path:   "/" + p.config.DBName,
	}
	q := u.Query()
	q.Set("sslmode", sslMode)
	if p.config.Timeout > 0 {
		q.Set("connect_timeout", fmt.Sprintf("%d", p.config.Timeout))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (p *PostgresConnector) Connect() error {
	db, err := sql.Open("pgx", p.dsn())
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping failed: %w", err)
	}

	p.db = db
	return nil
}

func (p *PostgresConnector) Insert(ctx context.Context, table string, columns []string, values []interface{}) (interface{}, error) {
	if p.db == nil {
		return nil, fmt.Errorf("not connected to database")
	}
	stmt, err := p.insertStatement(table, columns)
	if err != nil {
		return nil, err
	}
	idCol, err := p.QuoteIdent(p.IDColumn)
	if err != nil {
		return nil, err
	}

	var id interface{}
	if err := p.db.QueryRowContext(ctx, stmt+" RETURNING "+idCol, values...).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert into %s failed: %w", table, err)
	}
	return normalizeValue(id), nil
}

func (p *PostgresConnector) ExecuteProcedure(ctx context.Context, procName string, args ...interface{}) (int, error) {
	if p.db == nil {
		return 0, fmt.Errorf("not connected to database")
	}
	quoted, err := p.QuoteIdent(procName)
	if err != nil {
		return 0, err
	}
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = p.Placeholder(i + 1)
	}
	query := fmt.Sprintf("CALL %s(%s)", quoted, strings.Join(placeholders, ", "))

	result, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute procedure %s: %w", procName, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for procedure %s: %w", procName, err)
	}

	return int(rowsAffected), nil
}
