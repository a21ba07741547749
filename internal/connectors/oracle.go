package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"db_migrator/internal/config"

	go_ora "github.com/sijms/go-ora/v2"
)

type OracleConnector struct {
	baseConnector
	config config.DatabaseConfig
	// IDColumn колонка первичного ключа для RETURNING INTO
	IDColumn string
}

func NewOracleConnector(cfg config.DatabaseConfig) *OracleConnector {
	return &OracleConnector{
		baseConnector: baseConnector{dialect: "oracle"},
		config:        cfg,
		IDColumn:      "id",
	}
}

func (o *OracleConnector) dsn() string {
	if o.config.DSN != "" {
		return o.config.DSN
	}
	port := o.config.Port
	if port == 0 {
		port = 1521
	}
	options := map[string]string{}
	if o.config.Timeout > 0 {
		options["TIMEOUT"] = fmt.Sprintf("%d", o.config.Timeout)
	}
	return go_ora.BuildUrl(o.config.Host, port, o.config.DBName, o.config.User, o.config.Password, options)
}

func (o *OracleConnector) Connect() error {
	db, err := sql.Open("oracle", o.dsn())
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(20)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping failed: %w", err)
	}

	o.db = db
	return nil
}

// Insert использует RETURNING ... INTO, так как LastInsertId в Oracle нет
func (o *OracleConnector) Insert(ctx context.Context, table string, columns []string, values []interface{}) (interface{}, error) {
	if o.db == nil {
		return nil, fmt.Errorf("not connected to database")
	}
	stmt, err := o.insertReturning(table, columns)
	if err != nil {
		return nil, err
	}

	var id int64
	args := append(append([]interface{}{}, values...), sql.Out{Dest: &id})
	if _, err := o.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("insert into %s failed: %w", table, err)
	}
	return id, nil
}

// insertReturning собирает INSERT ... RETURNING id INTO :n.
// DEFAULT VALUES Oracle не поддерживает, поэтому пустая строка вставляется через DEFAULT в колонку id.
func (o *OracleConnector) insertReturning(table string, columns []string) (string, error) {
	idCol, err := o.QuoteIdent(o.IDColumn)
	if err != nil {
		return "", err
	}

	var stmt string
	if len(columns) == 0 {
		quotedTable, err := o.QuoteIdent(table)
		if err != nil {
			return "", err
		}
		stmt = fmt.Sprintf("INSERT INTO %s (%s) VALUES (DEFAULT)", quotedTable, idCol)
	} else if stmt, err = o.insertStatement(table, columns); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s RETURNING %s INTO %s", stmt, idCol, o.Placeholder(len(columns)+1)), nil
}

func (o *OracleConnector) ExecuteProcedure(ctx context.Context, procName string, args ...interface{}) (int, error) {
	if o.db == nil {
		return 0, fmt.Errorf("not connected to database")
	}
	quoted, err := o.QuoteIdent(procName)
	if err != nil {
		return 0, err
	}
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = o.Placeholder(i + 1)
	}
	query := fmt.Sprintf("BEGIN %s(%s); END;", quoted, strings.Join(placeholders, ", "))

	result, err := o.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute procedure %s: %w", procName, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for procedure %s: %w", procName, err)
	}

	return int(rowsAffected), nil
}
