// Package engine wraps an embedded DuckDB database and exposes the two
// operations the resolution loop needs: ad hoc query execution and schema
// introspection. Registered tables are read-only from the loop's
// perspective; only the ETL loader writes to them.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// Config holds the configuration for the engine.
type Config struct {
	Logger *slog.Logger

	// Path is the DuckDB database file path. Empty means in-memory.
	Path string
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

// Engine is an embedded DuckDB data engine.
type Engine struct {
	log *slog.Logger
	cfg Config
	db  *sql.DB
}

// New opens the DuckDB database and returns an Engine.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate engine config: %w", err)
	}

	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Engine{
		log: cfg.Logger,
		cfg: cfg,
		db:  db,
	}, nil
}

// DB exposes the underlying database handle for loaders and tests.
func (e *Engine) DB() *sql.DB {
	return e.db
}

func (e *Engine) Close() error {
	return e.db.Close()
}

// QueryError is a failed query execution. Message carries the engine-native
// diagnostic verbatim; the resolution loop feeds it back to the resolver.
type QueryError struct {
	SQL     string
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

// Execute runs a SQL query and materializes the full result set.
// SQL-level failures are returned as *QueryError.
func (e *Engine) Execute(ctx context.Context, sqlText string) (*ResultSet, error) {
	sqlText = strings.TrimSuffix(strings.TrimSpace(sqlText), ";")

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, &QueryError{SQL: sqlText, Message: err.Error()}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var resultRows []Row
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row)
		for i, col := range columns {
			val := values[i]
			if val == nil {
				row[col] = nil
			} else {
				switch v := val.(type) {
				case []byte:
					row[col] = string(v)
				default:
					row[col] = val
				}
			}
		}
		resultRows = append(resultRows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: sqlText, Message: err.Error()}
	}

	e.log.Debug("engine: query executed", "rows", len(resultRows))

	return &ResultSet{
		SQL:     sqlText,
		Columns: columns,
		Rows:    resultRows,
		Count:   len(resultRows),
	}, nil
}
