package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const metastoreColumnsQuery = `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2
	ORDER BY ordinal_position
`

// Metastore resolves columns from a relational catalog reachable over the
// pgx driver. Table names of the form schema.table split on the first
// dot; bare names are looked up under public.
type Metastore struct {
	DSN    string
	Logger *slog.Logger

	db *sql.DB
}

// NewMetastore returns the catalog strategy for the given DSN. An empty
// DSN leaves the strategy unavailable. If logger is nil, a discard
// logger is used.
func NewMetastore(dsn string, logger *slog.Logger) *Metastore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Metastore{DSN: dsn, Logger: logger}
}

// NewMetastoreDB wraps an existing connection, used by tests.
func NewMetastoreDB(db *sql.DB, logger *slog.Logger) *Metastore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Metastore{Logger: logger, db: db}
}

func (m *Metastore) Name() string {
	return "metastore"
}

// Columns queries the information schema for the table's columns in
// ordinal order.
func (m *Metastore) Columns(ctx context.Context, table string) ([]string, error) {
	db, err := m.open()
	if err != nil {
		return nil, err
	}

	schemaName := "public"
	tableName := table
	if before, after, found := strings.Cut(table, "."); found {
		schemaName = before
		tableName = after
	}

	rows, err := db.QueryContext(ctx, metastoreColumnsQuery, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column metadata: %w", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column metadata: %w", err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return cols, nil
}

func (m *Metastore) open() (*sql.DB, error) {
	if m.db != nil {
		return m.db, nil
	}
	if m.DSN == "" {
		return nil, errors.New("no metastore DSN configured")
	}
	db, err := sql.Open("pgx", m.DSN)
	if err != nil {
		return nil, fmt.Errorf("open metastore connection: %w", err)
	}
	m.db = db
	return db, nil
}

// Close releases the underlying connection.
func (m *Metastore) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
