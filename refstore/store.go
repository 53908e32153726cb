package refstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver
)

//go:embed schema.sql
var ddl string

// Store is an explicitly constructed handle on the reference database.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the reference store at path and runs schema
// initialization. A nil error is the readiness signal: the returned store is
// fully usable.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening reference store: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing reference store schema: %w", err)
	}
	return &Store{DB: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(ddl, "-- migrate") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL statement [%s]: %w", stmt, err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}
