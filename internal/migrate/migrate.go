// Package migrate applies ordered SQL files to the subscriber store.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/ignite/newsletter/internal/pkg/logger"
)

// Result summarises one Apply run.
type Result struct {
	Applied []string
	Failed  []string
}

// Files returns the non-empty *.sql files in fsys, sorted by name.
func Files(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Apply runs every migration file in its own transaction. A failing file is
// rolled back and reported; later files still run. The returned error is
// non-nil when any file failed.
func Apply(ctx context.Context, db *sql.DB, fsys fs.FS) (Result, error) {
	var res Result
	files, err := Files(fsys)
	if err != nil {
		return res, err
	}

	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return res, fmt.Errorf("read %s: %w", f, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}

		if err := applyOne(ctx, db, string(data)); err != nil {
			logger.Error("migration failed", "file", f, "error", err)
			res.Failed = append(res.Failed, f)
			continue
		}
		logger.Info("migration applied", "file", f)
		res.Applied = append(res.Applied, f)
	}

	if len(res.Failed) > 0 {
		return res, fmt.Errorf("%d of %d migrations failed", len(res.Failed), len(res.Failed)+len(res.Applied))
	}
	return res, nil
}

func applyOne(ctx context.Context, db *sql.DB, stmt string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ListTables returns the tables in the public schema.
func ListTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// EnsureDatabase creates the named database when it does not exist yet. db
// must be connected to the server without selecting that database.
func EnsureDatabase(ctx context.Context, db *sql.DB, name string) (bool, error) {
	if name == "" {
		return false, errors.New("database name is empty")
	}

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("look up database: %w", err)
	}
	if exists {
		return false, nil
	}

	// CREATE DATABASE takes no bind parameters.
	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return false, fmt.Errorf("create database: %w", err)
	}
	logger.Info("database created", "database", name)
	return true, nil
}
