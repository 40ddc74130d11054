package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const createSchemaMigrationsSQL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		id SERIAL PRIMARY KEY,
		migration_name VARCHAR(255) NOT NULL UNIQUE,
		applied_at TIMESTAMPTZ DEFAULT NOW()
	)`

// RunMigrations applies every pending .sql file under dir in lexical order.
// A migration and the row recording it share one transaction, so a failed
// migration leaves no bookkeeping behind.
func (db *DB) RunMigrations(ctx context.Context, dir string) error {
	if err := db.Exec(ctx, createSchemaMigrationsSQL); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	pending, err := db.pendingMigrations(ctx, dir)
	if err != nil {
		return err
	}

	for _, name := range pending {
		if err := db.applyMigration(ctx, dir, name); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		db.logger.Info("migration_applied", fmt.Sprintf("Applied migration %s", name), "startup", map[string]interface{}{
			"migration": name,
		})
	}

	return nil
}

// pendingMigrations returns the .sql files in dir without a
// schema_migrations row, sorted lexically
func (db *DB) pendingMigrations(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	applied := make(map[string]struct{})
	rows, err := db.Query(ctx, "SELECT migration_name FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var pending []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		if _, ok := applied[name]; ok {
			continue
		}
		pending = append(pending, name)
	}
	sort.Strings(pending)

	return pending, nil
}

// applyMigration executes one migration file and records it as applied
func (db *DB) applyMigration(ctx context.Context, dir, name string) error {
	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (migration_name) VALUES ($1)", name); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit(ctx)
}
