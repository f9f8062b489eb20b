// migrate applies every migrations/*.sql file in version order. Applied
// versions and their checksums are tracked in schema_migrations, so re-running
// is a no-op; an advisory lock keeps two migrators from racing.
//
// Usage: go run ./cmd/migrate
package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const migrationsDir = "migrations"

func main() {
	_ = godotenv.Load()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := run(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("all migrations applied")
}

func run(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock(5180274)").Scan(&locked); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	if !locked {
		return errors.New("another migrator is currently running")
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			checksum   TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := sqlFiles()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := apply(ctx, pool, f); err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
	}
	return nil
}

// sqlFiles lists migrations/*.sql sorted by filename, rejecting duplicate
// version prefixes (the NNN before the first underscore).
func sqlFiles() ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", migrationsDir, err)
	}

	seen := map[string]bool{}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		v, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("bad migration name %q, want NNN_description.sql", e.Name())
		}
		if seen[v] {
			return nil, fmt.Errorf("duplicate migration version %s", v)
		}
		seen[v] = true
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

func apply(ctx context.Context, pool *pgxpool.Pool, filename string) error {
	version, _, _ := strings.Cut(filename, "_")

	sqlBytes, err := os.ReadFile(filepath.Join(migrationsDir, filename))
	if err != nil {
		return err
	}
	checksum := fmt.Sprintf("%x", sha256.Sum256(sqlBytes))

	var existing string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existing)
	switch {
	case err == nil && existing == checksum:
		log.Printf("skip  %s", filename)
		return nil
	case err == nil:
		return fmt.Errorf("checksum mismatch: file changed after being applied")
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("query schema_migrations: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		version, filename, checksum,
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("apply %s", filename)
	return nil
}
