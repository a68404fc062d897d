package db

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	embeddedmigrations "github.com/facewire/facewire/migrations"
)

type migration struct {
	ID       string
	Checksum string
	SQL      string
}

// MigrateUp applies all pending migrations for the connected driver.
// Applied migrations are checksummed; an already-applied file whose content
// changed fails loudly instead of silently diverging schemas.
func MigrateUp(db *sqlx.DB) error {
	migrations, err := loadMigrations(db.DriverName())
	if err != nil {
		return err
	}

	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedChecksums(db)
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}

	for _, m := range migrations {
		if checksum, ok := applied[m.ID]; ok {
			if checksum != m.Checksum {
				return fmt.Errorf("checksum mismatch for applied migration %s", m.ID)
			}
			continue
		}

		start := time.Now()

		// Migration and its bookkeeping row commit together; a failure in
		// either rolls back both.
		tx, err := db.Beginx()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for %s: %w", m.ID, err)
		}
		if err := execStatements(tx, m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if err := recordMigration(tx, m, time.Since(start)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
		}
	}

	return nil
}

// Applied reports which migration IDs have been applied.
func Applied(db *sqlx.DB) (map[string]bool, error) {
	checksums, err := appliedChecksums(db)
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(checksums))
	for id := range checksums {
		applied[id] = true
	}
	return applied, nil
}

func loadMigrations(driver string) ([]migration, error) {
	var migrationsFS embed.FS
	var dir string
	switch driver {
	case "sqlite3":
		migrationsFS = embeddedmigrations.SqliteMigrations
		dir = "sqlite"
	case "postgres":
		migrationsFS = embeddedmigrations.PostgresMigrations
		dir = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	var migrations []migration
	err := fs.WalkDir(migrationsFS, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		migrations = append(migrations, migration{
			ID:       filepath.Base(path),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
			SQL:      string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Filename order is application order.
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].ID < migrations[j].ID
	})
	return migrations, nil
}

func createMigrationsTable(db *sqlx.DB) error {
	var createSQL string
	if db.DriverName() == "sqlite3" {
		createSQL = `
			CREATE TABLE IF NOT EXISTS migrations (
				migration_id TEXT PRIMARY KEY,
				checksum TEXT NOT NULL,
				applied_at TEXT NOT NULL,
				execution_ms INTEGER NOT NULL
			)
		`
	} else {
		createSQL = `
			CREATE TABLE IF NOT EXISTS migrations (
				migration_id TEXT PRIMARY KEY,
				checksum TEXT NOT NULL,
				applied_at TIMESTAMP WITHOUT TIME ZONE NOT NULL,
				execution_ms INTEGER NOT NULL
			)
		`
	}
	_, err := db.Exec(createSQL)
	return err
}

func appliedChecksums(db *sqlx.DB) (map[string]string, error) {
	if err := createMigrationsTable(db); err != nil {
		return nil, err
	}
	rows, err := db.Queryx("SELECT migration_id, checksum FROM migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var id, checksum string
		if err := rows.Scan(&id, &checksum); err != nil {
			return nil, err
		}
		applied[id] = checksum
	}
	return applied, rows.Err()
}

// execStatements splits on semicolons because lib/pq rejects multiple
// statements in a single Exec.
func execStatements(tx *sqlx.Tx, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}
	return nil
}

func recordMigration(tx *sqlx.Tx, m migration, duration time.Duration) error {
	now := time.Now().UTC()
	if tx.DriverName() == "sqlite3" {
		_, err := tx.Exec(
			"INSERT INTO migrations (migration_id, checksum, applied_at, execution_ms) VALUES (?, ?, ?, ?)",
			m.ID, m.Checksum, now.Format(time.RFC3339), duration.Milliseconds(),
		)
		return err
	}
	_, err := tx.Exec(
		"INSERT INTO migrations (migration_id, checksum, applied_at, execution_ms) VALUES ($1, $2, $3, $4)",
		m.ID, m.Checksum, now, duration.Milliseconds(),
	)
	return err
}
