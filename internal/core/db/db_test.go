package db

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facewire.db")
	conn, err := Open("sqlite://" + path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOpen_RejectsUnknownScheme(t *testing.T) {
	if _, err := Open("mysql://localhost/facewire"); err == nil {
		t.Errorf("Open(mysql) = nil error")
	}
	if _, err := Open("://bad"); err == nil {
		t.Errorf("Open(malformed) = nil error")
	}
}

func TestMigrateUp(t *testing.T) {
	conn := openTestDB(t)

	if err := MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	applied, err := Applied(conn)
	if err != nil {
		t.Fatalf("Applied() error = %v", err)
	}
	if !applied["001_initial_schema.sql"] {
		t.Errorf("initial schema not recorded as applied: %v", applied)
	}

	// Idempotent: a second run applies nothing and changes nothing.
	if err := MigrateUp(conn); err != nil {
		t.Fatalf("second MigrateUp() error = %v", err)
	}

	for _, table := range []string{"deliveries", "api_keys"} {
		var name string
		err := conn.Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		if err != nil {
			t.Errorf("table %s missing after migration: %v", table, err)
		}
	}
}

func TestLoadQueries(t *testing.T) {
	conn := openTestDB(t)
	if err := MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	queries, err := LoadQueries(conn)
	if err != nil {
		t.Fatalf("LoadQueries() error = %v", err)
	}

	if _, err := queries.Exec("insert-delivery", "018f0000-0000-7000-8000-000000000001", 1, 3, []byte{0x08, 0x03}, "2026-08-31T00:00:00Z"); err != nil {
		t.Errorf("insert-delivery failed: %v", err)
	}
	if _, err := queries.Exec("no-such-query"); err == nil {
		t.Errorf("unknown query name executed")
	}
}
