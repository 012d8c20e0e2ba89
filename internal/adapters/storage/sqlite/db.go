// Package sqlite abre la base local del refugio (shelter.db) con
// modernc.org/sqlite, sin cgo.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pet-shelter/internal/adapters/storage/sqltable"
	"pet-shelter/internal/domain/pets"

	_ "modernc.org/sqlite"
)

const createTable = `
CREATE TABLE IF NOT EXISTS ` + pets.TableName + ` (
	` + pets.ColumnID + ` INTEGER PRIMARY KEY AUTOINCREMENT,
	` + pets.ColumnName + ` TEXT NOT NULL CHECK (` + pets.ColumnName + ` <> ''),
	` + pets.ColumnBreed + ` TEXT,
	` + pets.ColumnGender + ` INTEGER NOT NULL CHECK (` + pets.ColumnGender + ` IN (0, 1, 2)),
	` + pets.ColumnWeight + ` INTEGER NOT NULL DEFAULT 0 CHECK (` + pets.ColumnWeight + ` >= 0)
)`

// Open abre (o crea) la base en path. WAL + busy_timeout como en el resto
// de stores sqlite del proyecto.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory abre una base en memoria privada. Una sola conexión: cada
// conexión nueva a ":memory:" sería otra base vacía.
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate crea la tabla y registra la versión del esquema en user_version.
// Subir de versión no hace nada más (no hay migraciones).
func Migrate(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	if version < pets.DatabaseVersion {
		// PRAGMA no acepta parámetros.
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", pets.DatabaseVersion)); err != nil {
			return fmt.Errorf("failed to write schema version: %w", err)
		}
	}
	return nil
}

// NewPetsRepo devuelve el Store de mascotas sobre db.
func NewPetsRepo(db *sql.DB) *sqltable.Table {
	return sqltable.New(db, sqltable.SQLite)
}
