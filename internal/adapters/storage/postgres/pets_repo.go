package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pet-shelter/internal/adapters/storage/sqltable"
	"pet-shelter/internal/domain/pets"
)

const createTable = `
CREATE TABLE IF NOT EXISTS ` + pets.TableName + ` (
	` + pets.ColumnID + ` BIGSERIAL PRIMARY KEY,
	` + pets.ColumnName + ` TEXT NOT NULL CHECK (` + pets.ColumnName + ` <> ''),
	` + pets.ColumnBreed + ` TEXT,
	` + pets.ColumnGender + ` INTEGER NOT NULL CHECK (` + pets.ColumnGender + ` IN (0, 1, 2)),
	` + pets.ColumnWeight + ` BIGINT NOT NULL DEFAULT 0 CHECK (` + pets.ColumnWeight + ` >= 0)
)`

// NewPetsRepo devuelve el Store de mascotas sobre Postgres: los "?" de
// los filtros se reescriben a $n.
func NewPetsRepo(db *sql.DB) *sqltable.Table {
	return sqltable.New(db, sqltable.Postgres)
}

// Migrate crea la tabla si no existe. No hay migraciones entre versiones.
func Migrate(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
