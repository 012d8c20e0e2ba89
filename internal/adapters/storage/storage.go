// Package storage elige el motor de la tabla de mascotas según config.
package storage

import (
	"database/sql"
	"fmt"

	pg "pet-shelter/internal/adapters/storage/postgres"
	"pet-shelter/internal/adapters/storage/sqlite"
	"pet-shelter/internal/config"
	"pet-shelter/internal/domain/pets"
)

// Open devuelve el Store y el *sql.DB subyacente (el caller lo cierra).
func Open(cfg config.DB) (pets.Store, *sql.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := pg.Open(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return pg.NewPetsRepo(db), db, nil
	case config.DriverMemory:
		db, err := sqlite.OpenMemory()
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewPetsRepo(db), db, nil
	case config.DriverSQLite, "":
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewPetsRepo(db), db, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown db driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}
