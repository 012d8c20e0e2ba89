package main

import (
	"database/sql"
	"strings"

	"github.com/spf13/cobra"

	"pet-shelter/internal/adapters/storage"
	"pet-shelter/internal/config"
	"pet-shelter/internal/domain/pets"
	"pet-shelter/internal/platform/logger"
)

type rootFlags struct {
	configPath string
	dbPath     string
	driver     string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:           "shelter",
		Short:         "Catálogo de mascotas del refugio",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "archivo YAML de configuración")
	root.PersistentFlags().StringVar(&f.dbPath, "db", "", "ruta de la base sqlite (pisa config/env)")
	root.PersistentFlags().StringVar(&f.driver, "driver", "", "sqlite | postgres | memory (pisa config/env)")

	root.AddCommand(
		newServeCmd(f),
		newListCmd(f),
		newAddCmd(f),
		newUpdateCmd(f),
		newDeleteCmd(f),
		newDeleteAllCmd(f),
		newDummyCmd(f),
		newTypeCmd(),
	)
	return root
}

func (f *rootFlags) load() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if v := strings.TrimSpace(f.dbPath); v != "" {
		cfg.DB.Driver = config.DriverSQLite
		cfg.DB.Path = v
	}
	if v := strings.TrimSpace(f.driver); v != "" {
		cfg.DB.Driver = strings.ToLower(v)
	}
	return cfg, cfg.Validate()
}

// env arma logger + store + dispatcher para un comando. close libera la db
// y vacía el logger.
type env struct {
	cfg  config.Config
	log  logger.Logger
	db   *sql.DB
	pets *pets.Dispatcher
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
	}
	if e.log != nil {
		_ = logger.Sync(e.log)
	}
}

func (f *rootFlags) open(cmd *cobra.Command) (*env, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.AppName,
		Output: cmd.ErrOrStderr(),
	})

	store, db, err := storage.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	log.Debug("storage opened", map[string]any{"driver": cfg.DB.Driver})

	d := pets.NewDispatcher(store, pets.DefaultRoutes(), pets.WithLogger(log))
	return &env{cfg: cfg, log: log, db: db, pets: d}, nil
}
