package router

import (
	"net/http"

	"pet-shelter/internal/adapters/storage/sqlite"
	"pet-shelter/internal/domain/pets"
	"pet-shelter/internal/middleware"
	"pet-shelter/internal/platform/logger"

	_ "pet-shelter/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si no viene, se usa sqlite en memoria (modo dev).
	Dispatcher *pets.Dispatcher

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	d := opts.Dispatcher
	if d == nil {
		db, err := sqlite.OpenMemory()
		if err != nil {
			// sqlite en memoria no debería fallar nunca; si falla no hay nada que servir.
			panic("router: open in-memory sqlite: " + err.Error())
		}
		log.Warn("no dispatcher configured, using in-memory sqlite", nil)
		d = pets.NewDispatcher(sqlite.NewPetsRepo(db), pets.DefaultRoutes(), pets.WithLogger(log))
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recover(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	pets.RegisterRoutes(r, d, log)

	return r
}
