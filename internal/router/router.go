package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	mem "pet-visits/internal/adapters/storage/memory"
	pg "pet-visits/internal/adapters/storage/postgres"
	"pet-visits/internal/domain/owners"
	"pet-visits/internal/domain/pets"
	"pet-visits/internal/domain/population"
	"pet-visits/internal/domain/visits"

	_ "pet-visits/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		visitRepo visits.Repository
		petRepo   pets.Repository
		ownerRepo owners.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			if opened, err := pg.Open(dsn); err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		visitRepo = pg.NewVisitsRepo(db)
		petRepo = pg.NewPetsRepo(db)
		ownerRepo = pg.NewOwnersRepo(db)
	} else {
		visitRepo = mem.NewVisitRepo()
		petRepo = mem.NewPetRepo()
		ownerRepo = mem.NewOwnerRepo()

		// En modo in-memory el índice secundario se materializa acá;
		// con Postgres lo hace main antes de servir.
		_ = visitRepo.EnsureSchema(context.Background())
	}

	// Services por módulo
	visitsSvc := visits.NewService(visitRepo)
	petsSvc := pets.NewService(petRepo)
	ownersSvc := owners.NewService(ownerRepo)
	populator := population.New(visitRepo)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc, populator)
	visits.RegisterRoutes(r, visitsSvc)
	owners.RegisterRoutes(r, ownersSvc, petsSvc, populator)

	return r
}
