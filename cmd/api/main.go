package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"pet-visits/internal/adapters/storage/postgres"
	"pet-visits/internal/platform/logger"
	"pet-visits/internal/router"
)

// @title Pet Visits API
// @version 1.0
// @description Visitas clínicas por mascota (layout particionado por pet_id) y reconstrucción del árbol owner → pets → visits.
// @BasePath /
func main() {
	lg := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	var db *sql.DB
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		opened, err := postgres.Open(dsn)
		if err != nil {
			log.Fatalf("db connect error: %v", err)
		}
		db = opened

		// El schema se crea una sola vez al arranque; si falla acá el
		// proceso no debe levantar.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = postgres.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("schema error: %v", err)
		}
	}

	r := router.NewRouter(router.Options{DB: db})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lg.Info("starting server", map[string]any{"addr": addr, "storage": storageMode(db)})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func storageMode(db *sql.DB) string {
	if db != nil {
		return "postgres"
	}
	return "memory"
}
