package main

import (
	"log"
	"net/http"

	"github.com/AdamBeresnev/tourney-predictor/internal/config"
	"github.com/AdamBeresnev/tourney-predictor/internal/db"
	"github.com/AdamBeresnev/tourney-predictor/internal/middleware"
	"github.com/AdamBeresnev/tourney-predictor/internal/simulation"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

const simulatedMaxGoals = 4

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	database := db.InitDB(cfg.DatabasePath)
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	middleware.InitAuth(cfg)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	router := newRouter(sessionManager, cfg, simulationStrategy(cfg))

	log.Printf("Server starting on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatal(err)
	}
}

func simulationStrategy(cfg *config.Config) simulation.Strategy {
	if cfg.SimulationMode == config.SimulationRandom {
		return simulation.NewRandom(cfg.SimulationSeed, simulatedMaxGoals)
	}
	return simulation.None{}
}
