package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"Eat42/internal/catalog"
	"Eat42/internal/chat"
	"Eat42/internal/config"
	"Eat42/internal/craving"
	"Eat42/internal/database"
	"Eat42/internal/recommender"
	"Eat42/internal/safety"
	"Eat42/internal/server"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	// 1. Static artifacts: the food catalog and the safety model.
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("Could not load food catalog")
	}

	classifier, err := safety.LoadShared(cfg.ModelPath, cfg.CacheSize)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ModelPath).Msg("Could not load safety model")
	}
	log.Info().Int("foods", cat.Len()).Str("model", cfg.ModelPath).Msg("Artifacts loaded")

	// 2. Core services.
	extractor := craving.NewExtractor(cat, craving.WithLocation(cfg.Location))

	opts := []recommender.Option{
		recommender.WithJitter(cfg.Jitter),
		recommender.WithLocation(cfg.Location),
	}
	if cfg.RandomSeed != 0 {
		opts = append(opts, recommender.WithSeed(cfg.RandomSeed))
	}
	engine := recommender.NewEngine(cat, classifier, opts...)

	chatSvc := chat.NewService(extractor, engine)

	// 3. Optional persistence for glucose history.
	var store server.Store
	if cfg.Database.Enabled() {
		db, err := database.New(context.Background(), cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not connect to database")
		}
		defer db.Close()
		store = db
	} else {
		log.Warn().Msg("BLUEPRINT_DB_HOST not set, running without glucose history")
	}

	server := server.NewServer(cfg, chatSvc, store)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	log.Info().Str("addr", server.Addr).Msg("Server starting")
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
