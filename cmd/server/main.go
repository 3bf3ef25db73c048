// Package main is the entry point for the housing price prediction service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oremus-labs/ol-housing-predictor/config"
	"github.com/oremus-labs/ol-housing-predictor/internal/api"
	"github.com/oremus-labs/ol-housing-predictor/internal/artifact"
	"github.com/oremus-labs/ol-housing-predictor/internal/events"
	"github.com/oremus-labs/ol-housing-predictor/internal/graphqlapi"
	"github.com/oremus-labs/ol-housing-predictor/internal/handlers"
	"github.com/oremus-labs/ol-housing-predictor/internal/inference"
	"github.com/oremus-labs/ol-housing-predictor/internal/redisx"
	"github.com/oremus-labs/ol-housing-predictor/internal/store"
	"github.com/oremus-labs/ol-housing-predictor/internal/validator"
)

const (
	version         = "1.2.0"
	shutdownTimeout = 5 * time.Second
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Housing Price Predictor v%s", version)

	cfg := config.Load()
	log.Printf("Configuration loaded - Model: %s, Scaler: %s, Datastore: %s",
		cfg.ModelPath, cfg.ScalerPath, cfg.DataStoreDSN)

	// Artifact loading is a one-shot startup gate: no retries.
	scaler, err := artifact.LoadScaler(cfg.ScalerPath)
	if err != nil {
		log.Fatalf("Failed to load scaler: %v", err)
	}
	bundle, err := artifact.LoadBundle(cfg.ModelPath)
	if err != nil {
		log.Fatalf("Failed to load model bundle: %v", err)
	}
	engine, err := inference.NewEngine(scaler, bundle.Model, bundle.Identity)
	if err != nil {
		log.Fatalf("Failed to build inference engine: %v", err)
	}
	log.Printf("Loaded model %s version %s (saved %s)",
		bundle.Identity.Type, bundle.Identity.Version, bundle.SavedAt)

	auditStore, err := store.Open(cfg.DataStoreDSN, cfg.DataStoreDriver)
	if err != nil {
		log.Fatalf("Failed to open audit store: %v", err)
	}
	defer auditStore.Close()
	auditStore.SetDefaultWindow(cfg.DefaultStatsWindow)

	checker, err := validator.New()
	if err != nil {
		log.Fatalf("Failed to compile feature schema: %v", err)
	}

	redisClient, err := redisx.NewClient(redisx.Config{
		Addr:        cfg.RedisAddr,
		Username:    cfg.RedisUsername,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		TLSEnabled:  cfg.RedisTLSEnabled,
		TLSInsecure: cfg.RedisTLSInsecure,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Printf("Event bus connected to Redis at %s", cfg.RedisAddr)
	}
	bus := events.NewBus(events.Options{
		Client:  redisClient,
		Logger:  log.Default(),
		Channel: cfg.EventsChannel,
	})

	h := handlers.New(engine, auditStore, checker, bus, handlers.Options{
		Version:      version,
		ModelPath:    cfg.ModelPath,
		ScalerPath:   cfg.ScalerPath,
		DataStoreDSN: cfg.DataStoreDSN,
	})

	graphqlHandler, err := graphqlapi.NewHandler(graphqlapi.Config{
		Audit: auditStore,
		Model: engine,
	})
	if err != nil {
		log.Fatalf("Failed to build GraphQL handler: %v", err)
	}

	server := api.NewServer(h, api.Options{GraphQLHandler: graphqlHandler})
	srv := server.Start(":" + cfg.ServerPort)
	log.Printf("Server listening on :%s", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped")
}
