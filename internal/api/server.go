// Package api wires the HTTP routes and server lifecycle.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oremus-labs/ol-housing-predictor/internal/handlers"
)

// Options configures the HTTP server wiring.
type Options struct {
	GraphQLHandler http.Handler
}

// Server wraps the Gin engine and associated configuration.
type Server struct {
	engine *gin.Engine
}

// NewServer constructs a Server with all HTTP routes configured.
func NewServer(handler *handlers.Handler, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestIDMiddleware(), metricsMiddleware(), requestLogger())

	// Health + meta
	engine.GET("/", handler.Root)
	engine.GET("/healthz", handler.Health)
	engine.GET("/system/info", handler.SystemInfo)
	engine.GET("/events", handler.StreamEvents)

	// Prediction
	engine.POST("/predict", handler.Predict)

	// Metrics + audit views
	engine.GET("/metrics", handler.MetricsExposition)
	engine.GET("/metrics-json", handler.MetricsJSON)
	engine.GET("/prediction-stats", handler.PredictionStats)
	engine.GET("/records", handler.ListRecords)

	if opts.GraphQLHandler != nil {
		engine.GET("/graphql", gin.WrapH(opts.GraphQLHandler))
		engine.POST("/graphql", gin.WrapH(opts.GraphQLHandler))
	}

	return &Server{engine: engine}
}

// Engine exposes the underlying Gin engine for advanced use (testing, etc.).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start launches the HTTP server on the provided address.
func (s *Server) Start(addr string) *http.Server {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()
	return srv
}
