/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and exposes the chat
service over a small JSON API.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"Eat42/internal/chat"
	"Eat42/internal/config"
	"Eat42/internal/metabolic"
)

// Store is the read-only persistence the handlers consult. It is optional;
// without it requests must carry their own glucose history.
type Store interface {
	Health() map[string]string
	RecentGlucoseReadings(ctx context.Context, userID string, limit int) ([]metabolic.Reading, error)
	PregnancyWeek(ctx context.Context, userID string) (int, error)
}

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// store provides glucose history and profile lookups. May be nil.
	store Store

	// chat runs extraction and recommendation for each turn.
	chat *chat.Service
}

// NewServer initializes a new Server instance and returns a configured *http.Server.
func NewServer(cfg config.Config, chatSvc *chat.Service, store Store) *http.Server {
	newApp := &Server{
		port:  cfg.Port,
		store: store,
		chat:  chatSvc,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", newApp.port),
		Handler:      newApp.RegisterRoutes(), // Injected from routes.go
		IdleTimeout:  time.Minute,             // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  10 * time.Second,        // Maximum duration for reading the entire request.
		WriteTimeout: 30 * time.Second,        // Maximum duration before timing out writes of the response.
	}

	return server
}
