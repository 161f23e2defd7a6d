// Package server wires the application together and runs the HTTP surface.
package server

import (
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/fableforge/fableforge/internal/config"
	"github.com/fableforge/fableforge/internal/dice"
	"github.com/fableforge/fableforge/internal/game"
	"github.com/fableforge/fableforge/internal/logging"
	"github.com/fableforge/fableforge/internal/narrator"
	"github.com/fableforge/fableforge/internal/pubsub"
	"github.com/fableforge/fableforge/internal/rooms"
	"github.com/fableforge/fableforge/internal/session"
	"github.com/fableforge/fableforge/internal/websocket"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	Cfg *config.Config

	bus      *pubsub.Bus
	bridge   *websocket.Bridge
	registry *rooms.Registry
	sessions *session.Directory
	router   *game.Router
}

// New creates a fully wired Server instance.
func New() *Server {
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.New(cfg.LogFormat)

	bus := pubsub.NewBus()
	bridge := websocket.NewBridge(bus)
	registry := rooms.NewRegistry()
	sessions := session.NewDirectory()
	roller := dice.New(rand.NewSource(time.Now().UnixNano()))

	narratorClient := narrator.NewClient(narrator.Config{
		URL:         cfg.NarratorURL,
		APIKey:      cfg.NarratorAPIKey,
		Model:       cfg.NarratorModel,
		Timeout:     cfg.NarratorTimeout,
		MaxTokens:   cfg.NarratorMaxTokens,
		Temperature: cfg.NarratorTemperature,
	}, roller)

	router := game.NewRouter(game.Deps{
		Subscriber:  bus,
		Transport:   bridge,
		Registry:    registry,
		Sessions:    sessions,
		Narrator:    narratorClient,
		Roller:      roller,
		DefaultRoom: cfg.DefaultRoom,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	return &Server{
		E:        e,
		Cfg:      cfg,
		bus:      bus,
		bridge:   bridge,
		registry: registry,
		sessions: sessions,
		router:   router,
	}
}

// Registry is a getter for the server's room registry, useful for testing.
func (s *Server) Registry() *rooms.Registry {
	return s.registry
}
