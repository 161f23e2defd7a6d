package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fableforge/fableforge/internal/game"
)

// RegisterRoutes attaches all HTTP routes to the echo instance.
func (s *Server) RegisterRoutes() {
	s.E.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	s.E.GET("/api/rooms", s.listRooms)
	s.E.GET("/ws", s.bridge.Handler())
}

// listRooms returns the member count of every non-empty room.
func (s *Server) listRooms(c echo.Context) error {
	counts := s.registry.Snapshot()

	out := make(map[string]game.RoomInfo, len(counts))
	for id, players := range counts {
		if players > 0 {
			out[id] = game.RoomInfo{Players: players}
		}
	}
	return c.JSON(http.StatusOK, out)
}
