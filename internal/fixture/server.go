package fixture

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/console/internal/live"
)

// ResourceSpec wires one record collection to its REST path, list shape,
// live room, and change-hint event names. An empty WrapKey makes the list
// endpoint return a bare array; otherwise the array is wrapped in an object
// under that key — the fixture deliberately exercises both server shapes.
type ResourceSpec struct {
	Name         string // collection name in the store
	Path         string // path under /api, e.g. "billing"
	WrapKey      string
	Room         string // live room receiving change hints
	CreatedEvent string
	UpdatedEvent string
	DeletedEvent string
}

// DefaultSpecs describes the resources the console manages, with event
// names matching the hints the real server pushes.
func DefaultSpecs() []ResourceSpec {
	return []ResourceSpec{
		{Name: "bills", Path: "billing", WrapKey: "bills", Room: "dashboard",
			CreatedEvent: "dashboard-update", UpdatedEvent: "dashboard-update", DeletedEvent: "dashboard-update"},
		{Name: "budgets", Path: "budget", WrapKey: "", Room: "analytics",
			CreatedEvent: "analytics-update", UpdatedEvent: "analytics-update", DeletedEvent: "analytics-update"},
		{Name: "financial-reports", Path: "financial-reports", WrapKey: "reports", Room: "analytics",
			CreatedEvent: "analytics-update", UpdatedEvent: "analytics-update", DeletedEvent: "analytics-update"},
		{Name: "emergencies", Path: "emergency", WrapKey: "", Room: "emergency",
			CreatedEvent: "new-emergency", UpdatedEvent: "emergency-update", DeletedEvent: "emergency-update"},
		{Name: "inventory", Path: "inventory", WrapKey: "items", Room: "inventory",
			CreatedEvent: "inventory-updated", UpdatedEvent: "inventory-updated", DeletedEvent: "inventory-updated"},
		{Name: "doctors", Path: "doctors", WrapKey: "", Room: "dashboard",
			CreatedEvent: "dashboard-update", UpdatedEvent: "dashboard-update", DeletedEvent: "dashboard-update"},
		{Name: "users", Path: "auth/users", WrapKey: "users", Room: "dashboard",
			CreatedEvent: "dashboard-update", UpdatedEvent: "dashboard-update", DeletedEvent: "dashboard-update"},
		{Name: "appointments", Path: "appointments", WrapKey: "", Room: "dashboard",
			CreatedEvent: "new-appointment", UpdatedEvent: "dashboard-update", DeletedEvent: "dashboard-update"},
	}
}

// Server bundles the store, hub, and echo routes of the API double.
type Server struct {
	Store  *Store
	Hub    *Hub
	Echo   *echo.Echo
	logger zerolog.Logger
}

// NewServer builds the API double with routes for every spec plus the /ws
// socket endpoint.
func NewServer(store *Store, specs []ResourceSpec, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	hub := NewHub(logger)
	e.GET("/ws", hub.Handler)

	s := &Server{Store: store, Hub: hub, Echo: e, logger: logger}
	api := e.Group("/api")
	for _, spec := range specs {
		s.register(api, spec)
	}
	return s
}

func (s *Server) register(api *echo.Group, spec ResourceSpec) {
	api.GET("/"+spec.Path, func(c echo.Context) error {
		records := s.Store.List(spec.Name)
		if spec.WrapKey == "" {
			return c.JSON(http.StatusOK, records)
		}
		return c.JSON(http.StatusOK, map[string]any{
			spec.WrapKey: records,
			"total":      len(records),
		})
	})

	api.POST("/"+spec.Path, func(c echo.Context) error {
		var draft Record
		if err := c.Bind(&draft); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}
		stored := s.Store.Insert(spec.Name, draft)
		s.broadcast(spec, spec.CreatedEvent, stored)
		return c.JSON(http.StatusCreated, stored)
	})

	api.PUT("/"+spec.Path+"/:id", func(c echo.Context) error {
		var patch Record
		if err := c.Bind(&patch); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}
		updated, err := s.Store.Update(spec.Name, c.Param("id"), patch)
		if err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		s.broadcast(spec, spec.UpdatedEvent, updated)
		return c.JSON(http.StatusOK, updated)
	})

	api.DELETE("/"+spec.Path+"/:id", func(c echo.Context) error {
		if err := s.Store.Delete(spec.Name, c.Param("id")); err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		s.broadcast(spec, spec.DeletedEvent, Record{"id": c.Param("id")})
		return c.NoContent(http.StatusNoContent)
	})
}

func (s *Server) broadcast(spec ResourceSpec, eventType string, rec Record) {
	if eventType == "" {
		return
	}
	id, _ := rec["id"].(string)
	s.Hub.Broadcast(live.Event{
		Type:         eventType,
		Topic:        spec.Room,
		ResourceType: spec.Name,
		ResourceID:   id,
		Timestamp:    time.Now().UTC(),
	})
	s.logger.Debug().Str("event", eventType).Str("room", spec.Room).Msg("broadcast change hint")
}
