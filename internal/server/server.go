// Package server exposes the chat pipeline over a JSON HTTP API. The
// rendering layer is an external collaborator: it only ever sees
// response text, error text, and the turn log.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/personachat/personachat/internal/completion"
	"github.com/personachat/personachat/internal/identity"
	"github.com/personachat/personachat/internal/memory"
	"github.com/personachat/personachat/internal/persona"
	"github.com/personachat/personachat/internal/session"
	"github.com/personachat/personachat/internal/storage"
)

// deviceHeader carries the caller's stable device identifier. The
// server issues one on first contact and echoes it on every response.
const deviceHeader = "X-Device-ID"

// Deps are the collaborators a Server needs.
type Deps struct {
	Completer completion.Completer
	Memory    *memory.Client // nil disables memory features
	KV        storage.KV
	Logger    *slog.Logger

	ContextTokenBudget int
	ContextEventRatio  float64
}

// Server owns the echo instance and the per-device session registry.
type Server struct {
	echo     *echo.Echo
	deps     Deps
	resolver *identity.Resolver

	mu       sync.Mutex
	sessions map[string]*session.Controller
}

// NewServer creates the HTTP server and registers its routes.
func NewServer(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover(), middleware.CORS())

	var reg identity.Registrar
	if deps.Memory != nil {
		reg = deps.Memory
	}

	s := &Server{
		echo:     e,
		deps:     deps,
		resolver: identity.NewResolver(deps.KV, reg, deps.Logger),
		sessions: make(map[string]*session.Controller),
	}

	s.setupRoutes()
	return s
}

// Start begins serving on addr and blocks until shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/healthz", s.health)

	api := s.echo.Group("/api")
	api.GET("/personas", s.listPersonas)
	api.POST("/chat", s.submit)
	api.GET("/history", s.history)
	api.POST("/history/:id/save", s.save)
	api.DELETE("/history", s.clear)
	api.POST("/profile", s.setProfile)
}

// sessionFor returns the controller for the device, creating it and
// resolving the memory identity on first use.
func (s *Server) sessionFor(ctx context.Context, deviceID string) *session.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctrl, ok := s.sessions[deviceID]; ok {
		return ctrl
	}

	memoryIdentity := s.resolver.Resolve(ctx, deviceID)

	var gateway session.Gateway
	if s.deps.Memory != nil {
		gateway = s.deps.Memory
	}

	ctrl := session.NewController(session.Options{
		Completer:          s.deps.Completer,
		Gateway:            gateway,
		Identity:           memoryIdentity,
		Logger:             s.deps.Logger,
		ContextTokenBudget: s.deps.ContextTokenBudget,
		ContextEventRatio:  s.deps.ContextEventRatio,
	})
	s.sessions[deviceID] = ctrl
	return ctrl
}

// deviceID extracts the caller's device identifier, issuing a new one
// when absent, and always echoes it back on the response.
func (s *Server) deviceID(c echo.Context) string {
	id := c.Request().Header.Get(deviceHeader)
	if id == "" {
		id = identity.NewDeviceID()
	}
	c.Response().Header().Set(deviceHeader, id)
	return id
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listPersonas(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"personas": persona.All()})
}

type chatRequest struct {
	Persona  string `json:"persona"`
	Question string `json:"question"`
}

func (s *Server) submit(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	deviceID := s.deviceID(c)
	ctrl := s.sessionFor(c.Request().Context(), deviceID)

	turn, err := ctrl.Submit(c.Request().Context(), req.Persona, req.Question)
	if err != nil {
		var unknownErr *persona.UnknownPersonaError
		switch {
		case errors.As(err, &unknownErr), errors.Is(err, session.ErrEmptyQuestion):
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, session.ErrBusy):
			return c.JSON(http.StatusConflict, errorBody(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"turn":             turn,
		"memory_available": ctrl.MemoryAvailable(),
	})
}

func (s *Server) history(c echo.Context) error {
	ctrl := s.sessionFor(c.Request().Context(), s.deviceID(c))
	return c.JSON(http.StatusOK, map[string]any{
		"turns":            ctrl.History(),
		"memory_available": ctrl.MemoryAvailable(),
	})
}

func (s *Server) save(c echo.Context) error {
	ctrl := s.sessionFor(c.Request().Context(), s.deviceID(c))

	err := ctrl.Save(c.Request().Context(), c.Param("id"))
	if err != nil {
		var saveErr *memory.SaveError
		switch {
		case errors.Is(err, session.ErrTurnNotFound):
			return c.JSON(http.StatusNotFound, errorBody(err.Error()))
		case errors.Is(err, session.ErrAlreadySaved):
			return c.JSON(http.StatusConflict, errorBody(err.Error()))
		case errors.Is(err, session.ErrMemoryUnavailable), errors.Is(err, session.ErrFailedTurn):
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		case errors.As(err, &saveErr):
			return c.JSON(http.StatusBadGateway, errorBody(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"saved": true})
}

func (s *Server) clear(c echo.Context) error {
	ctrl := s.sessionFor(c.Request().Context(), s.deviceID(c))
	ctrl.Clear()
	return c.NoContent(http.StatusNoContent)
}

type profileRequest struct {
	Name string `json:"name"`
}

func (s *Server) setProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	deviceID := s.deviceID(c)
	if err := s.resolver.SetDisplayName(deviceID, req.Name); err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]any{"name": req.Name})
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
