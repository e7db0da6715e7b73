// Package server exposes the conversation engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/randalmurphal/flightflow/pkg/flightflow"
	"github.com/randalmurphal/flightflow/pkg/flightflow/session"
)

// ChatRequest is the inbound turn payload. A missing session_id starts a new
// session.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the assistant's reply for one turn.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	FlightURL string `json:"flight_url,omitempty"`
	Done      bool   `json:"done,omitempty"`
}

// Server handles chat turns over HTTP.
//
// Turns for the same session are serialized with a per-session lock; distinct
// sessions are processed concurrently. State is loaded, run through the
// engine, and written back per turn - the previously persisted state is only
// replaced once the turn completed.
type Server struct {
	engine   *flightflow.Engine
	sessions session.Store
	logger   *slog.Logger
	echo     *echo.Echo

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates the HTTP server around an engine and a session store.
func New(engine *flightflow.Engine, sessions session.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.POST("/chat", s.handleChat)
	e.GET("/health", s.handleHealth)

	s.echo = e
	return s
}

// Start begins serving on addr. Blocks until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// handleChat processes one conversation turn.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadState(sessionID)
	if err != nil {
		s.logger.Error("session load failed", "session_id", sessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
	}

	ctx := flightflow.NewContext(c.Request().Context(),
		flightflow.WithLogger(s.logger),
		flightflow.WithSessionID(sessionID),
	)

	state, result, err := s.engine.Turn(ctx, state, req.Message)
	if err != nil {
		if errors.Is(err, flightflow.ErrEmptyMessage) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
		}
		s.logger.Error("turn failed", "session_id", sessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	if result.Done {
		if err := s.sessions.Delete(sessionID); err != nil {
			s.logger.Warn("session delete failed", "session_id", sessionID, "error", err)
		}
		s.dropLock(sessionID)
	} else if err := s.saveState(sessionID, state); err != nil {
		s.logger.Error("session save failed", "session_id", sessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Response:  result.Response,
		SessionID: sessionID,
		FlightURL: result.FlightURL,
		Done:      result.Done,
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// loadState fetches and deserializes the session state.
// A missing session yields a fresh state.
func (s *Server) loadState(sessionID string) (flightflow.ConversationState, error) {
	data, err := s.sessions.Load(sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return flightflow.NewConversationState(), nil
	}
	if err != nil {
		return flightflow.ConversationState{}, err
	}

	sess, err := session.Unmarshal(data)
	if err != nil {
		return flightflow.ConversationState{}, err
	}

	var state flightflow.ConversationState
	if err := json.Unmarshal(sess.State, &state); err != nil {
		return flightflow.ConversationState{}, err
	}
	if state.Collected == nil {
		state.Collected = make(map[string]string)
	}
	return state, nil
}

// saveState serializes and persists the session state.
func (s *Server) saveState(sessionID string, state flightflow.ConversationState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return err
	}
	data, err := session.New(sessionID, stateJSON).Marshal()
	if err != nil {
		return err
	}
	return s.sessions.Save(sessionID, data)
}

// sessionLock returns the mutex serializing turns for a session.
func (s *Server) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// dropLock forgets the mutex of an ended session.
func (s *Server) dropLock(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, sessionID)
}
