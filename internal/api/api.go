// Package api provides HTTP handlers and the main API server logic for Hearth.
//
// It exposes RESTful endpoints for chat turns, transcript retrieval, and
// finalized event/keeper/child records. The API integrates with the flow
// orchestrator, conversation controller, and store modules.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hearthplan/hearth/internal/conversation"
	"github.com/hearthplan/hearth/internal/flow"
	"github.com/hearthplan/hearth/internal/store"
)

// DefaultAddr is the default API listen address.
const DefaultAddr = ":8080"

// DefaultNudgeDelay is the default delay before the INTRO nudge fires.
const DefaultNudgeDelay = 45 * time.Second

// Opts holds configuration for the API server.
type Opts struct {
	Addr       string
	NudgeDelay time.Duration
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithNudgeDelay sets the INTRO nudge delay.
func WithNudgeDelay(d time.Duration) Option {
	return func(o *Opts) { o.NudgeDelay = d }
}

// Server hosts the Hearth HTTP API.
type Server struct {
	orchestrator *flow.Orchestrator
	controller   *conversation.Controller
	store        store.Store
	addr         string
	nudgeDelay   time.Duration
}

// NewServer creates an API server around the given collaborators.
func NewServer(orch *flow.Orchestrator, controller *conversation.Controller, st store.Store, opts ...Option) *Server {
	cfg := Opts{
		Addr:       DefaultAddr,
		NudgeDelay: DefaultNudgeDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		orchestrator: orch,
		controller:   controller,
		store:        st,
		addr:         cfg.Addr,
		nudgeDelay:   cfg.NudgeDelay,
	}
}

// Handler returns the API route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", s.chatHandler)
	mux.HandleFunc("/messages", s.messagesHandler)
	mux.HandleFunc("/events", s.eventsHandler)
	mux.HandleFunc("/keepers", s.keepersHandler)
	mux.HandleFunc("/children", s.childrenHandler)
	mux.HandleFunc("/prompt", s.promptHandler)
	mux.HandleFunc("/reset", s.resetHandler)
	return mux
}

// Run opens the conversation session, schedules the INTRO nudge, and serves
// the API until the listener fails.
func (s *Server) Run() error {
	threadID := s.orchestrator.StartSession(s.nudgeDelay)
	slog.Info("Hearth API running", "addr", s.addr, "threadID", threadID)
	return http.ListenAndServe(s.addr, s.Handler())
}
