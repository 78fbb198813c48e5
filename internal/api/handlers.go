package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hearthplan/hearth/internal/models"
)

// chatRequest is the body of a POST /chat turn.
type chatRequest struct {
	Text string `json:"text"`
}

// childRequest is the body of a POST /children registration.
type childRequest struct {
	Name string `json:"name"`
}

// chatHandler accepts one user turn and runs it through the orchestrator.
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid request body"))
		return
	}

	err := s.orchestrator.HandleTurn(r.Context(), req.Text)
	switch {
	case errors.Is(err, models.ErrTurnInFlight):
		writeJSONResponse(w, http.StatusConflict, models.Busy("a previous turn is still being processed"))
	case errors.Is(err, models.ErrNoActiveThread):
		writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("no active conversation thread"))
	case err != nil:
		slog.Error("Server.chatHandler: turn failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("turn failed"))
	default:
		writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"mode": string(s.controller.Mode())}))
	}
}

// messagesHandler returns the chat transcript.
func (s *Server) messagesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	messages, err := s.store.GetMessages()
	if err != nil {
		slog.Error("Server.messagesHandler: failed to load messages", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to load messages"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(messages))
}

// eventsHandler returns finalized events.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	events, err := s.store.GetEvents()
	if err != nil {
		slog.Error("Server.eventsHandler: failed to load events", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to load events"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(events))
}

// keepersHandler returns finalized keepers.
func (s *Server) keepersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	keepers, err := s.store.GetKeepers()
	if err != nil {
		slog.Error("Server.keepersHandler: failed to load keepers", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to load keepers"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(keepers))
}

// childrenHandler lists (GET) or registers (POST) children.
func (s *Server) childrenHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		children, err := s.store.GetChildren()
		if err != nil {
			slog.Error("Server.childrenHandler: failed to load children", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to load children"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(children))
	case http.MethodPost:
		var req childRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("child name is required"))
			return
		}
		child := models.Child{ID: models.NewRecordID(), Name: req.Name}
		if err := s.store.AddChild(child); err != nil {
			slog.Error("Server.childrenHandler: failed to add child", "error", err, "name", req.Name)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to add child"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(child))
	default:
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
	}
}

// promptHandler returns a generated follow-up question for the first missing
// required field of the in-progress event.
func (s *Server) promptHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	question, ok := s.orchestrator.NextQuestion()
	if !ok {
		writeJSONResponse(w, http.StatusOK, models.Success(map[string]bool{"complete": true}))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"question": question}))
}

// resetHandler returns the conversation controller to a clean slate.
func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("method not allowed"))
		return
	}
	s.controller.Reset()
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}
