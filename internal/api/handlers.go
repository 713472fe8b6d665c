// Package api provides HTTP handlers for zamowbot endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/zamowbot/zamowbot/internal/models"
)

// TurnRequest is the body of POST /turn. A missing session ID mints a new
// session.
type TurnRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Utterance string `json:"utterance"`
}

func (s *Server) turnHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.turnHandler: processing turn request", "method", r.Method)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.turnHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
		slog.Debug("Server.turnHandler: minted session", "sessionID", req.SessionID)
	}

	result, err := s.pipeline.Turn(r.Context(), req.SessionID, req.Utterance)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyUtterance):
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Utterance cannot be empty"))
		case errors.Is(err, models.ErrAlreadyFinalized):
			slog.Error("Server.turnHandler: finalization contract violated", "error", err, "sessionID", req.SessionID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Internal server error"))
		default:
			slog.Error("Server.turnHandler: turn failed", "error", err, "sessionID", req.SessionID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process turn"))
		}
		return
	}

	slog.Info("Server.turnHandler: turn processed",
		"sessionID", result.SessionID, "intent", result.Intent.Intent, "source", result.Intent.Source)
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

func (s *Server) sessionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ids, err := s.sessions.ListSessionIDs(r.Context())
	if err != nil {
		slog.Error("Server.sessionsHandler: list failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list sessions"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(ids))
}

func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if id == "" || strings.Contains(id, "/") {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid session ID"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		session, err := s.sessions.GetSession(r.Context(), id)
		if err != nil {
			slog.Error("Server.sessionHandler: get failed", "error", err, "sessionID", id)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load session"))
			return
		}
		if session == nil {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(session))
	case http.MethodDelete:
		if err := s.sessions.DeleteSession(r.Context(), id); err != nil {
			slog.Error("Server.sessionHandler: delete failed", "error", err, "sessionID", id)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete session"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(nil))
	default:
		w.Header().Set("Allow", "GET, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// AdminReport summarizes the runtime state for operators.
type AdminReport struct {
	SessionCount  int                   `json:"session_count"`
	Restaurants   []string              `json:"restaurants"`
	OperatingMode string                `json:"operating_mode"`
	Overrides     models.AdminOverrides `json:"overrides"`
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ids, err := s.sessions.ListSessionIDs(r.Context())
	if err != nil {
		slog.Error("Server.reportHandler: session list failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to build report"))
		return
	}
	names, err := s.menu.CatalogNames(r.Context())
	if err != nil {
		slog.Error("Server.reportHandler: catalog lookup failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to build report"))
		return
	}
	report := AdminReport{
		SessionCount:  len(ids),
		Restaurants:   names,
		OperatingMode: string(s.controller.Mode()),
		Overrides:     s.pipeline.Overrides(),
	}
	writeJSONResponse(w, http.StatusOK, models.Success(report))
}

func (s *Server) overridesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	switch r.Method {
	case http.MethodGet:
		writeJSONResponse(w, http.StatusOK, models.Success(s.pipeline.Overrides()))
	case http.MethodPost:
		var o models.AdminOverrides
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
			slog.Warn("Server.overridesHandler: failed to decode JSON", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		s.pipeline.SetOverrides(o)
		slog.Info("Server.overridesHandler: overrides updated",
			"style", o.ForceStyle, "verbosity", o.ForceVerbosity, "disableLLM", o.DisableLLM, "fastTTS", o.ForceFastTTS)
		writeJSONResponse(w, http.StatusOK, models.Success(o))
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"status": "healthy"}))
}
