package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lectern-ai/lectern/internal/chat"
	"github.com/lectern-ai/lectern/internal/tools"
)

// maxQueryBytes bounds the request body to keep prompts reasonable.
const maxQueryBytes = 64 * 1024

// answerer is the slice of the chat service the query handler needs.
type answerer interface {
	Answer(ctx context.Context, query, history string) (*chat.Answer, error)
}

// sessionStore is the slice of the session store the handler needs.
type sessionStore interface {
	NewID() string
	History(id string) string
	AddExchange(id, query, answer string)
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse is the body of a successful query. SessionID is always
// populated, newly created when the request carried none.
type QueryResponse struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	SessionID string   `json:"session_id"`
}

type queryHandler struct {
	chat     answerer
	sessions sessionStore
	logger   *slog.Logger
}

func (h *queryHandler) query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.sessions.NewID()
	}

	ans, err := h.chat.Answer(r.Context(), req.Query, h.sessions.History(sessionID))
	if err != nil {
		h.logger.Error("query failed", "session_id", sessionID, "error", err)
		switch {
		case errors.Is(err, tools.ErrToolNotFound):
			writeError(w, http.StatusInternalServerError, "tool_error", "tool registry misconfigured")
		default:
			writeError(w, http.StatusBadGateway, "generation_error", "generation backend failed")
		}
		return
	}

	h.sessions.AddExchange(sessionID, req.Query, ans.Text)

	sources := ans.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Answer:    ans.Text,
		Sources:   sources,
		SessionID: sessionID,
	})
}
