package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/skinside/skinside/internal/auth"
	"github.com/skinside/skinside/internal/matching"
)

// MatchHandler serves the match trigger and the stored-match read.
type MatchHandler struct {
	matcher *matching.Service
	log     *slog.Logger
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(matcher *matching.Service, log *slog.Logger) *MatchHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &MatchHandler{
		matcher: matcher,
		log:     log.With("component", "match_handler"),
	}
}

// Run handles POST /api/match. Executes a match run for the signed-in
// user; the cache short-circuits unchanged profiles unless ?force=true.
func (h *MatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
		return
	}

	force := r.URL.Query().Get("force") == "true"

	outcome, err := h.matcher.Match(r.Context(), userID, force)
	if err != nil {
		writeMatchError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// Stored handles GET /api/match. Returns the persisted result of the
// last run without triggering a new one; 404 when no run has completed.
func (h *MatchHandler) Stored(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
		return
	}

	outcome, err := h.matcher.Stored(r.Context(), userID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "Failed to load stored match", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"Something went wrong. Please try again later.")
		return
	}
	if outcome == nil {
		writeError(w, http.StatusNotFound, "not_found", "No match results yet. Run a match first.")
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}
