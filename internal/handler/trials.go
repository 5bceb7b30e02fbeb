package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skinside/skinside/internal/database"
)

// TrialsHandler serves read access to the clinical trial registry.
type TrialsHandler struct {
	store database.Store
	log   *slog.Logger
}

// NewTrialsHandler creates a TrialsHandler.
func NewTrialsHandler(store database.Store, log *slog.Logger) *TrialsHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TrialsHandler{
		store: store,
		log:   log.With("component", "trials_handler"),
	}
}

// List handles GET /api/trials.
func (h *TrialsHandler) List(w http.ResponseWriter, r *http.Request) {
	trials, err := h.store.ListTrials(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "Failed to list trials", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"Something went wrong. Please try again later.")
		return
	}
	if trials == nil {
		trials = []database.TrialRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"trials": trials})
}

// Get handles GET /api/trials/{number}.
func (h *TrialsHandler) Get(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	trial, err := h.store.GetTrial(r.Context(), number)
	if err != nil {
		h.log.ErrorContext(r.Context(), "Failed to load trial", "number", number, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"Something went wrong. Please try again later.")
		return
	}
	if trial == nil {
		writeError(w, http.StatusNotFound, "not_found", "No such trial.")
		return
	}

	writeJSON(w, http.StatusOK, trial)
}
