package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/skinside/skinside/internal/auth"
	"github.com/skinside/skinside/internal/database"
)

// ProfileHandler serves the health questionnaire profile for the
// signed-in user.
type ProfileHandler struct {
	store database.Store
	log   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(store database.Store, log *slog.Logger) *ProfileHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ProfileHandler{
		store: store,
		log:   log.With("component", "profile_handler"),
	}
}

// Get handles GET /api/profile. 404 until the user has saved a profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
		return
	}

	profile, err := h.store.GetProfile(r.Context(), userID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "Failed to load profile", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"Something went wrong. Please try again later.")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "not_found", "No health profile yet.")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Put handles PUT /api/profile. Upserts the whole profile for the
// signed-in user; the user_id in the body, if any, is ignored.
func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
		return
	}

	var profile database.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Request body must be a valid profile document.")
		return
	}
	profile.UserID = userID

	if err := h.store.SaveProfile(r.Context(), &profile); err != nil {
		h.log.ErrorContext(r.Context(), "Failed to save profile", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"Something went wrong. Please try again later.")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
