// Package handler implements the JSON HTTP API: match trigger and read,
// profile upsert and read, and trial browsing.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/skinside/skinside/internal/gemini"
	"github.com/skinside/skinside/internal/matching"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeMatchError maps pipeline errors to HTTP responses. Missing inputs
// and quota states each get a distinct user-visible message so the
// client can show the right guidance instead of a generic failure.
func writeMatchError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, matching.ErrNoProfile):
		writeError(w, http.StatusUnprocessableEntity, "no_profile",
			"Complete your health profile before requesting trial matches.")

	case errors.Is(err, matching.ErrNoTrials):
		writeError(w, http.StatusUnprocessableEntity, "no_trials",
			"No clinical trials are available to match against right now.")

	case errors.Is(err, matching.ErrConfiguration):
		writeError(w, http.StatusServiceUnavailable, "not_configured",
			"Trial matching is not available right now.")

	case errors.Is(err, gemini.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited",
			"The matching service is busy. Please try again in a few minutes.")

	case errors.Is(err, gemini.ErrQuotaExceeded):
		writeError(w, http.StatusPaymentRequired, "quota_exceeded",
			"The matching service quota has been exhausted. Please contact support.")

	case errors.Is(err, gemini.ErrEmptyResponse):
		writeError(w, http.StatusBadGateway, "empty_response",
			"The matching service returned no result. Please try again.")

	case errors.Is(err, gemini.ErrUpstream):
		writeError(w, http.StatusBadGateway, "upstream_error",
			"The matching service failed. Please try again later.")

	default:
		log.Error("Unhandled match error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"Something went wrong. Please try again later.")
	}
}
