package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skinside/skinside/internal/gemini"
	"github.com/skinside/skinside/internal/matching"
)

func TestWriteMatchErrorMapping(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no profile", matching.ErrNoProfile, http.StatusUnprocessableEntity, "no_profile"},
		{"no trials", matching.ErrNoTrials, http.StatusUnprocessableEntity, "no_trials"},
		{"not configured", matching.ErrConfiguration, http.StatusServiceUnavailable, "not_configured"},
		{"rate limited", gemini.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"quota exceeded", gemini.ErrQuotaExceeded, http.StatusPaymentRequired, "quota_exceeded"},
		{"empty response", gemini.ErrEmptyResponse, http.StatusBadGateway, "empty_response"},
		{"upstream", gemini.ErrUpstream, http.StatusBadGateway, "upstream_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeMatchError(rec, log, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestWriteMatchErrorWrappedSentinels(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	rec := httptest.NewRecorder()
	writeMatchError(rec, log, fmt.Errorf("%w: resource exhausted", gemini.ErrRateLimited))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestDistinctMessagesPerFailureClass(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	seen := map[string]bool{}

	for _, err := range []error{
		matching.ErrNoTrials,
		gemini.ErrRateLimited,
		gemini.ErrQuotaExceeded,
		gemini.ErrUpstream,
	} {
		rec := httptest.NewRecorder()
		writeMatchError(rec, log, err)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, seen[body.Message], "duplicate message for %v", err)
		seen[body.Message] = true
	}
}
