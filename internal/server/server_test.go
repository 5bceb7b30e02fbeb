package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skinside/skinside/internal/auth"
	"github.com/skinside/skinside/internal/config"
	"github.com/skinside/skinside/internal/database"
	"github.com/skinside/skinside/internal/gemini"
	"github.com/skinside/skinside/internal/matching"
)

type stubStore struct {
	profile *database.Profile
	trials  []database.TrialRecord
	stored  *database.StoredMatch
	pingErr error
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }

func (s *stubStore) GetProfile(context.Context, string) (*database.Profile, error) {
	return s.profile, nil
}

func (s *stubStore) SaveProfile(_ context.Context, p *database.Profile) error {
	s.profile = p
	return nil
}

func (s *stubStore) ListTrials(context.Context) ([]database.TrialRecord, error) {
	return s.trials, nil
}

func (s *stubStore) GetTrial(_ context.Context, number string) (*database.TrialRecord, error) {
	for i := range s.trials {
		if s.trials[i].Number == number {
			return &s.trials[i], nil
		}
	}
	return nil, nil
}

func (s *stubStore) SaveTrial(context.Context, *database.TrialRecord) error { return nil }

func (s *stubStore) GetStoredMatch(context.Context, string) (*database.StoredMatch, error) {
	return s.stored, nil
}

func (s *stubStore) SaveStoredMatch(_ context.Context, m *database.StoredMatch) error {
	s.stored = m
	return nil
}

func (s *stubStore) RunSQLMaintenance(context.Context) error { return nil }

type stubRequester struct {
	response string
	err      error
}

func (r *stubRequester) RequestMatch(context.Context, string) (string, error) {
	return r.response, r.err
}

const matchDoc = `{"matches":[{"trialNumber":"T1","matchScore":80,"matchReasons":[],"concerns":[],"recommendation":"Talk to your doctor."}]}`

func newTestServer(t *testing.T, store database.Store, requester gemini.Client) (*Server, string) {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)

	token, err := tokens.Generate("user-1", time.Hour)
	require.NoError(t, err)

	matcher := matching.NewService(store, requester, nil, 65)

	cfg := config.ServerConfig{
		Addr:            ":0",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}

	return New(cfg, store, matcher, tokens, nil), token
}

func doRequest(srv *Server, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &stubStore{}, nil)

	rec := doRequest(srv, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, &stubStore{}, nil)

	for _, path := range []string{"/api/match", "/api/profile", "/api/trials"} {
		rec := doRequest(srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestMatchRunHappyPath(t *testing.T) {
	store := &stubStore{
		profile: &database.Profile{UserID: "user-1", PrimaryCondition: "psoriasis"},
		trials:  []database.TrialRecord{{Number: "T1"}},
	}
	srv, token := newTestServer(t, store, &stubRequester{response: matchDoc})

	rec := doRequest(srv, http.MethodPost, "/api/match", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var outcome matching.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.False(t, outcome.FromCache)
	require.Len(t, outcome.Result.Matches, 1)
	assert.Equal(t, "T1", outcome.Result.Matches[0].TrialNumber)
}

func TestMatchRunNoProfile(t *testing.T) {
	srv, token := newTestServer(t, &stubStore{trials: []database.TrialRecord{{Number: "T1"}}}, &stubRequester{response: matchDoc})

	rec := doRequest(srv, http.MethodPost, "/api/match", token, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_profile")
}

func TestMatchRunNoTrials(t *testing.T) {
	store := &stubStore{profile: &database.Profile{UserID: "user-1"}}
	srv, token := newTestServer(t, store, &stubRequester{response: matchDoc})

	rec := doRequest(srv, http.MethodPost, "/api/match", token, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_trials")
}

func TestMatchRunRateLimited(t *testing.T) {
	store := &stubStore{
		profile: &database.Profile{UserID: "user-1"},
		trials:  []database.TrialRecord{{Number: "T1"}},
	}
	srv, token := newTestServer(t, store, &stubRequester{err: gemini.ErrRateLimited})

	rec := doRequest(srv, http.MethodPost, "/api/match", token, nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMatchRunWithoutRequester(t *testing.T) {
	store := &stubStore{
		profile: &database.Profile{UserID: "user-1"},
		trials:  []database.TrialRecord{{Number: "T1"}},
	}
	srv, token := newTestServer(t, store, nil)

	rec := doRequest(srv, http.MethodPost, "/api/match", token, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStoredMatchNotFound(t *testing.T) {
	srv, token := newTestServer(t, &stubStore{}, nil)

	rec := doRequest(srv, http.MethodGet, "/api/match", token, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	store := &stubStore{}
	srv, token := newTestServer(t, store, nil)

	rec := doRequest(srv, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body, err := json.Marshal(database.Profile{
		UserID:           "ignored-in-favor-of-token-subject",
		FirstName:        "Ada",
		PrimaryCondition: "psoriasis",
	})
	require.NoError(t, err)

	rec = doRequest(srv, http.MethodPut, "/api/profile", token, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got database.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "Ada", got.FirstName)
}

func TestProfilePutRejectsBadBody(t *testing.T) {
	srv, token := newTestServer(t, &stubStore{}, nil)

	rec := doRequest(srv, http.MethodPut, "/api/profile", token, []byte("not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrialsListAndGet(t *testing.T) {
	store := &stubStore{trials: []database.TrialRecord{
		{Number: "T1", Phase: "Phase 3"},
		{Number: "T2", Phase: "Phase 2"},
	}}
	srv, token := newTestServer(t, store, nil)

	rec := doRequest(srv, http.MethodGet, "/api/trials", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "T1")
	assert.Contains(t, rec.Body.String(), "T2")

	rec = doRequest(srv, http.MethodGet, "/api/trials/T1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Phase 3")

	rec = doRequest(srv, http.MethodGet, "/api/trials/T9", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
