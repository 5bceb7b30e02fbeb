package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/skinside/skinside/internal/config"
)

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "429 maps to rate limited",
			err:  &genai.APIError{Code: 429, Message: "resource exhausted"},
			want: ErrRateLimited,
		},
		{
			name: "402 maps to quota exceeded",
			err:  &genai.APIError{Code: 402, Message: "payment required"},
			want: ErrQuotaExceeded,
		},
		{
			name: "500 maps to upstream",
			err:  &genai.APIError{Code: 500, Message: "internal"},
			want: ErrUpstream,
		},
		{
			name: "wrapped api error still classified",
			err:  fmt.Errorf("request failed: %w", &genai.APIError{Code: 429}),
			want: ErrRateLimited,
		},
		{
			name: "non-api error maps to upstream",
			err:  errors.New("connection refused"),
			want: ErrUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyAPIError(tt.err), tt.want)
		})
	}
}

func TestClassifyAPIErrorPreservesDetail(t *testing.T) {
	err := classifyAPIError(&genai.APIError{Code: 503, Message: "overloaded"})

	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "overloaded")
}

func testClient() *sdkClient {
	return &sdkClient{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestExtractTextEmptyCandidates(t *testing.T) {
	_, err := testClient().extractTextFromResponse(context.Background(), &genai.GenerateContentResponse{})

	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestExtractTextBlockedPrompt(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
			BlockReason: genai.BlockedReasonSafety,
		},
	}

	_, err := testClient().extractTextFromResponse(context.Background(), resp)

	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestExtractTextReturnsCandidateText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: `{"matches":[]}`}}},
		}},
	}

	text, err := testClient().extractTextFromResponse(context.Background(), resp)

	require.NoError(t, err)
	assert.Equal(t, `{"matches":[]}`, text)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewClient(context.Background(), config.GeminiConfig{}, log)

	assert.Error(t, err)
}
