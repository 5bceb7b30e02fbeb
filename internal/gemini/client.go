// Package gemini implements the outbound call to Google's Gemini API for
// trial matching. It sends one request per invocation, applies a bounded
// timeout, and classifies transport failures so callers can surface
// distinct user-visible messages.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/skinside/skinside/internal/config"
)

var (
	// ErrRateLimited indicates the upstream returned HTTP 429. The caller
	// should surface a retry-later message; no automatic retry happens here.
	ErrRateLimited = errors.New("gemini rate limited")

	// ErrQuotaExceeded indicates the upstream returned HTTP 402. Fatal for
	// this run and user-actionable.
	ErrQuotaExceeded = errors.New("gemini quota exceeded")

	// ErrUpstream indicates any other non-success response from the model
	// endpoint.
	ErrUpstream = errors.New("gemini upstream error")

	// ErrEmptyResponse indicates a successful response envelope that
	// contained no usable candidate text. Distinct from a parse failure.
	ErrEmptyResponse = errors.New("gemini returned empty response")
)

// Client defines the interface for the match request operation.
type Client interface {
	// RequestMatch sends the built prompt to the model and returns the raw
	// text of the first candidate. Exactly one upstream request per call;
	// no retries, no backoff.
	RequestMatch(ctx context.Context, prompt string) (string, error)
}

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	timeout       time.Duration
}

// NewClient creates a new Gemini client with the provided configuration.
// The API key is required; construction must fail before any request can
// be attempted without one.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	contentConfig := &genai.GenerateContentConfig{
		Temperature: &temperature,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: MatchingSystemInstruction}},
		},
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model)
	return &sdkClient{
		genaiClient:   gi,
		log:           logger,
		contentConfig: contentConfig,
		modelName:     cfg.Model,
		timeout:       cfg.Timeout,
	}, nil
}

// RequestMatch sends the prompt and extracts the first candidate's text.
func (c *sdkClient) RequestMatch(ctx context.Context, prompt string) (string, error) {
	c.log.DebugContext(ctx, "Requesting trial match", "prompt_length", len(prompt))

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.genaiClient.Models.GenerateContent(reqCtx, c.modelName, contents, c.contentConfig)
	if err != nil {
		classified := classifyAPIError(err)
		c.log.ErrorContext(ctx, "Gemini match request failed", "error", classified)
		return "", classified
	}

	return c.extractTextFromResponse(ctx, resp)
}

// classifyAPIError maps a genai SDK error onto the requester's failure
// classes. Rate limiting and payment problems get dedicated sentinels so
// the caller can show distinct messages; everything else is an upstream
// error carrying the original status and body.
func classifyAPIError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
		default:
			return fmt.Errorf("%w: status %d: %s", ErrUpstream, apiErr.Code, apiErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("%w: blocked by safety filter: %s", ErrEmptyResponse, reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("%w: finish reason: %s", ErrEmptyResponse, finishReason)
	}

	rawText := resp.Text()
	if rawText == "" {
		c.log.WarnContext(ctx, "Gemini response text is empty")
		return "", ErrEmptyResponse
	}

	return rawText, nil
}
