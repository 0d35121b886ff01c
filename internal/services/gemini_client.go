package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"complaintdesk/internal/config"
)

// ErrNotConfigured means the gateway has no usable API key. Callers must turn
// this into a distinct "setup required" message, never a generic failure.
var ErrNotConfigured = errors.New("ai gateway: api key not configured")

// defaultInferenceReply is returned when the provider answers 200 but the
// response body is missing the expected candidate text at any depth.
const defaultInferenceReply = "I couldn't generate a response."

// TransportError is a non-success HTTP status or connection-level failure.
// Body is raw provider output, kept for logs only — never shown to end users.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ai gateway: request failed with status %d", e.Status)
}

// ParseError means the provider reply could not be decoded.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ai gateway: failed to parse response: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// InferenceClient is the outbound surface the orchestrator depends on.
// Tests substitute stubs; production uses GeminiClient.
type InferenceClient interface {
	Configured() bool
	Infer(ctx context.Context, prompt string) (string, error)
}

// GeminiClient talks to the Gemini generateContent REST endpoint. One request
// per Infer call, no retries; retry policy belongs to callers. A shared rate
// limiter keeps batch duplication sweeps inside the provider's request quota.
type GeminiClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGeminiClient creates a gateway from configuration. requestsPerSecond
// bounds outbound call rate across all concurrent callers.
func NewGeminiClient(endpoint, apiKey string, requestsPerSecond int) *GeminiClient {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &GeminiClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// Configured reports whether a real API key is present. An empty key or one
// still carrying the setup placeholder prefix counts as not configured.
func (c *GeminiClient) Configured() bool {
	return c.apiKey != "" && !strings.HasPrefix(c.apiKey, config.PlaceholderKeyPrefix)
}

// Gemini REST wire format. Request and response are reduced to exactly the
// fields this service uses; everything else the provider sends is discarded
// at this boundary.
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// Infer sends one prompt and returns the first candidate's first part text.
// The configuration check runs before any network I/O. A well-formed reply
// with missing intermediate nodes degrades to defaultInferenceReply rather
// than an error — only transport and JSON-level failures are errors.
func (c *GeminiClient) Infer(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		// Cancellation while queued counts as a transport-class failure.
		return "", fmt.Errorf("ai gateway: throttled call aborted: %w", err)
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai gateway: failed to marshal request: %w", err)
	}

	url := c.endpoint + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai gateway: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai gateway: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ai gateway: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &TransportError{Status: resp.StatusCode, Body: string(raw)}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &ParseError{Cause: err}
	}

	return firstCandidateText(&parsed), nil
}

// firstCandidateText walks candidates[0].content.parts[0].text defensively.
// Every level may be absent or null in an adversarial reply; each check
// short-circuits to the safe default.
func firstCandidateText(resp *geminiResponse) string {
	if len(resp.Candidates) == 0 {
		return defaultInferenceReply
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return defaultInferenceReply
	}
	if content.Parts[0].Text == "" {
		return defaultInferenceReply
	}
	return content.Parts[0].Text
}
