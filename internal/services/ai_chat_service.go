package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"complaintdesk/internal/models"
)

// SetupRequiredMessage is returned verbatim when the AI gateway was never
// configured. It is a terminal branch, not a failure: no context is built and
// the fallback responder is not consulted.
const SetupRequiredMessage = "AI Setup Required: Please configure the Gemini API Key in the server environment. [System Message]"

// ResponseSource says where a chat answer came from, so callers and tests can
// tell "model answered" from "fell back" without inspecting the text.
type ResponseSource string

const (
	SourceModel        ResponseSource = "model"
	SourceFallback     ResponseSource = "fallback"
	SourceUnconfigured ResponseSource = "unconfigured"
)

// AIChatService orchestrates the two AI-backed operations: conversational
// question answering and pairwise duplication scoring. Both have a
// fails-never contract — every failure below this layer is converted into a
// safe user-facing value here.
type AIChatService struct {
	contextBuilder *ContextBuilder
	fallback       *ChatService
	client         InferenceClient
	now            func() time.Time
}

// NewAIChatService creates a new AI chat service
func NewAIChatService(contextBuilder *ContextBuilder, fallback *ChatService, client InferenceClient) *AIChatService {
	return &AIChatService{
		contextBuilder: contextBuilder,
		fallback:       fallback,
		client:         client,
		now:            time.Now,
	}
}

// SmartResponse answers a user message. It always returns a non-empty string
// and never returns an error, whatever the gateway does.
func (s *AIChatService) SmartResponse(ctx context.Context, userMessage string) string {
	text, _ := s.SmartResponseDetail(ctx, userMessage)
	return text
}

// SmartResponseDetail is SmartResponse plus the answer's provenance.
func (s *AIChatService) SmartResponseDetail(ctx context.Context, userMessage string) (string, ResponseSource) {
	if !s.client.Configured() {
		return SetupRequiredMessage, SourceUnconfigured
	}

	// now is captured once so every time window in the assembled context
	// shares the same day boundaries.
	now := s.now()

	prompt, err := s.contextBuilder.BuildContext(ctx, userMessage, now)
	if err != nil {
		log.Printf("⚠️  [AI-CHAT] Context build failed, using fallback: %v", err)
		return s.fallback.Respond(userMessage), SourceFallback
	}

	text, err := s.client.Infer(ctx, prompt)
	if err != nil {
		log.Printf("⚠️  [AI-CHAT] Inference failed, using fallback: %v", err)
		return s.fallback.Respond(userMessage), SourceFallback
	}
	if text == "" {
		return s.fallback.Respond(userMessage), SourceFallback
	}

	return text, SourceModel
}

// AnalyzeDuplication scores how likely two complaints describe the same
// issue. It never returns an error: every failure degrades to a score of 0 so
// an AI outage can never block a complaint submission, and a failed analysis
// is never treated as evidence of duplication.
func (s *AIChatService) AnalyzeDuplication(ctx context.Context, titleA, descA, titleB, descB string) models.DuplicationVerdict {
	if !s.client.Configured() {
		return models.DuplicationVerdict{Score: 0, Reasoning: "AI not configured."}
	}

	prompt := fmt.Sprintf(`You are a duplication detection expert. Compare these two complaints and determine if they are duplicates.
COMPLAINT 1:
Title: %s
Description: %s

COMPLAINT 2:
Title: %s
Description: %s

Analyze distinctiveness, location context (if any), and core issue.
Return JSON ONLY: { "score": 0-100, "reasoning": "short 1 sentence exp" }`,
		titleA, descA, titleB, descB)

	raw, err := s.client.Infer(ctx, prompt)
	if err != nil {
		log.Printf("⚠️  [AI-DUP] Inference failed: %v", err)
		return models.DuplicationVerdict{Score: 0, Reasoning: "AI Analysis Failed"}
	}

	verdict, err := parseDuplicationVerdict(raw)
	if err != nil {
		log.Printf("⚠️  [AI-DUP] Failed to parse verdict: %v, content: %s", err, raw)
		return models.DuplicationVerdict{Score: 0, Reasoning: "AI Analysis Failed"}
	}
	return verdict
}

// parseDuplicationVerdict decodes the model's JSON verdict. The reply may be
// wrapped in markdown code fences; an absent score defaults to 0 and an
// absent reasoning to a fixed placeholder. Only invalid JSON is an error.
func parseDuplicationVerdict(raw string) (models.DuplicationVerdict, error) {
	clean := stripMarkdownCodeBlock(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(clean), &fields); err != nil {
		return models.DuplicationVerdict{}, fmt.Errorf("invalid verdict JSON: %w", err)
	}

	verdict := models.DuplicationVerdict{Score: 0, Reasoning: "No reasoning provided"}
	if v, ok := fields["score"].(float64); ok {
		verdict.Score = int(v)
	}
	if v, ok := fields["reasoning"].(string); ok && v != "" {
		verdict.Reasoning = v
	}

	// An adversarial reply must not push the score outside the contract.
	if verdict.Score < 0 {
		verdict.Score = 0
	}
	if verdict.Score > 100 {
		verdict.Score = 100
	}
	return verdict, nil
}

// stripMarkdownCodeBlock removes ``` fencing that LLMs add around JSON even
// when told not to.
func stripMarkdownCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
