package models

// ChatRequest is the payload for POST /api/chat/send.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the chat endpoint reply. Source tells callers whether the
// text came from the model, the deterministic fallback, or the unconfigured
// branch — without them having to pattern-match the text itself.
type ChatResponse struct {
	Response string `json:"response"`
	Source   string `json:"source"`
}

// DuplicationVerdict is the advisory outcome of comparing two complaints.
// Score is a 0-100 confidence that both describe the same underlying issue.
type DuplicationVerdict struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}
