package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"complaintdesk/internal/models"
)

// searchTriggers is scanned in priority order: the first phrase in this list
// that occurs anywhere in the lower-cased message wins, even when another
// trigger appears earlier in the text. Deliberate — see ExtractSearchTerm.
var searchTriggers = []string{"about ", "find ", "search for ", "looking for "}

// ContextBuilder assembles the bounded prompt handed to the AI gateway.
// Section order is fixed: role framing, schema, stats, optional search hits,
// rules, then the user question. The rules always sit closer to the question
// than the data so the model is less likely to treat data as instructions.
type ContextBuilder struct {
	safeData *SafeDataService
}

// NewContextBuilder creates a new context builder
func NewContextBuilder(safeData *SafeDataService) *ContextBuilder {
	return &ContextBuilder{safeData: safeData}
}

// BuildContext produces the full prompt for one chat turn. now is captured
// once by the caller and threaded through the stats computation, so two calls
// at the same instant over the same data yield byte-identical output.
func (b *ContextBuilder) BuildContext(ctx context.Context, userMessage string, now time.Time) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are an intelligent AI assistant for the 'Segamat Complaint Management System'.\n")
	sb.WriteString("Your goal is to help citizens and staff by answering questions about the system, status, and processes.\n")
	sb.WriteString("------------------------------------------------\n")
	sb.WriteString("SAFE SYSTEM CONTEXT (Actual Database Data):\n")

	sb.WriteString(b.safeData.DescribeSchema())
	sb.WriteString("\n")

	stats, err := b.safeData.ComputeStats(ctx, now)
	if err != nil {
		return "", fmt.Errorf("failed to compute system stats: %w", err)
	}
	sb.WriteString(formatStats(stats))

	if term := ExtractSearchTerm(userMessage); term != "" {
		hits, err := b.safeData.Search(ctx, term, 5)
		if err != nil {
			return "", fmt.Errorf("failed to search complaints: %w", err)
		}
		if len(hits) > 0 {
			sb.WriteString(formatSearchHits(term, hits))
		}
	}

	sb.WriteString("------------------------------------------------\n")
	sb.WriteString("RULES:\n")
	sb.WriteString("1. You act as a representative of the system. Be professional and helpful.\n")
	sb.WriteString("2. Use the provided SYSTEM CONTEXT to answer questions accurately.\n")
	sb.WriteString("3. If the user asks for sensitive info (passwords, admin tokens), politely REFUSE.\n")
	sb.WriteString("4. If you don't know the answer, refer them to the Help page or suggest they contact support.\n")

	sb.WriteString("\nUSER QUESTION: ")
	sb.WriteString(userMessage)

	return sb.String(), nil
}

// ExtractSearchTerm pulls a search term out of a chat message using simple
// trigger phrases ("tell me about potholes" -> "potholes"). Triggers are
// tried in list order, not text order: given "find the report about noise",
// the term comes from "about " because it is first in the list. Punctuation
// is stripped, spaces kept, result trimmed. No trigger means no term.
func ExtractSearchTerm(message string) string {
	message = strings.ToLower(message)

	for _, trigger := range searchTriggers {
		idx := strings.Index(message, trigger)
		if idx == -1 {
			continue
		}
		term := message[idx+len(trigger):]
		var cleaned strings.Builder
		for _, r := range term {
			if !unicode.IsPunct(r) || r == ' ' {
				cleaned.WriteRune(r)
			}
		}
		return strings.TrimSpace(cleaned.String())
	}
	return ""
}

// formatStats renders the snapshot as prompt text. Empty sub-aggregates
// render as absent sections, never as errors.
func formatStats(stats *models.SystemStats) string {
	var sb strings.Builder
	sb.WriteString("CURRENT SYSTEM STATISTICS:\n")
	fmt.Fprintf(&sb, "- Total Complaints Reported: %d\n", stats.Total)
	fmt.Fprintf(&sb, "- Resolved: %d\n", stats.Resolved)
	fmt.Fprintf(&sb, "- Pending: %d\n", stats.Pending)
	fmt.Fprintf(&sb, "- New (Today): %d\n", stats.NewToday)
	fmt.Fprintf(&sb, "- New (Last 7 Days): %d\n", stats.NewLast7Days)
	fmt.Fprintf(&sb, "- New (This Month): %d\n", stats.NewThisMonth)

	if len(stats.Daily) > 0 {
		sb.WriteString("- Daily Breakdown (Last 30 Days):\n")
		for _, day := range stats.Daily {
			fmt.Fprintf(&sb, "  - %s: %d\n", day.Date, day.Count)
		}
	}

	if len(stats.ByDepartment) > 0 {
		sb.WriteString("- Complaints by Department:\n")
		for _, dept := range stats.ByDepartment {
			if dept.Count > 0 {
				fmt.Fprintf(&sb, "  - %s: %d\n", dept.Name, dept.Count)
			}
		}
	}

	return sb.String()
}

func formatSearchHits(term string, hits []models.SearchHit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FOUND COMPLAINTS MATCHING '%s':\n", term)
	for _, h := range hits {
		fmt.Fprintf(&sb, "- ID %d: %s [%s] (%s) - Cat: %s\n",
			h.ComplaintID, h.Title, h.Status, h.SubmittedAt.Format("2006-01-02"), h.CategoryName)
	}
	return sb.String()
}
