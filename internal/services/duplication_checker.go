package services

import (
	"context"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"complaintdesk/internal/models"
)

// DuplicationCandidate is an existing complaint a new submission is compared
// against.
type DuplicationCandidate struct {
	ComplaintID   int
	ReferenceCode string
	Title         string
	Description   string
}

// DuplicationMatch pairs a candidate with its verdict.
type DuplicationMatch struct {
	ComplaintID   int                       `json:"complaintId"`
	ReferenceCode string                    `json:"referenceCode"`
	Title         string                    `json:"title"`
	Verdict       models.DuplicationVerdict `json:"verdict"`
}

// DuplicationChecker fans one new complaint out against many existing
// candidates. Concurrency is bounded by a small worker limit so a batch sweep
// cannot stampede the third-party endpoint; the gateway's own rate limiter
// smooths what remains.
type DuplicationChecker struct {
	ai      *AIChatService
	workers int
}

// NewDuplicationChecker creates a new duplication checker
func NewDuplicationChecker(ai *AIChatService, workers int) *DuplicationChecker {
	if workers <= 0 {
		workers = 4
	}
	return &DuplicationChecker{ai: ai, workers: workers}
}

// Sweep scores title/description against every candidate and returns all
// matches ordered by score descending. Individual failures surface as
// neutral verdicts (AnalyzeDuplication never errors), so a sweep always
// returns one match per candidate.
func (c *DuplicationChecker) Sweep(ctx context.Context, title, description string, candidates []DuplicationCandidate) []DuplicationMatch {
	if len(candidates) == 0 {
		return nil
	}

	matches := make([]DuplicationMatch, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, cand := range candidates {
		g.Go(func() error {
			verdict := c.ai.AnalyzeDuplication(gctx, title, description, cand.Title, cand.Description)
			matches[i] = DuplicationMatch{
				ComplaintID:   cand.ComplaintID,
				ReferenceCode: cand.ReferenceCode,
				Title:         cand.Title,
				Verdict:       verdict,
			}
			return nil
		})
	}
	// Workers never return errors; Wait only orders the writes above.
	if err := g.Wait(); err != nil {
		log.Printf("⚠️  [AI-DUP] Sweep wait failed: %v", err)
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Verdict.Score > matches[b].Verdict.Score
	})
	return matches
}
