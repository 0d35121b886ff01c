package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	cache "github.com/patrickmn/go-cache"

	"complaintdesk/internal/models"
	"complaintdesk/internal/services"
)

// duplicateScoreThreshold is the minimum verdict score reported back to the
// submitter as a possible duplicate. Below it, matches stay advisory noise.
const duplicateScoreThreshold = 60

// ComplaintHandler handles complaint listing and submission
type ComplaintHandler struct {
	complaints    *services.ComplaintService
	checker       *services.DuplicationChecker
	metrics       *services.Metrics
	listCache     *cache.Cache
	candidateSize int
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(complaints *services.ComplaintService, checker *services.DuplicationChecker, metrics *services.Metrics, candidateSize int) *ComplaintHandler {
	return &ComplaintHandler{
		complaints: complaints,
		checker:    checker,
		metrics:    metrics,
		// Short TTL: the public list is hot and read-only. AI context is
		// never served from this cache.
		listCache:     cache.New(30*time.Second, time.Minute),
		candidateSize: candidateSize,
	}
}

// Categories handles GET /api/categories.
func (h *ComplaintHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.complaints.Categories(c.UserContext())
	if err != nil {
		log.Printf("❌ [COMPLAINTS] Failed to list categories: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load categories.",
		})
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// Departments handles GET /api/departments.
func (h *ComplaintHandler) Departments(c *fiber.Ctx) error {
	departments, err := h.complaints.Departments(c.UserContext())
	if err != nil {
		log.Printf("❌ [COMPLAINTS] Failed to list departments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load departments.",
		})
	}
	return c.JSON(fiber.Map{"departments": departments})
}

// List handles GET /api/complaints — the public sanitized listing.
func (h *ComplaintHandler) List(c *fiber.Ctx) error {
	const cacheKey = "public-complaints"
	if cached, found := h.listCache.Get(cacheKey); found {
		return c.JSON(fiber.Map{"complaints": cached, "cached": true})
	}

	complaints, err := h.complaints.PublicComplaints(c.UserContext(), 50)
	if err != nil {
		log.Printf("❌ [COMPLAINTS] Failed to list complaints: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load complaints.",
		})
	}

	h.listCache.Set(cacheKey, complaints, cache.DefaultExpiration)
	return c.JSON(fiber.Map{"complaints": complaints, "cached": false})
}

// Create handles POST /api/complaints. After the complaint is stored, the new
// submission is swept against recent open complaints for duplicates; the
// sweep is advisory and can never fail the submission itself.
func (h *ComplaintHandler) Create(c *fiber.Ctx) error {
	var input models.NewComplaint
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body.",
		})
	}

	created, err := h.complaints.Create(c.UserContext(), input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	h.listCache.Delete("public-complaints")
	log.Printf("📝 [COMPLAINTS] Created %s: %s", created.ReferenceCode, created.Title)

	// Empty array in the response, never null.
	duplicates := []services.DuplicationMatch{}
	candidates, err := h.complaints.RecentOpenCandidates(c.UserContext(), created.ComplaintID, h.candidateSize)
	if err != nil {
		// Sweep is advisory only; log and return the created complaint.
		log.Printf("⚠️  [COMPLAINTS] Candidate lookup failed, skipping duplication sweep: %v", err)
	} else if len(candidates) > 0 {
		matches := h.checker.Sweep(c.UserContext(), created.Title, created.Description, candidates)
		h.metrics.RecordDuplicationChecks(len(matches))
		for _, m := range matches {
			if m.Verdict.Score >= duplicateScoreThreshold {
				duplicates = append(duplicates, m)
			}
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"complaint":          created,
		"possibleDuplicates": duplicates,
	})
}
