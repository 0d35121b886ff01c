package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"complaintdesk/internal/database"
	"complaintdesk/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db     *database.DB
	client services.InferenceClient
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, client services.InferenceClient) *HealthHandler {
	return &HealthHandler{db: db, client: client}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	status := "healthy"
	dbOK := true
	if err := h.db.Ping(); err != nil {
		status = "degraded"
		dbOK = false
	}

	return c.JSON(fiber.Map{
		"status":        status,
		"database":      dbOK,
		"ai_configured": h.client.Configured(),
		"timestamp":     time.Now().Format(time.RFC3339),
	})
}
