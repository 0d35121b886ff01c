package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"complaintdesk/internal/logging"
	"complaintdesk/internal/models"
	"complaintdesk/internal/services"
)

// ChatHandler handles chat requests
type ChatHandler struct {
	ai      *services.AIChatService
	metrics *services.Metrics
}

// NewChatHandler creates a new chat handler
func NewChatHandler(ai *services.AIChatService, metrics *services.Metrics) *ChatHandler {
	return &ChatHandler{ai: ai, metrics: metrics}
}

// Send handles POST /api/chat/send. Empty messages are rejected here, before
// the orchestrator is ever invoked; past this point the reply is always 200
// with some answer text.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body.",
		})
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message cannot be empty.",
		})
	}

	reqLogger := logging.WithRequest(uuid.NewString(), "/api/chat/send")

	start := time.Now()
	text, source := h.ai.SmartResponseDetail(c.UserContext(), message)
	elapsed := time.Since(start)
	h.metrics.RecordChatRequest(source, elapsed.Seconds())
	reqLogger.Info("chat turn completed", "source", string(source), "duration_ms", elapsed.Milliseconds())

	return c.JSON(models.ChatResponse{
		Response: text,
		Source:   string(source),
	})
}
