package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/strazyuk/ProjectSpara/internal/dto"
)

type HealthHandler struct {
	ping     func() error
	provider string
}

func NewHealthHandler(ping func() error, provider string) *HealthHandler {
	return &HealthHandler{ping: ping, provider: provider}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Provider:  h.provider,
	})
}
