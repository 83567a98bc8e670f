package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/strazyuk/ProjectSpara/internal/detector"
	"github.com/strazyuk/ProjectSpara/internal/dto"
	"github.com/strazyuk/ProjectSpara/internal/middleware"
	"github.com/strazyuk/ProjectSpara/internal/models"
)

type SubscriptionDetector interface {
	Detect(ctx context.Context, userID uuid.UUID) (*detector.Result, error)
}

type SubscriptionLister interface {
	ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
}

type SubscriptionHandler struct {
	detector SubscriptionDetector
	lister   SubscriptionLister
}

func NewSubscriptionHandler(d SubscriptionDetector, l SubscriptionLister) *SubscriptionHandler {
	return &SubscriptionHandler{detector: d, lister: l}
}

// Detect runs subscription detection over the caller's recent transactions.
func (h *SubscriptionHandler) Detect(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	result, err := h.detector.Detect(c.UserContext(), userID)
	if err != nil {
		slog.Error("subscription detection failed", "user_id", userID.String(), "action", "detect", "request_id", requestID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to detect subscriptions",
		})
	}

	return c.JSON(dto.DetectionResponse{Status: "success", Data: *result})
}

func (h *SubscriptionHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	subs, err := h.lister.ListSubscriptions(c.UserContext(), userID)
	if err != nil {
		slog.Error("failed to list subscriptions", "user_id", userID.String(), "request_id", requestID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list subscriptions",
		})
	}
	if subs == nil {
		subs = []models.Subscription{}
	}

	return c.JSON(dto.SubscriptionListResponse{Count: len(subs), Data: subs})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
