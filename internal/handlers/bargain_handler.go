package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/strazyuk/ProjectSpara/internal/bargains"
	"github.com/strazyuk/ProjectSpara/internal/dto"
	"github.com/strazyuk/ProjectSpara/internal/middleware"
)

type BargainHunter interface {
	Hunt(ctx context.Context, userID uuid.UUID, opts bargains.HuntOptions) (*bargains.HuntResult, error)
}

type BargainHandler struct {
	hunter BargainHunter
}

func NewBargainHandler(hunter BargainHunter) *BargainHandler {
	return &BargainHandler{hunter: hunter}
}

// List returns the caller's bargain opportunities. ?refresh=true bypasses
// the cache.
func (h *BargainHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	opts := bargains.HuntOptions{Force: c.QueryBool("refresh", false)}
	res, err := h.hunter.Hunt(c.UserContext(), userID, opts)
	if err != nil {
		slog.Error("bargain hunt failed", "user_id", userID.String(), "action", "hunt", "request_id", requestID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to find bargains",
		})
	}

	return c.JSON(dto.BargainResponse{
		Count:         len(res.Opportunities),
		Data:          res.Opportunities,
		Source:        res.Source,
		LastCheckedAt: res.LastCheckedAt,
	})
}
