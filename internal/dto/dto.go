package dto

import (
	"time"

	"github.com/strazyuk/ProjectSpara/internal/detector"
	"github.com/strazyuk/ProjectSpara/internal/models"
)

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Provider  string `json:"ai_provider"`
}

type DetectionResponse struct {
	Status string          `json:"status"`
	Data   detector.Result `json:"data"`
}

type SubscriptionListResponse struct {
	Count int                   `json:"count"`
	Data  []models.Subscription `json:"data"`
}

type BargainResponse struct {
	Count         int                         `json:"count"`
	Data          []models.BargainOpportunity `json:"data"`
	Source        string                      `json:"source"`
	LastCheckedAt time.Time                   `json:"last_checked_at"`
}
