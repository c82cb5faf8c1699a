package summarizeportfolio

import (
	"advisory-workers/internal/finance"
	"advisory-workers/internal/models"
)

type Input struct {
	UserID   string              `json:"userId"`
	Holdings []models.Holding   `json:"holdings,omitempty"`
	Profile  *models.UserProfile `json:"profile,omitempty"`
}

type Output struct {
	Summary        *finance.PortfolioSummary        `json:"portfolio"`
	Recommendation *finance.PortfolioRecommendation `json:"recommendation,omitempty"`
}
