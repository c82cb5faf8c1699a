package projectgoal

import (
	"advisory-workers/internal/finance"
	"advisory-workers/internal/models"
)

// Input names a stored goal or carries one inline. An inline goal wins.
type Input struct {
	UserID string       `json:"userId"`
	GoalID string       `json:"goalId,omitempty"`
	Goal   *models.Goal `json:"goal,omitempty"`
}

type Output struct {
	Projection     *finance.GoalProjection     `json:"projection"`
	Recommendation *finance.GoalRecommendation `json:"recommendation,omitempty"`
	AlertMessageID string                      `json:"alertMessageId,omitempty"`
}
