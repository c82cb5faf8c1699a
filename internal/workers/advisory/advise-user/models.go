package adviseuser

import (
	"advisory-workers/internal/models"
	smartfallback "advisory-workers/internal/workers/advisory/smart-fallback"
)

type Input struct {
	UserID  string               `json:"userId"`
	Message string               `json:"message"`
	Profile *models.UserProfile  `json:"profile,omitempty"`
	History []models.ChatMessage `json:"history,omitempty"`
}

type Output struct {
	Response           models.AdvisoryResponse `json:"advisoryResponse"`
	ResponseText       string                  `json:"responseText"`
	Source             models.ResponseSource   `json:"source"`
	GuardrailViolation bool                    `json:"guardrailViolation"`
	BlockedTopic       string                  `json:"blockedTopic,omitempty"`
	FallbackRoute      smartfallback.Route     `json:"fallbackRoute,omitempty"`
	Symbols            []string                `json:"symbols"`
	RetrievalAvailable bool                    `json:"retrievalAvailable"`
	Suggestions        []string                `json:"suggestions"`
}
