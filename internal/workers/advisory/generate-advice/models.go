package generateadvice

import (
	"advisory-workers/internal/models"
	smartfallback "advisory-workers/internal/workers/advisory/smart-fallback"
)

type Input struct {
	Message       string                 `json:"message"`
	Context       string                 `json:"context"`
	History       []models.ChatMessage   `json:"history"`
	RiskTolerance models.RiskTolerance   `json:"riskTolerance"`
	Sentiment     models.MarketSentiment `json:"sentiment"`
}

type Output struct {
	ResponseText  string                `json:"responseText"`
	Source        models.ResponseSource `json:"source"`
	FallbackRoute smartfallback.Route   `json:"fallbackRoute,omitempty"`
}
