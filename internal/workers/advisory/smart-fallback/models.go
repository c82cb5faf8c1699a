package smartfallback

import "advisory-workers/internal/models"

type Input struct {
	Message       string                 `json:"message"`
	RiskTolerance models.RiskTolerance   `json:"riskTolerance"`
	Sentiment     models.MarketSentiment `json:"sentiment"`
}

type Output struct {
	Text            string                     `json:"fallbackText"`
	Route           Route                      `json:"fallbackRoute"`
	Recommendations []models.RecommendationSet `json:"recommendations,omitempty"`
}
