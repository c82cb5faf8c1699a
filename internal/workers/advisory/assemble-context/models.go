package assemblecontext

import "advisory-workers/internal/models"

type Input struct {
	Profile   *models.UserProfile        `json:"profile,omitempty"`
	Documents []models.RetrievedDocument `json:"documents"`
	Quotes    []models.MarketQuote       `json:"quotes"`
}

type Output struct {
	Context string  `json:"context"`
	Payload Payload `json:"contextSections"`
}
