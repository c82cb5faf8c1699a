package assembleresponse

import "advisory-workers/internal/models"

type Input struct {
	UserID         string                     `json:"userId"`
	Message        string                     `json:"message"`
	ResponseText   string                     `json:"responseText"`
	Source         models.ResponseSource      `json:"source"`
	Documents      []models.RetrievedDocument `json:"documents"`
	MarketDataUsed bool                       `json:"marketDataUsed"`
	Sentiment      models.MarketSentiment     `json:"sentiment"`
}

type Output struct {
	Response         models.AdvisoryResponse `json:"advisoryResponse"`
	PersistenceEvent models.PersistenceEvent `json:"persistenceEvent"`
	OutputReplaced   bool                    `json:"outputReplaced"`
}
