// internal/models/market.go
package models

import "time"

type MarketSentiment string

const (
	SentimentBullish MarketSentiment = "BULLISH"
	SentimentBearish MarketSentiment = "BEARISH"
	SentimentNeutral MarketSentiment = "NEUTRAL"
)

func ParseSentiment(s string) MarketSentiment {
	switch MarketSentiment(s) {
	case SentimentBullish, SentimentBearish:
		return MarketSentiment(s)
	default:
		return SentimentNeutral
	}
}

type MarketQuote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name,omitempty"`
	Sector        string    `json:"sector,omitempty"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"changePercent"`
	PERatio       *float64  `json:"peRatio,omitempty"`
	AsOf          time.Time `json:"asOf"`
}

// RetrievedDocument is created per retrieval call and never persisted by the pipeline.
type RetrievedDocument struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Score    float64           `json:"score"`
	Sequence int64             `json:"sequence"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
