// internal/models/advisory.go
package models

import "time"

// Disclaimer is appended to every advisory and fallback response. Persisted chat
// history is compared against it byte for byte, so it must not be reformatted.
const Disclaimer = "\n---\n**Disclaimer**: This is AI-generated financial guidance for educational purposes only.\n" +
	"It does not constitute professional financial advice, investment recommendations, or\n" +
	"an offer to buy or sell any securities. Past performance does not guarantee future results.\n" +
	"All investments carry risk, including potential loss of principal.\n" +
	"Please consult with a qualified financial advisor before making any investment decisions.\n"

// ShortDisclaimer accompanies chat responses as a separate field for clients that render it apart.
const ShortDisclaimer = "This is AI-generated financial guidance for educational purposes only. " +
	"Please consult a SEBI-registered advisor for personalized advice."

type ResponseSource string

const (
	SourceGenerated ResponseSource = "generated"
	SourceFallback  ResponseSource = "fallback"
)

type Recommendation struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Rationale string `json:"rationale"`
}

type RecommendationKind string

const (
	KindStocks RecommendationKind = "stocks"
	KindFunds  RecommendationKind = "funds"
)

// RecommendationSet is a computed, stateless output of the fallback engine.
type RecommendationSet struct {
	Kind      RecommendationKind `json:"kind"`
	Tier      RiskTolerance      `json:"tier"`
	Sentiment MarketSentiment    `json:"sentiment"`
	Defensive bool               `json:"defensive"`
	Items     []Recommendation   `json:"items"`
}

type DocumentRef struct {
	ID    string  `json:"id"`
	Title string  `json:"title,omitempty"`
	Score float64 `json:"score"`
}

// AdvisoryResponse is created once per request and never mutated afterwards.
type AdvisoryResponse struct {
	ResponseID         string          `json:"responseId"`
	Text               string          `json:"text"`
	DisclaimerAppended bool            `json:"disclaimerAppended"`
	Source             ResponseSource  `json:"source"`
	Documents          []DocumentRef   `json:"documents"`
	MarketDataUsed     bool            `json:"marketDataUsed"`
	Sentiment          MarketSentiment `json:"sentiment"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// PersistenceEvent is handed to the caller's persistence collaborator.
type PersistenceEvent struct {
	UserID   string           `json:"userId"`
	Message  string           `json:"message"`
	Response AdvisoryResponse `json:"response"`
}

type GenerationRequest struct {
	SystemPrompt string        `json:"systemPrompt"`
	Prompt       string        `json:"prompt"`
	History      []ChatMessage `json:"history,omitempty"`
}
