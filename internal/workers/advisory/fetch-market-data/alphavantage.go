// internal/workers/advisory/fetch-market-data/alphavantage.go
package fetchmarketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "advisory-workers/internal/common/errors"
	apphttp "advisory-workers/internal/common/http"
	"advisory-workers/internal/models"
)

const (
	bullishThreshold = 0.15
	bearishThreshold = -0.15
	sentimentSample  = 5
)

// Provider is a market data source. Both calls make a single attempt.
type Provider interface {
	Quote(ctx context.Context, symbol string) (*models.MarketQuote, error)
	Sentiment(ctx context.Context) (models.MarketSentiment, error)
}

// AlphaVantage reads quotes, fundamentals and news sentiment from the Alpha
// Vantage query API.
type AlphaVantage struct {
	http         *apphttp.Client
	baseURL      string
	apiKey       string
	fundamentals bool
}

func NewAlphaVantage(client *apphttp.Client, baseURL, apiKey string, fundamentals bool) *AlphaVantage {
	return &AlphaVantage{
		http:         client,
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		fundamentals: fundamentals,
	}
}

// Quote returns NOT_FOUND for unknown symbols and MARKET_DATA_UNAVAILABLE for
// transport errors and throttling notices.
func (a *AlphaVantage) Quote(ctx context.Context, symbol string) (*models.MarketQuote, error) {
	var payload struct {
		GlobalQuote map[string]string `json:"Global Quote"`
	}
	raw, err := a.query(ctx, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.NewMarketDataUnavailableError(fmt.Errorf("decode quote: %w", err))
	}
	if len(payload.GlobalQuote) == 0 {
		return nil, apperrors.NewNotFoundError("quote", symbol)
	}

	q := payload.GlobalQuote
	price, err := strconv.ParseFloat(q["05. price"], 64)
	if err != nil {
		return nil, apperrors.NewMarketDataUnavailableError(fmt.Errorf("quote %s: bad price %q", symbol, q["05. price"]))
	}
	change, _ := strconv.ParseFloat(strings.TrimSuffix(q["10. change percent"], "%"), 64)

	asOf := time.Now().UTC()
	if day, err := time.Parse("2006-01-02", q["07. latest trading day"]); err == nil {
		asOf = day
	}

	quote := &models.MarketQuote{
		Symbol:        symbol,
		Price:         price,
		ChangePercent: change,
		AsOf:          asOf,
	}
	if a.fundamentals {
		a.addOverview(ctx, quote)
	}
	return quote, nil
}

// addOverview fills the optional fundamentals; a failure leaves them empty.
func (a *AlphaVantage) addOverview(ctx context.Context, quote *models.MarketQuote) {
	raw, err := a.query(ctx, url.Values{"function": {"OVERVIEW"}, "symbol": {quote.Symbol}})
	if err != nil {
		return
	}
	var o struct {
		Name    string `json:"Name"`
		Sector  string `json:"Sector"`
		PERatio string `json:"PERatio"`
	}
	if json.Unmarshal(raw, &o) != nil {
		return
	}
	quote.Name = o.Name
	quote.Sector = o.Sector
	if pe, err := strconv.ParseFloat(o.PERatio, 64); err == nil {
		quote.PERatio = &pe
	}
}

// Sentiment averages the overall score of recent financial-market news.
// An empty feed is NEUTRAL.
func (a *AlphaVantage) Sentiment(ctx context.Context) (models.MarketSentiment, error) {
	raw, err := a.query(ctx, url.Values{
		"function": {"NEWS_SENTIMENT"},
		"topics":   {"financial_markets"},
		"limit":    {"10"},
	})
	if err != nil {
		return models.SentimentNeutral, err
	}

	var payload struct {
		Feed []struct {
			Score float64 `json:"overall_sentiment_score"`
		} `json:"feed"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.SentimentNeutral, apperrors.NewMarketDataUnavailableError(fmt.Errorf("decode news: %w", err))
	}

	scores := make([]float64, 0, sentimentSample)
	for i, item := range payload.Feed {
		if i == sentimentSample {
			break
		}
		if item.Score != 0 {
			scores = append(scores, item.Score)
		}
	}
	return ClassifySentiment(scores), nil
}

// ClassifySentiment maps the mean score onto BULLISH, BEARISH or NEUTRAL.
func ClassifySentiment(scores []float64) models.MarketSentiment {
	if len(scores) == 0 {
		return models.SentimentNeutral
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))
	switch {
	case avg > bullishThreshold:
		return models.SentimentBullish
	case avg < bearishThreshold:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

func (a *AlphaVantage) query(ctx context.Context, params url.Values) (json.RawMessage, error) {
	params.Set("apikey", a.apiKey)

	var raw json.RawMessage
	if err := a.http.GetJSON(ctx, a.baseURL+"/query?"+params.Encode(), &raw); err != nil {
		return nil, apperrors.NewMarketDataUnavailableError(err)
	}

	var notice struct {
		Note        string `json:"Note"`
		Information string `json:"Information"`
		Error       string `json:"Error Message"`
	}
	_ = json.Unmarshal(raw, &notice)
	switch {
	case notice.Error != "":
		return nil, apperrors.NewNotFoundError(params.Get("function"), params.Get("symbol"))
	case notice.Note != "" || notice.Information != "":
		return nil, apperrors.NewMarketDataUnavailableError(fmt.Errorf("alpha vantage: %s%s", notice.Note, notice.Information))
	}
	return raw, nil
}
