// internal/workers/advisory/fetch-market-data/fetcher.go
package fetchmarketdata

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/common/metrics"
	"advisory-workers/internal/models"
)

// Snapshot is the market data gathered for one request.
type Snapshot struct {
	Quotes      []models.MarketQuote   `json:"quotes"`
	Sentiment   models.MarketSentiment `json:"sentiment"`
	NotFound    []string               `json:"notFound,omitempty"`
	Unavailable bool                   `json:"unavailable"`
}

// Fetcher fans out one quote lookup per symbol plus a sentiment lookup and
// waits for all of them. Failures never propagate: missing quotes are
// omitted and sentiment falls back to NEUTRAL.
type Fetcher struct {
	provider Provider
	logger   logger.Logger
}

func NewFetcher(provider Provider, log logger.Logger) *Fetcher {
	return &Fetcher{provider: provider, logger: log}
}

func (f *Fetcher) Fetch(ctx context.Context, symbols []string, withSentiment bool) Snapshot {
	quotes := make([]*models.MarketQuote, len(symbols))
	quoteErrs := make([]error, len(symbols))
	sentiment := models.SentimentNeutral
	var sentimentErr error

	// goroutines never return errors so one failure does not cancel the rest
	g, gctx := errgroup.WithContext(ctx)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			quotes[i], quoteErrs[i] = f.provider.Quote(gctx, sym)
			return nil
		})
	}
	if withSentiment {
		g.Go(func() error {
			sentiment, sentimentErr = f.provider.Sentiment(gctx)
			return nil
		})
	}
	_ = g.Wait()

	snap := Snapshot{Quotes: []models.MarketQuote{}, Sentiment: models.ParseSentiment(string(sentiment))}
	for i, q := range quotes {
		err := quoteErrs[i]
		switch {
		case err == nil && q != nil:
			snap.Quotes = append(snap.Quotes, *q)
		case errors.Is(err, apperrors.ErrNotFound):
			snap.NotFound = append(snap.NotFound, symbols[i])
		default:
			snap.Unavailable = true
			metrics.ProviderFailures.WithLabelValues("alphavantage").Inc()
			f.logger.Warn("quote unavailable", map[string]interface{}{"symbol": symbols[i], "error": err})
		}
	}
	if sentimentErr != nil {
		snap.Sentiment = models.SentimentNeutral
		snap.Unavailable = true
		metrics.ProviderFailures.WithLabelValues("alphavantage").Inc()
		f.logger.Warn("sentiment unavailable", map[string]interface{}{"error": sentimentErr})
	}
	return snap
}
