package fetchmarketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "advisory-workers/internal/common/errors"
	apphttp "advisory-workers/internal/common/http"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/models"
)

type avServer struct {
	*httptest.Server
	calls atomic.Int32
	news  string
}

func newAVServer(t *testing.T) *avServer {
	s := &avServer{news: `{"feed":[{"overall_sentiment_score":0.3},{"overall_sentiment_score":0.2},{"overall_sentiment_score":0}]}`}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		switch q.Get("function") + ":" + q.Get("symbol") {
		case "GLOBAL_QUOTE:TCS":
			_, _ = w.Write([]byte(`{"Global Quote":{"01. symbol":"TCS","05. price":"3550.2500","10. change percent":"-1.2500%","07. latest trading day":"2025-01-14"}}`))
		case "GLOBAL_QUOTE:INFY":
			_, _ = w.Write([]byte(`{"Global Quote":{}}`))
		case "GLOBAL_QUOTE:LIMIT":
			_, _ = w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
		case "GLOBAL_QUOTE:DOWN":
			w.WriteHeader(http.StatusBadGateway)
		case "OVERVIEW:TCS":
			_, _ = w.Write([]byte(`{"Symbol":"TCS","Name":"Tata Consultancy Services","Sector":"TECHNOLOGY","PERatio":"29.4"}`))
		case "NEWS_SENTIMENT:":
			_, _ = w.Write([]byte(s.news))
		default:
			_, _ = w.Write([]byte(`{"Error Message":"Invalid API call."}`))
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestAV(s *avServer, fundamentals bool) *AlphaVantage {
	return NewAlphaVantage(apphttp.NewClient(5*time.Second), s.URL, "demo", fundamentals)
}

func TestAlphaVantage_Quote(t *testing.T) {
	s := newAVServer(t)
	av := newTestAV(s, true)

	q, err := av.Quote(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, 3550.25, q.Price)
	assert.Equal(t, -1.25, q.ChangePercent)
	assert.Equal(t, "Tata Consultancy Services", q.Name)
	require.NotNil(t, q.PERatio)
	assert.Equal(t, 29.4, *q.PERatio)
	assert.Equal(t, time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), q.AsOf)
}

func TestAlphaVantage_QuoteErrors(t *testing.T) {
	s := newAVServer(t)
	av := newTestAV(s, false)

	tests := []struct {
		symbol string
		want   error
	}{
		{"INFY", apperrors.ErrNotFound},
		{"NOPE", apperrors.ErrNotFound},
		{"LIMIT", apperrors.ErrMarketDataUnavailable},
		{"DOWN", apperrors.ErrMarketDataUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			before := s.calls.Load()
			_, err := av.Quote(context.Background(), tt.symbol)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, before+1, s.calls.Load(), "exactly one attempt")
		})
	}
}

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   models.MarketSentiment
	}{
		{"empty", nil, models.SentimentNeutral},
		{"bullish", []float64{0.3, 0.2}, models.SentimentBullish},
		{"bearish", []float64{-0.4, -0.1}, models.SentimentBearish},
		{"boundary stays neutral", []float64{0.15}, models.SentimentNeutral},
		{"mixed", []float64{0.5, -0.5}, models.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySentiment(tt.scores))
		})
	}
}

func TestAlphaVantage_Sentiment(t *testing.T) {
	s := newAVServer(t)
	got, err := newTestAV(s, false).Sentiment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SentimentBullish, got)

	s.news = `{"Information":"rate limited"}`
	got, err = newTestAV(s, false).Sentiment(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrMarketDataUnavailable))
	assert.Equal(t, models.SentimentNeutral, got)
}

func TestHandler_ExecuteDegradesPerSymbol(t *testing.T) {
	s := newAVServer(t)
	h := NewHandler(LoadConfig(), newTestAV(s, false), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Symbols: []string{"TCS", "INFY", "DOWN", "EXTRA"}})
	require.NoError(t, err)
	require.Len(t, out.Quotes, 1)
	assert.Equal(t, "TCS", out.Quotes[0].Symbol)
	assert.Equal(t, []string{"INFY"}, out.NotFound)
	assert.True(t, out.Unavailable)
	assert.Equal(t, models.SentimentBullish, out.Sentiment)
}

func TestHandler_ExecuteWithoutSentiment(t *testing.T) {
	s := newAVServer(t)
	h := NewHandler(LoadConfig(), newTestAV(s, false), logger.NewTestLogger(t))
	off := false

	out, err := h.Execute(context.Background(), &Input{Symbols: []string{}, IncludeSentiment: &off})
	require.NoError(t, err)
	assert.Empty(t, out.Quotes)
	assert.Equal(t, models.SentimentNeutral, out.Sentiment)
	assert.Equal(t, int32(0), s.calls.Load())
}
