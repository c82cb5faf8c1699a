package extractsymbols

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisory-workers/internal/common/logger"
)

func TestExtractor_Extract(t *testing.T) {
	e := NewExtractor(nil, 0)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain tickers", "Should I buy TCS or INFY?", []string{"TCS", "INFY"}},
		{"order and dedupe", "INFY vs TCS, then INFY again", []string{"INFY", "TCS"}},
		{"ampersand ticker", "thoughts on M&M?", []string{"M&M"}},
		{"ordinary capitals dropped", "I WANT THE BEST SIP", []string{}},
		{"lowercase ignored", "is tcs good", []string{}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text))
		})
	}
}

func TestExtractor_CapAndCustomAllowlist(t *testing.T) {
	e := NewExtractor([]string{"aapl", "msft", "nvda", "tsla"}, 3)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, e.Extract("AAPL MSFT NVDA TSLA"))
}

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{Message: "Compare RELIANCE, TCS, INFY and ITC"})
	require.NoError(t, err)
	assert.Equal(t, []string{"RELIANCE", "TCS", "INFY"}, out.Symbols)
}
