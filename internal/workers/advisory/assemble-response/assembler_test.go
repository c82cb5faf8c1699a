package assembleresponse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/models"
	guardrailcheck "advisory-workers/internal/workers/advisory/guardrail-check"
)

func fixedAssembler() *Assembler {
	a := NewAssembler()
	a.newID = func() string { return "resp-1" }
	a.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return a
}

func TestAssemble_DisclaimerExactlyOnceAndLast(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"generated", "Consider a diversified index fund."},
		{"fallback already carrying disclaimer", "Here are some options." + models.Disclaimer},
		{"trailing newlines", "Plain advice.\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := fixedAssembler().Assemble(Request{Text: tt.text, Source: models.SourceGenerated})
			assert.True(t, strings.HasSuffix(res.Response.Text, models.Disclaimer))
			assert.Equal(t, 1, strings.Count(res.Response.Text, "**Disclaimer**"))
			assert.True(t, res.Response.DisclaimerAppended)
		})
	}
}

func TestAssemble_RiskWarningBeforeDisclaimer(t *testing.T) {
	res := fixedAssembler().Assemble(Request{Text: "This fund has guaranteed high returns."})
	text := res.Response.Text

	require.True(t, res.Screening.RiskWarning)
	warn := strings.Index(text, "**Important Risk Warning**")
	disc := strings.Index(text, "**Disclaimer**")
	assert.Greater(t, warn, 0)
	assert.Greater(t, disc, warn)
}

func TestAssemble_ReplacesPromotion(t *testing.T) {
	res := fixedAssembler().Assemble(Request{Text: "You should join a ponzi scheme for quick gains."})
	assert.True(t, res.Screening.Replaced)
	assert.True(t, strings.HasPrefix(res.Response.Text, guardrailcheck.OutputSafeText))
}

func TestAssemble_ResponseAndEvent(t *testing.T) {
	res := fixedAssembler().Assemble(Request{
		UserID:  "u1",
		Message: "what is a SIP?",
		Text:    "A SIP is a recurring investment.",
		Source:  models.SourceGenerated,
		Documents: []models.RetrievedDocument{
			{ID: "d1", Score: 0.9, Metadata: map[string]string{"title": "SIP basics"}},
		},
		MarketDataUsed: true,
		Sentiment:      "bogus",
	})

	r := res.Response
	assert.Equal(t, "resp-1", r.ResponseID)
	assert.Equal(t, models.SourceGenerated, r.Source)
	assert.Equal(t, []models.DocumentRef{{ID: "d1", Title: "SIP basics", Score: 0.9}}, r.Documents)
	assert.Equal(t, models.SentimentNeutral, r.Sentiment)
	assert.True(t, r.MarketDataUsed)
	assert.Equal(t, "u1", res.Event.UserID)
	assert.Equal(t, "what is a SIP?", res.Event.Message)
	assert.Equal(t, r, res.Event.Response)
}

func TestAssemble_EmptyDocumentsIsNonNil(t *testing.T) {
	res := fixedAssembler().Assemble(Request{Text: "x"})
	assert.NotNil(t, res.Response.Documents)
	assert.Empty(t, res.Response.Documents)
	assert.Equal(t, models.SourceFallback, res.Response.Source)
}

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{UserID: "u1", Message: "hi", ResponseText: "Hello.", Source: models.SourceGenerated})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Response.ResponseID)
	assert.Equal(t, out.Response, out.PersistenceEvent.Response)

	_, err = h.Execute(context.Background(), &Input{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
