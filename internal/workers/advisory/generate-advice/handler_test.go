package generateadvice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/models"
)

func TestHandler_Execute(t *testing.T) {
	gen := &fakeGenerator{reply: "Start a SIP in an index fund."}
	log := logger.NewTestLogger(t)
	o := NewOrchestrator(gen, testConfig(), log)
	h := NewHandler(testConfig(), o, log)

	out, err := h.Execute(context.Background(), &Input{Message: "How do I start?", RiskTolerance: models.RiskModerate})
	require.NoError(t, err)
	assert.Equal(t, models.SourceGenerated, out.Source)
	assert.Empty(t, out.FallbackRoute)

	_, err = h.Execute(context.Background(), &Input{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
