package summarizeportfolio

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

type stubHoldings struct {
	holdings []models.Holding
	err      error
	userID   string
}

func (s *stubHoldings) ListHoldings(_ context.Context, userID string) ([]models.Holding, error) {
	s.userID = userID
	return s.holdings, s.err
}

type stubProfiles struct {
	profile *models.UserProfile
	err     error
}

func (s *stubProfiles) GetProfile(_ context.Context, _ string) (*models.UserProfile, error) {
	return s.profile, s.err
}

func TestHandler_ExecuteWithInlineHoldings(t *testing.T) {
	h := NewHandler(LoadConfig(), nil, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Holdings: []models.Holding{
		{Symbol: "RELIANCE", Quantity: 50, PurchasePrice: 2400, CurrentPrice: 2650, AssetType: models.AssetStock},
	}})
	require.NoError(t, err)
	s := out.Summary
	assert.Equal(t, 120000.0, s.TotalInvested)
	assert.Equal(t, 132500.0, s.TotalCurrent)
	assert.Equal(t, 12500.0, s.TotalGainLoss)
	assert.InDelta(t, 10.4167, s.Holdings[0].GainLossPct, 1e-3)
}

func TestHandler_ExecuteLoadsFromStore(t *testing.T) {
	src := &stubHoldings{holdings: []models.Holding{
		{Symbol: "NIFTYBEES", Quantity: 10, PurchasePrice: 200, CurrentPrice: 210, AssetType: models.AssetFund},
	}}
	h := NewHandler(LoadConfig(), src, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{UserID: "42"})
	require.NoError(t, err)
	assert.Equal(t, "42", src.userID)
	assert.Equal(t, 2100.0, out.Summary.TotalCurrent)
}

func TestHandler_ExecuteEmptyPortfolio(t *testing.T) {
	h := NewHandler(LoadConfig(), nil, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Holdings: []models.Holding{}})
	require.NoError(t, err)
	assert.Zero(t, out.Summary.TotalInvested)
	assert.Zero(t, out.Summary.TotalCurrent)
}

func TestHandler_ExecuteRejects(t *testing.T) {
	h := NewHandler(LoadConfig(), &stubHoldings{err: apperrors.NewNotFoundError("user", "9")}, nil, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = h.Execute(context.Background(), &Input{Holdings: []models.Holding{{Symbol: "X", Quantity: 1, PurchasePrice: 0, AssetType: models.AssetStock}}})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = h.Execute(context.Background(), &Input{UserID: "9"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestHandler_ExecuteRecommendsRebalancing(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "RELIANCE", Quantity: 10, PurchasePrice: 5000, CurrentPrice: 6000, AssetType: models.AssetStock},
		{Symbol: "NIFTYBEES", Quantity: 100, PurchasePrice: 180, CurrentPrice: 200, AssetType: models.AssetFund},
		{Symbol: "GOLD", Quantity: 10, PurchasePrice: 1900, CurrentPrice: 2000, AssetType: models.AssetOther},
	}
	profile := &models.UserProfile{Age: 35, RiskTolerance: models.RiskModerate, InvestmentHorizon: 10,
		HasEmergencyFund: true, AnnualIncome: 1_000_000}

	tests := []struct {
		name     string
		input    *Input
		profiles ProfileSource
		want     bool
	}{
		{name: "inline profile", input: &Input{Holdings: holdings, Profile: profile}, want: true},
		{name: "stored profile", input: &Input{UserID: "42", Holdings: holdings}, profiles: &stubProfiles{profile: profile}, want: true},
		{name: "no profile", input: &Input{Holdings: holdings}, want: false},
		{
			name:     "profile lookup fails",
			input:    &Input{UserID: "42", Holdings: holdings},
			profiles: &stubProfiles{err: apperrors.NewNotFoundError("user", "42")},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(LoadConfig(), nil, tt.profiles, logger.NewTestLogger(t))

			out, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, 100000.0, out.Summary.TotalCurrent)
			if !tt.want {
				assert.Nil(t, out.Recommendation)
				return
			}
			require.NotNil(t, out.Recommendation)
			assert.Equal(t, "Moderate", out.Recommendation.RiskProfile)
			assert.True(t, out.Recommendation.RebalancingNeeded)
			assert.Len(t, out.Recommendation.Rebalancing, 3)
			assert.Equal(t, 60.0, out.Recommendation.DiversificationScore)
		})
	}
}
