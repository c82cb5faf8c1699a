package finance

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/models"
)

func TestSummarizePortfolio_SingleHolding(t *testing.T) {
	summary := SummarizePortfolio([]models.Holding{
		{Symbol: "RELIANCE", Quantity: 50, PurchasePrice: 2400, CurrentPrice: 2650, AssetType: models.AssetStock},
	})
	require.Len(t, summary.Holdings, 1)

	h := summary.Holdings[0]
	assert.Equal(t, 120_000.0, h.Invested)
	assert.Equal(t, 132_500.0, h.Current)
	assert.Equal(t, 12_500.0, h.GainLoss)
	assert.InDelta(t, 10.42, h.GainLossPct, 0.005)
}

func TestSummarizePortfolio_TotalsAreSumOfParts(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "RELIANCE", Quantity: 50, PurchasePrice: 2400, CurrentPrice: 2650, AssetType: models.AssetStock},
		{Symbol: "PPFAS", Quantity: 10, PurchasePrice: 100.5, CurrentPrice: 98.1, AssetType: models.AssetFund},
		{Symbol: "GOLDBEES", Quantity: 3, PurchasePrice: 33.33, CurrentPrice: 0, AssetType: models.AssetOther},
	}

	require.NoError(t, ValidateHoldings(holdings))
	summary := SummarizePortfolio(holdings)

	invested, current := decimal.Zero, decimal.Zero
	for _, h := range summary.Holdings {
		invested = invested.Add(decimal.NewFromFloat(h.Invested))
		current = current.Add(decimal.NewFromFloat(h.Current))
	}
	assert.True(t, invested.Equal(decimal.NewFromFloat(summary.TotalInvested)), "invested %s vs %v", invested, summary.TotalInvested)
	assert.True(t, current.Equal(decimal.NewFromFloat(summary.TotalCurrent)), "current %s vs %v", current, summary.TotalCurrent)

	require.Len(t, summary.Allocation, 3)
	assert.Equal(t, models.AssetFund, summary.Allocation[0].AssetType)
	assert.Equal(t, models.AssetOther, summary.Allocation[1].AssetType)
	assert.Equal(t, models.AssetStock, summary.Allocation[2].AssetType)
}

func TestSummarizePortfolio_Empty(t *testing.T) {
	summary := SummarizePortfolio(nil)
	assert.Empty(t, summary.Holdings)
	assert.Zero(t, summary.TotalInvested)
	assert.Zero(t, summary.TotalCurrent)
	assert.Zero(t, summary.TotalGainLoss)
	assert.Zero(t, summary.TotalGainPct)
}

func TestValidateHoldings_RejectsMalformedHolding(t *testing.T) {
	tests := []struct {
		name    string
		holding models.Holding
	}{
		{"zero quantity", models.Holding{Symbol: "TCS", Quantity: 0, PurchasePrice: 10, AssetType: models.AssetStock}},
		{"zero purchase price", models.Holding{Symbol: "TCS", Quantity: 1, PurchasePrice: 0, AssetType: models.AssetStock}},
		{"negative current price", models.Holding{Symbol: "TCS", Quantity: 1, PurchasePrice: 10, CurrentPrice: -1, AssetType: models.AssetStock}},
		{"unknown asset type", models.Holding{Symbol: "TCS", Quantity: 1, PurchasePrice: 10, AssetType: "crypto"}},
		{"missing symbol", models.Holding{Quantity: 1, PurchasePrice: 10, AssetType: models.AssetStock}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid := models.Holding{Symbol: "INFY", Quantity: 2, PurchasePrice: 1500, CurrentPrice: 1600, AssetType: models.AssetStock}
			err := ValidateHoldings([]models.Holding{valid, tt.holding})
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}
