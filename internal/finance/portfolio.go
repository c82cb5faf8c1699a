package finance

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/models"
)

var hundred = decimal.NewFromInt(100)

type HoldingPnL struct {
	Symbol      string           `json:"symbol"`
	AssetType   models.AssetType `json:"assetType"`
	Invested    float64          `json:"invested"`
	Current     float64          `json:"current"`
	GainLoss    float64          `json:"gainLoss"`
	GainLossPct float64          `json:"gainLossPct"`
}

type AllocationSlice struct {
	AssetType models.AssetType `json:"assetType"`
	Value     float64          `json:"value"`
	Pct       float64          `json:"pct"`
}

type PortfolioSummary struct {
	Holdings      []HoldingPnL      `json:"holdings"`
	TotalInvested float64           `json:"totalInvested"`
	TotalCurrent  float64           `json:"totalCurrent"`
	TotalGainLoss float64           `json:"totalGainLoss"`
	TotalGainPct  float64           `json:"totalGainPct"`
	Allocation    []AllocationSlice `json:"allocation"`
}

// ValidateHolding rejects records that would make P&L undefined. Callers run it
// where a holding enters the system (store reads, job input); aggregation
// assumes it has passed.
func ValidateHolding(h models.Holding) error {
	switch {
	case h.Symbol == "":
		return apperrors.NewInvalidInputError("symbol", "symbol is required")
	case !(h.Quantity > 0) || math.IsInf(h.Quantity, 0):
		return apperrors.NewInvalidInputError("quantity", fmt.Sprintf("%s: quantity must be positive", h.Symbol))
	case !(h.PurchasePrice > 0) || math.IsInf(h.PurchasePrice, 0):
		return apperrors.NewInvalidInputError("purchasePrice", fmt.Sprintf("%s: purchase price must be positive", h.Symbol))
	case h.CurrentPrice < 0 || math.IsNaN(h.CurrentPrice):
		return apperrors.NewInvalidInputError("currentPrice", fmt.Sprintf("%s: current price must not be negative", h.Symbol))
	case !h.AssetType.Valid():
		return apperrors.NewInvalidInputError("assetType", fmt.Sprintf("%s: unknown asset type %q", h.Symbol, h.AssetType))
	}
	return nil
}

// ValidateHoldings checks every holding and returns the first failure.
func ValidateHoldings(holdings []models.Holding) error {
	for _, h := range holdings {
		if err := ValidateHolding(h); err != nil {
			return err
		}
	}
	return nil
}

type holdingValues struct {
	invested, current, gain decimal.Decimal
}

func valuesOf(h models.Holding) holdingValues {
	qty := decimal.NewFromFloat(h.Quantity)
	invested := qty.Mul(decimal.NewFromFloat(h.PurchasePrice))
	current := qty.Mul(decimal.NewFromFloat(h.CurrentPrice))
	return holdingValues{invested: invested, current: current, gain: current.Sub(invested)}
}

func pct(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}

// SummarizePortfolio totals per-holding values of validated holdings. Totals
// are sums of the parts, never recomputed from aggregate prices.
func SummarizePortfolio(holdings []models.Holding) *PortfolioSummary {
	summary := &PortfolioSummary{Holdings: make([]HoldingPnL, 0, len(holdings))}

	totalInvested, totalCurrent := decimal.Zero, decimal.Zero
	byType := map[models.AssetType]decimal.Decimal{}

	for _, h := range holdings {
		v := valuesOf(h)
		summary.Holdings = append(summary.Holdings, HoldingPnL{
			Symbol:      h.Symbol,
			AssetType:   h.AssetType,
			Invested:    v.invested.InexactFloat64(),
			Current:     v.current.InexactFloat64(),
			GainLoss:    v.gain.InexactFloat64(),
			GainLossPct: pct(v.gain, v.invested),
		})
		totalInvested = totalInvested.Add(v.invested)
		totalCurrent = totalCurrent.Add(v.current)
		byType[h.AssetType] = byType[h.AssetType].Add(v.current)
	}

	totalGain := totalCurrent.Sub(totalInvested)
	summary.TotalInvested = totalInvested.InexactFloat64()
	summary.TotalCurrent = totalCurrent.InexactFloat64()
	summary.TotalGainLoss = totalGain.InexactFloat64()
	summary.TotalGainPct = pct(totalGain, totalInvested)

	for assetType, value := range byType {
		summary.Allocation = append(summary.Allocation, AllocationSlice{
			AssetType: assetType,
			Value:     value.InexactFloat64(),
			Pct:       pct(value, totalCurrent),
		})
	}
	sort.Slice(summary.Allocation, func(i, j int) bool {
		return summary.Allocation[i].AssetType < summary.Allocation[j].AssetType
	})
	return summary
}
