// Package finance holds the projection math shared by the goal and portfolio
// read paths: SIP future value, goal progress and status, portfolio P&L.
package finance

import (
	"fmt"
	"math"

	apperrors "advisory-workers/internal/common/errors"
)

const (
	// AnnualReturnRate is the fixed return assumption behind every projection.
	AnnualReturnRate = 0.12
	MonthlyRate      = AnnualReturnRate / 12
)

// annuityFactor is ((1+r)^n - 1) / r, the future value of 1 paid monthly for n months.
func annuityFactor(r float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if r == 0 {
		return float64(n)
	}
	return (math.Pow(1+r, float64(n)) - 1) / r
}

// RequiredMonthlySIP returns the monthly contribution that grows to target over
// months at MonthlyRate.
func RequiredMonthlySIP(target float64, months int) (float64, error) {
	if months <= 0 {
		return 0, apperrors.NewInvalidInputError("months", fmt.Sprintf("target date must be in the future, got %d months", months))
	}
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return 0, apperrors.NewInvalidInputError("targetAmount", "target amount must be positive")
	}
	return target / annuityFactor(MonthlyRate, months), nil
}

// SIPFutureValue is the value after months of a fixed monthly contribution.
func SIPFutureValue(monthly float64, months int) float64 {
	return monthly * annuityFactor(MonthlyRate, months)
}

// ProjectedAmount compounds current and adds the contribution stream over months.
// Negative month counts are treated as zero.
func ProjectedAmount(current, monthly float64, months int) float64 {
	if months < 0 {
		months = 0
	}
	return current*math.Pow(1+MonthlyRate, float64(months)) + SIPFutureValue(monthly, months)
}
