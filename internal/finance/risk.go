package finance

import "advisory-workers/internal/models"

type Allocation struct {
	Profile      string `json:"profile"`
	Stocks       int    `json:"stocks"`
	Bonds        int    `json:"bonds"`
	Cash         int    `json:"cash"`
	Alternatives int    `json:"alternatives"`
}

// RiskScore rates a profile from 1 (most defensive) to 10. Unset age, horizon,
// income or debt (zero values) leave the score untouched by their rules.
func RiskScore(p models.UserProfile) int {
	score := 5

	switch {
	case p.Age <= 0:
	case p.Age < 30:
		score += 2
	case p.Age < 40:
		score++
	case p.Age > 55:
		score -= 2
	case p.Age > 45:
		score--
	}

	switch p.Tier() {
	case models.RiskConservative:
		score -= 2
	case models.RiskAggressive:
		score += 2
	}

	switch {
	case p.InvestmentHorizon <= 0:
	case p.InvestmentHorizon > 15:
		score++
	case p.InvestmentHorizon < 5:
		score -= 2
	}

	if !p.HasEmergencyFund {
		score--
	}

	if p.Debt > 0 && p.AnnualIncome > 0 {
		switch ratio := p.Debt / p.AnnualIncome; {
		case ratio > 0.5:
			score -= 2
		case ratio > 0.3:
			score--
		}
	}

	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

func RecommendedAllocation(p models.UserProfile) Allocation {
	switch score := RiskScore(p); {
	case score <= 3:
		return Allocation{Profile: "Conservative", Stocks: 30, Bonds: 50, Cash: 15, Alternatives: 5}
	case score <= 5:
		return Allocation{Profile: "Moderate-Conservative", Stocks: 50, Bonds: 35, Cash: 10, Alternatives: 5}
	case score <= 7:
		return Allocation{Profile: "Moderate", Stocks: 65, Bonds: 25, Cash: 5, Alternatives: 5}
	case score <= 8:
		return Allocation{Profile: "Moderate-Aggressive", Stocks: 75, Bonds: 15, Cash: 5, Alternatives: 5}
	default:
		return Allocation{Profile: "Aggressive", Stocks: 85, Bonds: 10, Cash: 0, Alternatives: 5}
	}
}
