// internal/models/profile.go
package models

import "strings"

type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// ParseRiskTolerance maps free-form input onto a tier. Unknown or empty values
// fall back to moderate, which is the default tier for incomplete profiles.
func ParseRiskTolerance(s string) RiskTolerance {
	switch RiskTolerance(strings.ToLower(strings.TrimSpace(s))) {
	case RiskConservative:
		return RiskConservative
	case RiskAggressive:
		return RiskAggressive
	default:
		return RiskModerate
	}
}

func (r RiskTolerance) Valid() bool {
	return r == RiskConservative || r == RiskModerate || r == RiskAggressive
}

func (r RiskTolerance) Title() string {
	s := string(r)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// UserProfile is read-only for the duration of a pipeline invocation.
type UserProfile struct {
	UserID               string        `json:"userId"`
	Age                  int           `json:"age"`
	AnnualIncome         float64       `json:"annualIncome"`
	Savings              float64       `json:"savings"`
	Debt                 float64       `json:"debt"`
	MonthlyInvestment    float64       `json:"monthlyInvestment"`
	RiskTolerance        RiskTolerance `json:"riskTolerance"`
	InvestmentHorizon    int           `json:"investmentHorizon"`
	Goals                []string      `json:"goals,omitempty"`
	HasEmergencyFund     bool          `json:"hasEmergencyFund"`
	HasRetirementAccount bool          `json:"hasRetirementAccount"`
}

// Tier returns the profile's risk tier, defaulting to moderate.
func (p *UserProfile) Tier() RiskTolerance {
	if p == nil {
		return RiskModerate
	}
	return ParseRiskTolerance(string(p.RiskTolerance))
}

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}
