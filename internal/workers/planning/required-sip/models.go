package requiredsip

type Input struct {
	TargetAmount float64 `json:"targetAmount"`
	Months       int     `json:"months"`
}

type Output struct {
	RequiredMonthly   float64 `json:"requiredMonthly"`
	Months            int     `json:"months"`
	TotalContribution float64 `json:"totalContribution"`
	ExpectedGains     float64 `json:"expectedGains"`
	AnnualReturnRate  float64 `json:"annualReturnRate"`
}
