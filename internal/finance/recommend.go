package finance

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"advisory-workers/internal/models"
)

// AssetClass is one bucket of a recommended allocation.
type AssetClass string

const (
	ClassStocks       AssetClass = "Stocks"
	ClassBonds        AssetClass = "Bonds"
	ClassCash         AssetClass = "Cash"
	ClassAlternatives AssetClass = "Alternatives"
)

var assetClasses = []AssetClass{ClassStocks, ClassBonds, ClassCash, ClassAlternatives}

const (
	// RebalanceThresholdPct is the drift from target that earns a suggestion.
	RebalanceThresholdPct = 5.0
	// RebalanceAlertPct is the drift that marks the whole portfolio for rebalancing.
	RebalanceAlertPct = 10.0
)

// ClassOf maps a holding's asset type onto an allocation class. Funds count as
// equity exposure.
func ClassOf(t models.AssetType) AssetClass {
	switch t {
	case models.AssetStock, models.AssetFund:
		return ClassStocks
	default:
		return ClassAlternatives
	}
}

// Target returns the allocation's percentage for class.
func (a Allocation) Target(class AssetClass) int {
	switch class {
	case ClassStocks:
		return a.Stocks
	case ClassBonds:
		return a.Bonds
	case ClassCash:
		return a.Cash
	default:
		return a.Alternatives
	}
}

type ClassWeight struct {
	Class AssetClass `json:"assetClass"`
	Pct   float64    `json:"pct"`
}

type RebalanceAction string

const (
	ActionIncrease RebalanceAction = "increase"
	ActionDecrease RebalanceAction = "decrease"
)

type RebalancingSuggestion struct {
	Class         AssetClass      `json:"assetClass"`
	CurrentPct    float64         `json:"currentPct"`
	TargetPct     float64         `json:"targetPct"`
	Action        RebalanceAction `json:"action"`
	AdjustmentPct float64         `json:"adjustmentPct"`
}

type PortfolioRecommendation struct {
	RiskProfile           string                  `json:"riskProfile"`
	RiskScore             int                     `json:"riskScore"`
	CurrentAllocation     []ClassWeight           `json:"currentAllocation"`
	RecommendedAllocation Allocation              `json:"recommendedAllocation"`
	Rebalancing           []RebalancingSuggestion `json:"rebalancing"`
	RebalancingNeeded     bool                    `json:"rebalancingNeeded"`
	DiversificationScore  float64                 `json:"diversificationScore"`
}

// CurrentAllocation weighs validated holdings by current value per asset
// class, in class order, rounded to one decimal. Classes with no holdings are
// omitted.
func CurrentAllocation(holdings []models.Holding) []ClassWeight {
	total := decimal.Zero
	byClass := map[AssetClass]decimal.Decimal{}
	for _, h := range holdings {
		v := valuesOf(h).current
		total = total.Add(v)
		class := ClassOf(h.AssetType)
		byClass[class] = byClass[class].Add(v)
	}

	weights := []ClassWeight{}
	for _, class := range assetClasses {
		value, ok := byClass[class]
		if !ok {
			continue
		}
		w := ClassWeight{Class: class}
		if !total.IsZero() {
			w.Pct = value.Div(total).Mul(hundred).Round(1).InexactFloat64()
		}
		weights = append(weights, w)
	}
	return weights
}

// DiversificationScore rewards spread across asset types and symbols, capped at 100.
func DiversificationScore(holdings []models.Holding) float64 {
	types := map[models.AssetType]struct{}{}
	symbols := map[string]struct{}{}
	for _, h := range holdings {
		types[h.AssetType] = struct{}{}
		symbols[h.Symbol] = struct{}{}
	}
	return math.Min(100, float64(len(types)*15+len(symbols)*5))
}

// RecommendPortfolio compares validated holdings with the allocation the
// profile's risk score calls for. An empty portfolio gets the target
// allocation and nothing else.
func RecommendPortfolio(p models.UserProfile, holdings []models.Holding) *PortfolioRecommendation {
	target := RecommendedAllocation(p)
	rec := &PortfolioRecommendation{
		RiskProfile:           target.Profile,
		RiskScore:             RiskScore(p),
		CurrentAllocation:     []ClassWeight{},
		RecommendedAllocation: target,
		Rebalancing:           []RebalancingSuggestion{},
	}
	if len(holdings) == 0 {
		return rec
	}

	rec.CurrentAllocation = CurrentAllocation(holdings)
	rec.DiversificationScore = DiversificationScore(holdings)

	current := map[AssetClass]float64{}
	for _, w := range rec.CurrentAllocation {
		current[w.Class] = w.Pct
	}
	for _, class := range assetClasses {
		want := float64(target.Target(class))
		diff := want - current[class]
		drift := math.Round(math.Abs(diff)*10) / 10
		if drift > RebalanceAlertPct {
			rec.RebalancingNeeded = true
		}
		if drift <= RebalanceThresholdPct {
			continue
		}
		action := ActionIncrease
		if diff < 0 {
			action = ActionDecrease
		}
		rec.Rebalancing = append(rec.Rebalancing, RebalancingSuggestion{
			Class:         class,
			CurrentPct:    current[class],
			TargetPct:     want,
			Action:        action,
			AdjustmentPct: drift,
		})
	}
	return rec
}

// GoalRecommendation picks an investment vehicle by time to target and the
// SIP needed at that vehicle's expected return.
type GoalRecommendation struct {
	GoalID                string   `json:"goalId"`
	GoalName              string   `json:"goalName,omitempty"`
	InvestmentType        string   `json:"investmentType"`
	ExpectedReturnPct     float64  `json:"expectedReturnPct"`
	RiskLevel             string   `json:"riskLevel"`
	RecommendedMonthlySIP float64  `json:"recommendedMonthlySip"`
	Instruments           []string `json:"instruments"`
}

type horizonBand struct {
	maxYears       float64
	investmentType string
	returnPct      float64
	riskLevel      string
	instruments    []string
}

var horizonBands = []horizonBand{
	{2, "Debt Funds / FDs", 6, "Low", []string{
		"Short Duration Debt Funds",
		"Bank Fixed Deposits",
		"Liquid Funds for emergency accessibility",
	}},
	{5, "Balanced / Hybrid Funds", 9, "Moderate", []string{
		"Balanced Advantage Funds",
		"Conservative Hybrid Funds",
		"Large Cap Equity Funds (partial allocation)",
	}},
	{math.Inf(1), "Equity Funds", 12, "Moderate to High", []string{
		"Flexi Cap Equity Funds",
		"Large & Mid Cap Funds",
		"Index Funds for long-term wealth creation",
	}},
}

// RecommendForGoal sizes a SIP for the amount still missing at the rate of
// the vehicle suited to the time left. Time is counted in whole days (at
// least one), months as days/30. A funded goal needs no SIP.
func RecommendForGoal(g models.Goal, now time.Time) *GoalRecommendation {
	days := math.Max(1, math.Floor(g.TargetDate.Sub(now).Hours()/24))
	years := days / 365

	band := horizonBands[len(horizonBands)-1]
	for _, b := range horizonBands {
		if years < b.maxYears {
			band = b
			break
		}
	}

	rec := &GoalRecommendation{
		GoalID:            g.ID,
		GoalName:          g.Name,
		InvestmentType:    band.investmentType,
		ExpectedReturnPct: band.returnPct,
		RiskLevel:         band.riskLevel,
		Instruments:       append([]string(nil), band.instruments...),
	}

	remaining := g.TargetAmount - g.CurrentAmount
	if remaining <= 0 {
		return rec
	}
	months := math.Max(1, days/30)
	r := band.returnPct / 100 / 12
	sip := remaining * r / (math.Pow(1+r, months) - 1)
	rec.RecommendedMonthlySIP = math.Round(sip*100) / 100
	return rec
}
