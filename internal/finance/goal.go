package finance

import (
	"math"
	"time"

	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/models"
)

type GoalStatus string

const (
	StatusAchieved GoalStatus = "ACHIEVED"
	StatusOnTrack  GoalStatus = "ON_TRACK"
	StatusBehind   GoalStatus = "BEHIND"
)

// TimeProgressState distinguishes a goal whose whole window is under a month,
// where time progress has no meaningful ratio.
type TimeProgressState string

const (
	TimeProgressMeasured  TimeProgressState = "measured"
	TimeProgressImmediate TimeProgressState = "immediate"
)

type TimelinePoint struct {
	Month           int     `json:"month"`
	ProjectedAmount float64 `json:"projectedAmount"`
}

type GoalProjection struct {
	GoalID                string            `json:"goalId"`
	Status                GoalStatus        `json:"status"`
	ProgressPct           float64           `json:"progressPct"`
	DisplayProgressPct    float64           `json:"displayProgressPct"`
	TimeProgressState     TimeProgressState `json:"timeProgressState"`
	TimeProgressPct       *float64          `json:"timeProgressPct,omitempty"`
	TotalMonths           int               `json:"totalMonths"`
	ElapsedMonths         int               `json:"elapsedMonths"`
	MonthsRemaining       int               `json:"monthsRemaining"`
	ProjectedAmount       float64           `json:"projectedAmount"`
	RequiredMonthly       *float64          `json:"requiredMonthly,omitempty"`
	MonthlyShortfall      float64           `json:"monthlyShortfall"`
	SuccessProbabilityPct float64           `json:"successProbabilityPct"`
	Timeline              []TimelinePoint   `json:"timeline,omitempty"`
}

// ValidateGoal enforces the record invariants at the boundary where a goal enters
// the system, so the projection math never sees a degenerate record.
func ValidateGoal(g models.Goal) error {
	switch {
	case !(g.TargetAmount > 0) || math.IsInf(g.TargetAmount, 0):
		return apperrors.NewInvalidInputError("targetAmount", "target amount must be positive")
	case g.CurrentAmount < 0 || math.IsNaN(g.CurrentAmount):
		return apperrors.NewInvalidInputError("currentAmount", "current amount must not be negative")
	case g.MonthlyContribution < 0 || math.IsNaN(g.MonthlyContribution):
		return apperrors.NewInvalidInputError("monthlyContribution", "monthly contribution must not be negative")
	case g.CreatedAt.IsZero() || g.TargetDate.IsZero():
		return apperrors.NewInvalidInputError("targetDate", "creation and target dates are required")
	case !g.TargetDate.After(g.CreatedAt):
		return apperrors.NewInvalidInputError("targetDate", "target date must be after creation date")
	}
	return nil
}

// ProjectGoal computes progress, projection and status for g as of now.
func ProjectGoal(g models.Goal, now time.Time) (*GoalProjection, error) {
	if err := ValidateGoal(g); err != nil {
		return nil, err
	}

	total := MonthsBetween(g.CreatedAt, g.TargetDate)
	elapsed := MonthsBetween(g.CreatedAt, now)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := total - elapsed
	if remaining < 0 {
		remaining = 0
	}

	progress := g.CurrentAmount / g.TargetAmount * 100
	p := &GoalProjection{
		GoalID:             g.ID,
		ProgressPct:        progress,
		DisplayProgressPct: math.Min(100, progress),
		TotalMonths:        total,
		ElapsedMonths:      elapsed,
		MonthsRemaining:    remaining,
		ProjectedAmount:    ProjectedAmount(g.CurrentAmount, g.MonthlyContribution, remaining),
	}

	if total == 0 {
		p.TimeProgressState = TimeProgressImmediate
	} else {
		tp := float64(elapsed) / float64(total) * 100
		p.TimeProgressState = TimeProgressMeasured
		p.TimeProgressPct = &tp
	}

	switch {
	case g.IsAchieved:
		p.Status = StatusAchieved
	case p.ProjectedAmount >= g.TargetAmount:
		p.Status = StatusOnTrack
	default:
		p.Status = StatusBehind
	}

	p.fillContributionPlan(g)
	p.Timeline = buildTimeline(g.CurrentAmount, g.MonthlyContribution, remaining)
	return p, nil
}

func (p *GoalProjection) fillContributionPlan(g models.Goal) {
	if p.Status == StatusAchieved {
		p.SuccessProbabilityPct = 100
		return
	}

	gap := g.TargetAmount - g.CurrentAmount*math.Pow(1+MonthlyRate, float64(p.MonthsRemaining))
	if gap <= 0 {
		zero := 0.0
		p.RequiredMonthly = &zero
		p.SuccessProbabilityPct = 100
		return
	}

	required, err := RequiredMonthlySIP(gap, p.MonthsRemaining)
	if err != nil {
		// Past the target date with money still missing.
		p.MonthlyShortfall = 0
		p.SuccessProbabilityPct = 0
		return
	}
	p.RequiredMonthly = &required
	p.MonthlyShortfall = math.Max(0, required-g.MonthlyContribution)
	if g.MonthlyContribution >= required {
		p.SuccessProbabilityPct = 100
	} else {
		p.SuccessProbabilityPct = math.Min(99, g.MonthlyContribution/required*100)
	}
}

// buildTimeline samples the projected balance at each year boundary and at the end.
func buildTimeline(current, monthly float64, months int) []TimelinePoint {
	if months <= 0 {
		return nil
	}
	var points []TimelinePoint
	for m := 12; m < months; m += 12 {
		points = append(points, TimelinePoint{Month: m, ProjectedAmount: ProjectedAmount(current, monthly, m)})
	}
	return append(points, TimelinePoint{Month: months, ProjectedAmount: ProjectedAmount(current, monthly, months)})
}
