package finance

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/models"
)

func scenarioGoal() models.Goal {
	return models.Goal{
		ID:                  "goal-c",
		TargetAmount:        1_000_000,
		CurrentAmount:       150_000,
		MonthlyContribution: 25_000,
		CreatedAt:           date(2020, 1, 15),
		TargetDate:          date(2035, 1, 15),
	}
}

func TestProjectGoal_FifteenYearGoalFiveYearsIn(t *testing.T) {
	now := date(2025, 1, 15)

	p, err := ProjectGoal(scenarioGoal(), now)
	require.NoError(t, err)

	assert.Equal(t, 180, p.TotalMonths)
	assert.Equal(t, 60, p.ElapsedMonths)
	assert.Equal(t, 120, p.MonthsRemaining)
	assert.InDelta(t, 15.0, p.ProgressPct, 1e-9)
	require.NotNil(t, p.TimeProgressPct)
	assert.InDelta(t, 100.0/3, *p.TimeProgressPct, 1e-9)

	growth := math.Pow(1.01, 120)
	expected := 150_000*growth + 25_000*(growth-1)/0.01
	assert.InDelta(t, expected, p.ProjectedAmount, 1e-6)
	assert.Equal(t, StatusOnTrack, p.Status)
	assert.Equal(t, 100.0, p.SuccessProbabilityPct)

	// identical inputs give identical projections
	again, err := ProjectGoal(scenarioGoal(), now)
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestProjectGoal_AchievedOverridesProjection(t *testing.T) {
	g := scenarioGoal()
	g.IsAchieved = true
	g.CurrentAmount = 0
	g.MonthlyContribution = 0

	p, err := ProjectGoal(g, date(2025, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, StatusAchieved, p.Status)
	assert.Less(t, p.ProjectedAmount, g.TargetAmount)
}

func TestProjectGoal_Behind(t *testing.T) {
	g := scenarioGoal()
	g.MonthlyContribution = 1_000

	p, err := ProjectGoal(g, date(2025, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, StatusBehind, p.Status)
	require.NotNil(t, p.RequiredMonthly)
	assert.Greater(t, p.MonthlyShortfall, 0.0)
	assert.Less(t, p.SuccessProbabilityPct, 99.01)
}

func TestProjectGoal_ImmediateWindow(t *testing.T) {
	g := models.Goal{
		TargetAmount: 50_000,
		CreatedAt:    date(2025, 3, 1),
		TargetDate:   date(2025, 3, 20),
	}

	p, err := ProjectGoal(g, date(2025, 3, 10))
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalMonths)
	assert.Equal(t, TimeProgressImmediate, p.TimeProgressState)
	assert.Nil(t, p.TimeProgressPct)
	assert.Equal(t, StatusBehind, p.Status)
}

func TestProjectGoal_OverFundedKeepsRawProgress(t *testing.T) {
	g := scenarioGoal()
	g.CurrentAmount = 1_500_000

	p, err := ProjectGoal(g, date(2025, 1, 15))
	require.NoError(t, err)
	assert.InDelta(t, 150.0, p.ProgressPct, 1e-9)
	assert.Equal(t, 100.0, p.DisplayProgressPct)
}

func TestValidateGoal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *models.Goal)
	}{
		{"zero target", func(g *models.Goal) { g.TargetAmount = 0 }},
		{"negative current", func(g *models.Goal) { g.CurrentAmount = -1 }},
		{"negative contribution", func(g *models.Goal) { g.MonthlyContribution = -10 }},
		{"target before creation", func(g *models.Goal) { g.TargetDate = g.CreatedAt.AddDate(0, -1, 0) }},
		{"target equals creation", func(g *models.Goal) { g.TargetDate = g.CreatedAt }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := scenarioGoal()
			tt.mutate(&g)
			err := ValidateGoal(g)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

			_, err = ProjectGoal(g, date(2025, 1, 15))
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestBuildTimeline(t *testing.T) {
	points := buildTimeline(1000, 100, 30)
	require.Len(t, points, 3)
	assert.Equal(t, []int{12, 24, 30}, []int{points[0].Month, points[1].Month, points[2].Month})
	assert.Nil(t, buildTimeline(1000, 100, 0))
}
