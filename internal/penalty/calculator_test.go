package penalty_test

import (
	"testing"

	"github.com/2beens/workoutfines/internal/penalty"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = decimal.NewFromInt(10800)

func TestCalculate_GoalMetIsFree(t *testing.T) {
	for goal := 1; goal <= 7; goal++ {
		for actual := goal; actual <= goal+3; actual++ {
			got := penalty.Calculate(goal, actual, base)
			assert.True(t, got.IsZero(), "goal %d actual %d: %s", goal, actual, got)
		}
	}
}

func TestCalculate_ProRated(t *testing.T) {
	for goal := 1; goal <= 7; goal++ {
		for actual := 0; actual < goal; actual++ {
			want := base.Div(decimal.NewFromInt(int64(goal))).Mul(decimal.NewFromInt(int64(goal - actual)))
			got := penalty.Calculate(goal, actual, base)
			assert.True(t, want.Equal(got), "goal %d actual %d: want %s got %s", goal, actual, want, got)
			assert.True(t, got.IsPositive())
		}
	}
}

func TestCalculate_Example(t *testing.T) {
	got := penalty.Calculate(5, 3, base)
	assert.Equal(t, "4320", got.String())

	// original default base
	c := penalty.NewCalculator(decimal.NewFromInt(10080))
	assert.Equal(t, "1440", c.Calculate(7, 6).String())
	assert.Equal(t, "10080", c.Calculate(4, 0).String())
}

func TestCalculate_Deterministic(t *testing.T) {
	c := penalty.NewCalculator(decimal.RequireFromString("10000.50"))
	first := c.Calculate(7, 2)
	for i := 0; i < 1000; i++ {
		require.True(t, first.Equal(c.Calculate(7, 2)))
	}
}

func TestCalculate_ZeroGoalPanics(t *testing.T) {
	assert.Panics(t, func() {
		penalty.Calculate(0, 0, base)
	})
	assert.Panics(t, func() {
		penalty.CalculateBreakdown(0, 3, base)
	})
}

func TestNewCalculator_RejectsNonPositiveBase(t *testing.T) {
	assert.Panics(t, func() { penalty.NewCalculator(decimal.Zero) })
	assert.Panics(t, func() { penalty.NewCalculator(decimal.NewFromInt(-1)) })
}

func TestCalculateBreakdown(t *testing.T) {
	b := penalty.CalculateBreakdown(5, 3, base)
	assert.Equal(t, "4320", b.TotalPenalty.String())
	assert.Equal(t, "2160", b.PerUnitPenalty.String())
	assert.Equal(t, 2, b.MissedCount)
	assert.InDelta(t, 60.0, b.AchievementRate, 1e-9)

	// overachievement: no miss, rate stays uncapped
	b = penalty.CalculateBreakdown(4, 6, base)
	assert.True(t, b.TotalPenalty.IsZero())
	assert.Equal(t, 0, b.MissedCount)
	assert.InDelta(t, 150.0, b.AchievementRate, 1e-9)
}

func TestEstimateFuture(t *testing.T) {
	c := penalty.NewCalculator(base)

	est := c.EstimateFuture(2, 5, 2)
	assert.Equal(t, "6480", est.Current.String())
	assert.True(t, est.BestCase.IsZero())
	require.Len(t, est.Scenarios, 2)
	assert.Equal(t, 1, est.Scenarios[0].Additional)
	assert.Equal(t, "4320", est.Scenarios[0].Penalty.String())
	assert.Equal(t, 2, est.Scenarios[1].Additional)
	assert.Equal(t, "2160", est.Scenarios[1].Penalty.String())

	// enough days left to reach the goal
	est = c.EstimateFuture(2, 5, 6)
	require.Len(t, est.Scenarios, 3)
	assert.True(t, est.Scenarios[2].Penalty.IsZero())

	// already done
	est = c.EstimateFuture(5, 5, 3)
	assert.True(t, est.Current.IsZero())
	assert.Empty(t, est.Scenarios)
}

func TestRoundForLedger(t *testing.T) {
	// 10800 / 7 repeats, the calculator keeps it
	raw := penalty.Calculate(7, 1, base)
	assert.NotEqual(t, "9257.14", raw.String())
	assert.Equal(t, "9257.14", penalty.RoundForLedger(raw).String())

	assert.Equal(t, "8064", penalty.RoundForLedger(penalty.Calculate(5, 1, penalty.DefaultBasePenalty)).String())
	assert.Equal(t, "0.01", penalty.RoundForLedger(decimal.RequireFromString("0.005")).String())
}
