package penalty

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultBasePenalty is the weekly amount owed when no workout at all was done.
var DefaultBasePenalty = decimal.NewFromInt(10080)

// LedgerPlaces is the precision charged amounts are stored with. A base that
// the goal does not divide leaves a repeating fraction, which is rounded half
// away from zero once, when the amount is charged.
const LedgerPlaces = 2

func RoundForLedger(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(LedgerPlaces)
}

// Breakdown explains how a weekly penalty was computed. AchievementRate is the
// raw actual/goal percentage and is not capped: penalty math works on the true
// miss count, display code caps on its own.
type Breakdown struct {
	TotalPenalty    decimal.Decimal `json:"totalPenalty"`
	PerUnitPenalty  decimal.Decimal `json:"perUnitPenalty"`
	MissedCount     int             `json:"missedCount"`
	AchievementRate float64         `json:"achievementRate"`
}

// Scenario is the penalty the user would pay after doing Additional more workouts.
type Scenario struct {
	Additional int             `json:"additional"`
	Penalty    decimal.Decimal `json:"penalty"`
}

type Estimate struct {
	Current   decimal.Decimal `json:"current"`
	BestCase  decimal.Decimal `json:"bestCase"`
	Scenarios []Scenario      `json:"scenarios"`
}

type Calculator struct {
	basePenalty decimal.Decimal
}

func NewCalculator(basePenalty decimal.Decimal) *Calculator {
	if !basePenalty.IsPositive() {
		panic(fmt.Sprintf("penalty: base penalty must be positive, got %s", basePenalty))
	}
	return &Calculator{basePenalty: basePenalty}
}

func (c *Calculator) BasePenalty() decimal.Decimal {
	return c.basePenalty
}

func (c *Calculator) Calculate(goalCount, actualCount int) decimal.Decimal {
	return Calculate(goalCount, actualCount, c.basePenalty)
}

func (c *Calculator) Breakdown(goalCount, actualCount int) Breakdown {
	return CalculateBreakdown(goalCount, actualCount, c.basePenalty)
}

// EstimateFuture lists the penalty for the current count, the best case, and the
// penalty after each extra workout that still fits in the remaining days.
func (c *Calculator) EstimateFuture(currentCount, goalCount, remainingDays int) Estimate {
	est := Estimate{
		Current:   c.Calculate(goalCount, currentCount),
		BestCase:  decimal.Zero,
		Scenarios: []Scenario{},
	}

	maxExtra := min(remainingDays, goalCount-currentCount)
	for extra := 1; extra <= maxExtra; extra++ {
		est.Scenarios = append(est.Scenarios, Scenario{
			Additional: extra,
			Penalty:    c.Calculate(goalCount, currentCount+extra),
		})
	}
	return est
}

// Calculate returns basePenalty/goalCount for every missed workout. Meeting or
// exceeding the goal costs nothing. A non-positive goal is a caller bug, goal
// range validation must have rejected it already, so it panics.
func Calculate(goalCount, actualCount int, basePenalty decimal.Decimal) decimal.Decimal {
	mustValidGoal(goalCount)
	if actualCount >= goalCount {
		return decimal.Zero
	}
	missed := goalCount - actualCount
	return perUnit(goalCount, basePenalty).Mul(decimal.NewFromInt(int64(missed)))
}

func CalculateBreakdown(goalCount, actualCount int, basePenalty decimal.Decimal) Breakdown {
	mustValidGoal(goalCount)
	b := Breakdown{
		TotalPenalty:    Calculate(goalCount, actualCount, basePenalty),
		PerUnitPenalty:  perUnit(goalCount, basePenalty),
		MissedCount:     max(0, goalCount-actualCount),
		AchievementRate: float64(actualCount) / float64(goalCount) * 100,
	}
	return b
}

func perUnit(goalCount int, basePenalty decimal.Decimal) decimal.Decimal {
	return basePenalty.Div(decimal.NewFromInt(int64(goalCount)))
}

func mustValidGoal(goalCount int) {
	if goalCount <= 0 {
		panic(fmt.Sprintf("penalty: goal count must be positive, got %d", goalCount))
	}
}
