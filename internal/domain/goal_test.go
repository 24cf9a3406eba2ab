package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestGoal(target, current string, start time.Time, periodDays int) *Goal {
	g := &Goal{
		ID:            uuid.New(),
		OwnerID:       uuid.New(),
		Name:          "Vacation",
		TargetAmount:  MustParse(target),
		CurrentAmount: MustParse(current),
		PeriodDays:    periodDays,
		StartDate:     start,
		EndDate:       EndDateFor(start, periodDays),
	}
	g.Achieved = g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
	return g
}

func TestGoal_Validate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	valid := newTestGoal("100", "30", start, 30)
	assert.NoError(t, valid.Validate())

	zeroTarget := newTestGoal("100", "0", start, 30)
	zeroTarget.TargetAmount = ZeroMoney
	zeroTarget.Achieved = true
	assert.ErrorIs(t, zeroTarget.Validate(), ErrNonPositiveAmount)

	noPeriod := newTestGoal("100", "0", start, 30)
	noPeriod.PeriodDays = 0
	assert.ErrorIs(t, noPeriod.Validate(), ErrInvalidInput)

	inconsistent := newTestGoal("100", "100", start, 30)
	inconsistent.Achieved = false
	err := inconsistent.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "achieved flag")
}

func TestGoal_ProgressPercentage(t *testing.T) {
	start := time.Now()

	tests := []struct {
		name    string
		target  string
		current string
		want    float64
	}{
		{name: "empty", target: "100", current: "0", want: 0},
		{name: "partial", target: "100", current: "30", want: 30},
		{name: "exact", target: "80", current: "80", want: 100},
		{name: "overfunded is not clamped", target: "50", current: "75", want: 150},
		{name: "zero target", target: "0", current: "10", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGoal(tt.target, tt.current, start, 10)
			assert.InDelta(t, tt.want, g.ProgressPercentage(), 0.0001)
		})
	}
}

func TestGoal_Deadline(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGoal("300", "0", start, 30)

	assert.Equal(t, start.Add(30*24*time.Hour), *g.EndDate)

	days, ok := g.DaysRemaining(start)
	assert.True(t, ok)
	assert.Equal(t, 30, days)
	assert.False(t, g.IsExpired(start))

	// Partial days are floored
	days, _ = g.DaysRemaining(start.Add(10*24*time.Hour + time.Hour))
	assert.Equal(t, 19, days)

	after := g.EndDate.Add(time.Second)
	assert.True(t, g.IsExpired(after))
	days, ok = g.DaysRemaining(after)
	assert.True(t, ok)
	assert.Equal(t, 0, days)

	noDeadline := newTestGoal("300", "0", start, 30)
	noDeadline.EndDate = nil
	assert.False(t, noDeadline.IsExpired(after))
	_, ok = noDeadline.DaysRemaining(after)
	assert.False(t, ok)
}

func TestGoal_DailySavingsNeeded(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	g := newTestGoal("300", "0", start, 30)

	daily, overdue := g.DailySavingsNeeded(start)
	assert.False(t, overdue)
	assert.Equal(t, "10.00", daily.String())

	// Due within the day counts as one day
	daily, overdue = g.DailySavingsNeeded(g.EndDate.Add(-time.Hour))
	assert.False(t, overdue)
	assert.Equal(t, "300.00", daily.String())

	_, overdue = g.DailySavingsNeeded(g.EndDate.Add(time.Hour))
	assert.True(t, overdue)

	funded := newTestGoal("300", "350", start, 30)
	assert.Equal(t, "0.00", funded.RemainingAmount().String())
	daily, _ = funded.DailySavingsNeeded(start)
	assert.True(t, daily.IsZero())
}
