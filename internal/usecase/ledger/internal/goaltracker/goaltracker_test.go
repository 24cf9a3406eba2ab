package goaltracker

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

func newGoal(target, current string) *domain.Goal {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := &domain.Goal{
		ID:            uuid.New(),
		OwnerID:       uuid.New(),
		Name:          "Bike",
		TargetAmount:  domain.MustParse(target),
		CurrentAmount: domain.MustParse(current),
		PeriodDays:    30,
		StartDate:     start,
		EndDate:       domain.EndDateFor(start, 30),
	}
	g.Achieved = g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
	return g
}

func TestAddProgress(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		current      string
		amount       string
		wantCurrent  string
		wantAchieved bool
	}{
		{name: "below target", target: "100", current: "0", amount: "30", wantCurrent: "30.00", wantAchieved: false},
		{name: "reaches target exactly", target: "100", current: "30", amount: "70", wantCurrent: "100.00", wantAchieved: true},
		{name: "overfunds", target: "100", current: "90", amount: "25", wantCurrent: "115.00", wantAchieved: true},
		{name: "one cent short", target: "100", current: "0", amount: "99.99", wantCurrent: "99.99", wantAchieved: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGoal(tt.target, tt.current)

			current, err := AddProgress(g, domain.MustParse(tt.amount), time.Now())

			require.NoError(t, err)
			assert.Equal(t, tt.wantCurrent, current.String())
			assert.Equal(t, tt.wantAchieved, g.Achieved)
			assert.NoError(t, g.Validate())
		})
	}
}

func TestAddProgress_RejectsNonPositive(t *testing.T) {
	g := newGoal("100", "10")

	_, err := AddProgress(g, domain.ZeroMoney, time.Now())

	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Equal(t, "10.00", g.CurrentAmount.String())
}

func TestAddProgress_RejectsOverflow(t *testing.T) {
	g := newGoal("100", "999999999999.50")

	_, err := AddProgress(g, domain.MustParse("1.00"), time.Now())

	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Equal(t, "999999999999.50", g.CurrentAmount.String())
}

func TestRemoveProgress(t *testing.T) {
	g := newGoal("100", "120")
	require.True(t, g.Achieved)

	removed, err := RemoveProgress(g, domain.MustParse("30"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "30.00", removed.String())
	assert.Equal(t, "90.00", g.CurrentAmount.String())
	assert.False(t, g.Achieved, "achievement is withdrawn once progress drops below target")

	// Never below zero
	removed, err = RemoveProgress(g, domain.MustParse("500"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "90.00", removed.String())
	assert.True(t, g.CurrentAmount.IsZero())
}

func TestSetTargetAndPeriod(t *testing.T) {
	g := newGoal("100", "60")
	now := time.Now()

	require.NoError(t, SetTarget(g, domain.MustParse("50"), now))
	assert.True(t, g.Achieved)

	require.NoError(t, SetTarget(g, domain.MustParse("80"), now))
	assert.False(t, g.Achieved)

	assert.ErrorIs(t, SetTarget(g, domain.ZeroMoney, now), domain.ErrInvalidAmount)

	require.NoError(t, SetPeriod(g, 60, now))
	assert.Equal(t, g.StartDate.Add(60*24*time.Hour), *g.EndDate)
	assert.ErrorIs(t, SetPeriod(g, 0, now), domain.ErrInvalidInput)
}
