package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger/internal/goaltracker"
)

// CreateGoalInput represents the input for creating a savings goal
type CreateGoalInput struct {
	Name         string
	Description  string
	TargetAmount domain.Money
	PeriodDays   int
}

// UpdateGoalInput carries the goal fields to change. Nil fields are left as they are.
type UpdateGoalInput struct {
	Name         *string
	Description  *string
	TargetAmount *domain.Money
	PeriodDays   *int
}

// CreateGoal creates a savings goal starting now and ending after PeriodDays
func (c *Coordinator) CreateGoal(ctx context.Context, ownerID uuid.UUID, input CreateGoalInput) (*domain.Goal, error) {
	name, err := domain.NormalizeName(input.Name, "goal name")
	if err != nil {
		return nil, err
	}
	description, err := domain.NormalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}
	if !input.TargetAmount.IsPositive() {
		return nil, fmt.Errorf("goal target: %w", domain.ErrNonPositiveAmount)
	}
	if input.PeriodDays < 1 {
		return nil, fmt.Errorf("%w: goal period must be at least one day", domain.ErrInvalidInput)
	}

	var goal *domain.Goal
	err = c.inTx(ctx, ownerID, "create goal", func(tx domain.Tx) error {
		now := c.now()
		g := &domain.Goal{
			ID:            uuid.New(),
			OwnerID:       ownerID,
			Name:          name,
			Description:   description,
			TargetAmount:  input.TargetAmount,
			CurrentAmount: domain.ZeroMoney,
			PeriodDays:    input.PeriodDays,
			StartDate:     now,
			EndDate:       domain.EndDateFor(now, input.PeriodDays),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := g.Validate(); err != nil {
			return err
		}
		if err := tx.Goals().Create(ctx, g); err != nil {
			return domain.StorageError("create goal", err)
		}
		goal = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.Logger.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"goal_id":  goal.ID,
		"target":   goal.TargetAmount.String(),
	}).Info("goal created")
	return goal, nil
}

// UpdateGoal applies a partial update to a goal
// Logic:
//  1. Name and description are validated like on creation
//  2. A new target recomputes the achieved flag
//  3. A new period moves the end date to start date + period
func (c *Coordinator) UpdateGoal(ctx context.Context, ownerID, goalID uuid.UUID, input UpdateGoalInput) (*domain.Goal, error) {
	var goal *domain.Goal
	err := c.inTx(ctx, ownerID, "update goal", func(tx domain.Tx) error {
		now := c.now()

		g, err := loadGoal(ctx, tx, ownerID, goalID, false)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name, err := domain.NormalizeName(*input.Name, "goal name")
			if err != nil {
				return err
			}
			g.Name = name
		}
		if input.Description != nil {
			description, err := domain.NormalizeDescription(*input.Description)
			if err != nil {
				return err
			}
			g.Description = description
		}
		if input.TargetAmount != nil {
			if err := goaltracker.SetTarget(g, *input.TargetAmount, now); err != nil {
				return err
			}
		}
		if input.PeriodDays != nil {
			if err := goaltracker.SetPeriod(g, *input.PeriodDays, now); err != nil {
				return err
			}
		}

		g.UpdatedAt = now
		if err := saveGoal(ctx, tx, g); err != nil {
			return err
		}
		goal = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// DeleteGoal soft deletes a goal. Its contributions stay in the log and can
// still be reversed, but no new contributions are accepted.
func (c *Coordinator) DeleteGoal(ctx context.Context, ownerID, goalID uuid.UUID) error {
	err := c.inTx(ctx, ownerID, "delete goal", func(tx domain.Tx) error {
		g, err := loadGoal(ctx, tx, ownerID, goalID, false)
		if err != nil {
			return err
		}

		now := c.now()
		g.DeletedAt = &now
		g.UpdatedAt = now
		return saveGoal(ctx, tx, g)
	})
	if err != nil {
		return err
	}

	c.Logger.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"goal_id":  goalID,
	}).Info("goal deleted")
	return nil
}
