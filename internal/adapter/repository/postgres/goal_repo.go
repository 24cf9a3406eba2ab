package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

const goalColumns = `id, owner_id, name, description, target_amount, current_amount, period_days,
	start_date, end_date, achieved, created_at, updated_at, deleted_at`

// goalRepository implements domain.GoalRepository
type goalRepository struct {
	q    querier
	lock bool
}

func scanGoal(row rowScanner) (*domain.Goal, error) {
	var g domain.Goal
	var endDate, deletedAt sql.NullTime
	err := row.Scan(
		&g.ID,
		&g.OwnerID,
		&g.Name,
		&g.Description,
		&g.TargetAmount,
		&g.CurrentAmount,
		&g.PeriodDays,
		&g.StartDate,
		&endDate,
		&g.Achieved,
		&g.CreatedAt,
		&g.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	g.StartDate = g.StartDate.UTC()
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	g.EndDate = timePtr(endDate)
	g.DeletedAt = timePtr(deletedAt)
	return &g, nil
}

// GetByID retrieves a goal by its ID
func (r *goalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	query := forUpdate(`SELECT `+goalColumns+` FROM goals WHERE id = $1`, r.lock)

	goal, err := scanGoal(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get goal by ID: %w", err)
	}
	return goal, nil
}

// List retrieves the goals of an owner, oldest first
func (r *goalRepository) List(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE owner_id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]*domain.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}
	return goals, nil
}

// Create creates a new goal
func (r *goalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	query := `
		INSERT INTO goals (id, owner_id, name, description, target_amount, current_amount, period_days,
			start_date, end_date, achieved, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		goal.ID,
		goal.OwnerID,
		goal.Name,
		goal.Description,
		goal.TargetAmount,
		goal.CurrentAmount,
		goal.PeriodDays,
		goal.StartDate,
		goal.EndDate,
		goal.Achieved,
		goal.CreatedAt,
		goal.UpdatedAt,
		goal.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// Update persists every mutable goal field
func (r *goalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	query := `
		UPDATE goals
		SET name = $2, description = $3, target_amount = $4, current_amount = $5, period_days = $6,
			end_date = $7, achieved = $8, updated_at = $9, deleted_at = $10
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		goal.ID,
		goal.Name,
		goal.Description,
		goal.TargetAmount,
		goal.CurrentAmount,
		goal.PeriodDays,
		goal.EndDate,
		goal.Achieved,
		goal.UpdatedAt,
		goal.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return expectOneRow(result, "goal", goal.ID)
}
