package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

type goalRepo struct {
	tx   *tx
	view *view
}

func (r *goalRepo) lookup(id uuid.UUID) (*domain.Goal, bool) {
	if r.view != nil {
		g, ok := r.view.state.goals[id]
		return g, ok
	}
	if g, ok := r.tx.goals[id]; ok {
		return g, true
	}
	var (
		g  *domain.Goal
		ok bool
	)
	r.tx.read(func(st *state) { g, ok = st.goals[id] })
	return g, ok
}

func (r *goalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	if r.tx != nil {
		if err := r.tx.check(); err != nil {
			return nil, err
		}
	}
	g, ok := r.lookup(id)
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
	}
	return cloneGoal(g), nil
}

func (r *goalRepo) List(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]*domain.Goal, error) {
	merged := make(map[uuid.UUID]*domain.Goal)
	if r.view != nil {
		for id, g := range r.view.state.goals {
			merged[id] = g
		}
	} else {
		r.tx.read(func(st *state) {
			for id, g := range st.goals {
				merged[id] = g
			}
		})
		for id, g := range r.tx.goals {
			merged[id] = g
		}
	}

	goals := make([]*domain.Goal, 0)
	for _, g := range merged {
		if g.OwnerID != ownerID || (g.IsDeleted() && !includeDeleted) {
			continue
		}
		goals = append(goals, cloneGoal(g))
	}
	sortByCreation(goals, func(g *domain.Goal) int64 { return g.CreatedAt.UnixNano() })
	return goals, nil
}

func (r *goalRepo) Create(ctx context.Context, goal *domain.Goal) error {
	if r.view != nil {
		return errReadOnly
	}
	if err := r.tx.check(); err != nil {
		return err
	}
	if _, exists := r.lookup(goal.ID); exists {
		return fmt.Errorf("goal %s already exists", goal.ID)
	}
	r.tx.goals[goal.ID] = cloneGoal(goal)
	return nil
}

func (r *goalRepo) Update(ctx context.Context, goal *domain.Goal) error {
	if r.view != nil {
		return errReadOnly
	}
	if err := r.tx.check(); err != nil {
		return err
	}
	if _, exists := r.lookup(goal.ID); !exists {
		return fmt.Errorf("goal %s: %w", goal.ID, domain.ErrNotFound)
	}
	r.tx.goals[goal.ID] = cloneGoal(goal)
	return nil
}
