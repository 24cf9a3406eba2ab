package boltdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

type goalRepo struct {
	repositories
}

func (r *goalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	var g domain.Goal
	found, err := r.get(goalsBucket, id[:], &g)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
	}
	return &g, nil
}

func (r *goalRepo) List(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]*domain.Goal, error) {
	goals := make([]*domain.Goal, 0)
	err := r.btx.Bucket(goalsBucket).ForEach(func(_, v []byte) error {
		var g domain.Goal
		if err := decode(v, &g); err != nil {
			return err
		}
		if g.OwnerID == ownerID && (includeDeleted || !g.IsDeleted()) {
			goals = append(goals, &g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(goals, func(i, j int) bool { return goals[i].CreatedAt.Before(goals[j].CreatedAt) })
	return goals, nil
}

func (r *goalRepo) Create(ctx context.Context, goal *domain.Goal) error {
	if r.writable && r.exists(goalsBucket, goal.ID[:]) {
		return fmt.Errorf("goal %s already exists", goal.ID)
	}
	return r.put(goalsBucket, goal.ID[:], goal)
}

func (r *goalRepo) Update(ctx context.Context, goal *domain.Goal) error {
	if r.writable && !r.exists(goalsBucket, goal.ID[:]) {
		return fmt.Errorf("goal %s: %w", goal.ID, domain.ErrNotFound)
	}
	return r.put(goalsBucket, goal.ID[:], goal)
}
