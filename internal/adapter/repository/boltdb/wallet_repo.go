package boltdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

type walletRepo struct {
	repositories
}

func (r *walletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	var w domain.Wallet
	found, err := r.get(walletsBucket, id[:], &w)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("wallet %s: %w", id, domain.ErrNotFound)
	}
	return &w, nil
}

func (r *walletRepo) each(fn func(w *domain.Wallet) error) error {
	return r.btx.Bucket(walletsBucket).ForEach(func(_, v []byte) error {
		var w domain.Wallet
		if err := decode(v, &w); err != nil {
			return err
		}
		return fn(&w)
	})
}

func (r *walletRepo) List(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]*domain.Wallet, error) {
	wallets := make([]*domain.Wallet, 0)
	err := r.each(func(w *domain.Wallet) error {
		if w.OwnerID == ownerID && (includeDeleted || !w.IsDeleted()) {
			wallets = append(wallets, w)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(wallets, func(i, j int) bool { return wallets[i].CreatedAt.Before(wallets[j].CreatedAt) })
	return wallets, nil
}

func (r *walletRepo) ListOwners(ctx context.Context) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	owners := make([]uuid.UUID, 0)
	err := r.each(func(w *domain.Wallet) error {
		if _, ok := seen[w.OwnerID]; !ok {
			seen[w.OwnerID] = struct{}{}
			owners = append(owners, w.OwnerID)
		}
		return nil
	})
	return owners, err
}

func (r *walletRepo) Create(ctx context.Context, wallet *domain.Wallet) error {
	if r.writable && r.exists(walletsBucket, wallet.ID[:]) {
		return fmt.Errorf("wallet %s already exists", wallet.ID)
	}
	return r.put(walletsBucket, wallet.ID[:], wallet)
}

func (r *walletRepo) Update(ctx context.Context, wallet *domain.Wallet) error {
	if r.writable && !r.exists(walletsBucket, wallet.ID[:]) {
		return fmt.Errorf("wallet %s: %w", wallet.ID, domain.ErrNotFound)
	}
	return r.put(walletsBucket, wallet.ID[:], wallet)
}
