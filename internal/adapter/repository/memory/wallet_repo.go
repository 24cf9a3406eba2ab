package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// walletRepo serves either a transaction or a read-only view
type walletRepo struct {
	tx   *tx
	view *view
}

func (r *walletRepo) lookup(id uuid.UUID) (*domain.Wallet, bool) {
	if r.view != nil {
		w, ok := r.view.state.wallets[id]
		return w, ok
	}
	if w, ok := r.tx.wallets[id]; ok {
		return w, true
	}
	var (
		w  *domain.Wallet
		ok bool
	)
	r.tx.read(func(st *state) { w, ok = st.wallets[id] })
	return w, ok
}

func (r *walletRepo) all() []*domain.Wallet {
	merged := make(map[uuid.UUID]*domain.Wallet)
	if r.view != nil {
		for id, w := range r.view.state.wallets {
			merged[id] = w
		}
	} else {
		r.tx.read(func(st *state) {
			for id, w := range st.wallets {
				merged[id] = w
			}
		})
		for id, w := range r.tx.wallets {
			merged[id] = w
		}
	}
	out := make([]*domain.Wallet, 0, len(merged))
	for _, w := range merged {
		out = append(out, w)
	}
	return out
}

func (r *walletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	if r.tx != nil {
		if err := r.tx.check(); err != nil {
			return nil, err
		}
	}
	w, ok := r.lookup(id)
	if !ok {
		return nil, fmt.Errorf("wallet %s: %w", id, domain.ErrNotFound)
	}
	return cloneWallet(w), nil
}

func (r *walletRepo) List(ctx context.Context, ownerID uuid.UUID, includeDeleted bool) ([]*domain.Wallet, error) {
	wallets := make([]*domain.Wallet, 0)
	for _, w := range r.all() {
		if w.OwnerID != ownerID || (w.IsDeleted() && !includeDeleted) {
			continue
		}
		wallets = append(wallets, cloneWallet(w))
	}
	sortByCreation(wallets, func(w *domain.Wallet) int64 { return w.CreatedAt.UnixNano() })
	return wallets, nil
}

func (r *walletRepo) ListOwners(ctx context.Context) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	owners := make([]uuid.UUID, 0)
	for _, w := range r.all() {
		if _, ok := seen[w.OwnerID]; ok {
			continue
		}
		seen[w.OwnerID] = struct{}{}
		owners = append(owners, w.OwnerID)
	}
	return owners, nil
}

func (r *walletRepo) Create(ctx context.Context, wallet *domain.Wallet) error {
	if r.view != nil {
		return errReadOnly
	}
	if err := r.tx.check(); err != nil {
		return err
	}
	if _, exists := r.lookup(wallet.ID); exists {
		return fmt.Errorf("wallet %s already exists", wallet.ID)
	}
	r.tx.wallets[wallet.ID] = cloneWallet(wallet)
	return nil
}

func (r *walletRepo) Update(ctx context.Context, wallet *domain.Wallet) error {
	if r.view != nil {
		return errReadOnly
	}
	if err := r.tx.check(); err != nil {
		return err
	}
	if _, exists := r.lookup(wallet.ID); !exists {
		return fmt.Errorf("wallet %s: %w", wallet.ID, domain.ErrNotFound)
	}
	r.tx.wallets[wallet.ID] = cloneWallet(wallet)
	return nil
}
