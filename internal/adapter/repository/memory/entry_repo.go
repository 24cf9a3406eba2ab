package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

type entryRepo struct {
	tx   *tx
	view *view
}

func (r *entryRepo) lookup(id uuid.UUID) (*domain.Entry, bool) {
	if r.view != nil {
		rec, ok := r.view.state.entries[id]
		return rec.entry, ok
	}
	if e, ok := r.tx.entries[id]; ok {
		return e, true
	}
	var (
		rec entryRecord
		ok  bool
	)
	r.tx.read(func(st *state) { rec, ok = st.entries[id] })
	return rec.entry, ok
}

// all returns committed entries overlaid with staged ones.
// Staged appends sort after everything committed.
func (r *entryRepo) all() []entryRecord {
	merged := make(map[uuid.UUID]entryRecord)
	if r.view != nil {
		for id, rec := range r.view.state.entries {
			merged[id] = rec
		}
	} else {
		r.tx.read(func(st *state) {
			for id, rec := range st.entries {
				merged[id] = rec
			}
		})
		for id, e := range r.tx.entries {
			rec := merged[id]
			rec.entry = e
			merged[id] = rec
		}
		for i, id := range r.tx.appended {
			rec := merged[id]
			rec.seq = math.MaxUint32 + uint64(i)
			merged[id] = rec
		}
	}
	out := make([]entryRecord, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}
	return out
}

func (r *entryRepo) filter(f domain.EntryFilter) []*domain.Entry {
	recs := make([]entryRecord, 0)
	for _, rec := range r.all() {
		if f.Matches(rec.entry) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		ci, cj := recs[i].entry.CreatedAt, recs[j].entry.CreatedAt
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return recs[i].seq > recs[j].seq
	})
	out := make([]*domain.Entry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, cloneEntry(rec.entry))
	}
	return out
}

func (r *entryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	if r.tx != nil {
		if err := r.tx.check(); err != nil {
			return nil, err
		}
	}
	e, ok := r.lookup(id)
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}
	return cloneEntry(e), nil
}

func (r *entryRepo) Append(ctx context.Context, entry *domain.Entry) error {
	if r.view != nil {
		return errReadOnly
	}
	if err := r.tx.check(); err != nil {
		return err
	}
	if _, exists := r.lookup(entry.ID); exists {
		return fmt.Errorf("entry %s already exists", entry.ID)
	}
	r.tx.entries[entry.ID] = cloneEntry(entry)
	r.tx.appended = append(r.tx.appended, entry.ID)
	return nil
}

// Update only copies the mutable fields onto the stored entry
func (r *entryRepo) Update(ctx context.Context, entry *domain.Entry) error {
	if r.view != nil {
		return errReadOnly
	}
	if err := r.tx.check(); err != nil {
		return err
	}
	current, ok := r.lookup(entry.ID)
	if !ok {
		return fmt.Errorf("entry %s: %w", entry.ID, domain.ErrNotFound)
	}
	updated := cloneEntry(current)
	updated.Description = entry.Description
	if entry.ReversedAt != nil {
		t := *entry.ReversedAt
		updated.ReversedAt = &t
	}
	r.tx.entries[entry.ID] = updated
	return nil
}

func (r *entryRepo) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	return filter.Paginate(r.filter(filter)), nil
}

func (r *entryRepo) Count(ctx context.Context, filter domain.EntryFilter) (int, error) {
	return len(r.filter(filter)), nil
}

func (r *entryRepo) HasLiveReferences(ctx context.Context, walletID uuid.UUID) (bool, error) {
	for _, rec := range r.all() {
		if !rec.entry.IsReversed() && rec.entry.References(walletID) {
			return true, nil
		}
	}
	return false, nil
}
