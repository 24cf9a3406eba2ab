package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// entryRecord pairs an entry with the bucket sequence assigned on append,
// which breaks ties between entries created in the same instant
type entryRecord struct {
	Seq   uint64        `json:"seq"`
	Entry *domain.Entry `json:"entry"`
}

type entryRepo struct {
	repositories
}

func decode(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

func (r *entryRepo) record(id uuid.UUID) (*entryRecord, error) {
	var rec entryRecord
	found, err := r.get(entriesBucket, id[:], &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}
	return &rec, nil
}

func (r *entryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	rec, err := r.record(id)
	if err != nil {
		return nil, err
	}
	return rec.Entry, nil
}

func (r *entryRepo) Append(ctx context.Context, entry *domain.Entry) error {
	if !r.writable {
		return errReadOnly
	}
	if r.exists(entriesBucket, entry.ID[:]) {
		return fmt.Errorf("entry %s already exists", entry.ID)
	}
	seq, err := r.btx.Bucket(entriesBucket).NextSequence()
	if err != nil {
		return fmt.Errorf("failed to allocate entry sequence: %w", err)
	}
	return r.put(entriesBucket, entry.ID[:], entryRecord{Seq: seq, Entry: entry})
}

// Update only copies description and reversed_at onto the stored entry
func (r *entryRepo) Update(ctx context.Context, entry *domain.Entry) error {
	if !r.writable {
		return errReadOnly
	}
	rec, err := r.record(entry.ID)
	if err != nil {
		return err
	}
	rec.Entry.Description = entry.Description
	if rec.Entry.ReversedAt == nil && entry.ReversedAt != nil {
		t := *entry.ReversedAt
		rec.Entry.ReversedAt = &t
	}
	return r.put(entriesBucket, entry.ID[:], rec)
}

func (r *entryRepo) filter(f domain.EntryFilter) ([]*domain.Entry, error) {
	recs := make([]entryRecord, 0)
	err := r.btx.Bucket(entriesBucket).ForEach(func(_, v []byte) error {
		var rec entryRecord
		if err := decode(v, &rec); err != nil {
			return err
		}
		if f.Matches(rec.Entry) {
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		ci, cj := recs[i].Entry.CreatedAt, recs[j].Entry.CreatedAt
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return recs[i].Seq > recs[j].Seq
	})
	out := make([]*domain.Entry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Entry)
	}
	return out, nil
}

func (r *entryRepo) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	entries, err := r.filter(filter)
	if err != nil {
		return nil, err
	}
	return filter.Paginate(entries), nil
}

func (r *entryRepo) Count(ctx context.Context, filter domain.EntryFilter) (int, error) {
	entries, err := r.filter(filter)
	return len(entries), err
}

func (r *entryRepo) HasLiveReferences(ctx context.Context, walletID uuid.UUID) (bool, error) {
	found := false
	err := r.btx.Bucket(entriesBucket).ForEach(func(_, v []byte) error {
		if found {
			return nil
		}
		var rec entryRecord
		if err := decode(v, &rec); err != nil {
			return err
		}
		found = !rec.Entry.IsReversed() && rec.Entry.References(walletID)
		return nil
	})
	return found, err
}
