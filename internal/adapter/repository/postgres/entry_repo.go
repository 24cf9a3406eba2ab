package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

const entryColumns = `id, owner_id, wallet_id, goal_id, counterparty_wallet_id, amount, kind, description, created_at, reversed_at`

// entryRepository implements domain.EntryRepository over the append-only ledger_entries table
type entryRepository struct {
	q    querier
	lock bool
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var e domain.Entry
	var goalID, counterpartyID uuid.NullUUID
	var kind string
	var reversedAt sql.NullTime
	err := row.Scan(
		&e.ID,
		&e.OwnerID,
		&e.WalletID,
		&goalID,
		&counterpartyID,
		&e.Amount,
		&kind,
		&e.Description,
		&e.CreatedAt,
		&reversedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Kind = domain.EntryKind(kind)
	e.GoalID = uuidPtr(goalID)
	e.CounterpartyWalletID = uuidPtr(counterpartyID)
	e.CreatedAt = e.CreatedAt.UTC()
	e.ReversedAt = timePtr(reversedAt)
	return &e, nil
}

// GetByID retrieves an entry by its ID
func (r *entryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	query := forUpdate(`SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1`, r.lock)

	entry, err := scanEntry(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get entry by ID: %w", err)
	}
	return entry, nil
}

// Append inserts a new entry; seq is assigned by the database
func (r *entryRepository) Append(ctx context.Context, entry *domain.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, owner_id, wallet_id, goal_id, counterparty_wallet_id, amount, kind, description, created_at, reversed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		entry.ID,
		entry.OwnerID,
		entry.WalletID,
		entry.GoalID,
		entry.CounterpartyWalletID,
		entry.Amount,
		string(entry.Kind),
		entry.Description,
		entry.CreatedAt,
		entry.ReversedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return nil
}

// Update persists description and reversed_at. A set reversed_at is never cleared.
func (r *entryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	query := `
		UPDATE ledger_entries
		SET description = $2, reversed_at = COALESCE(reversed_at, $3)
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, entry.ID, entry.Description, entry.ReversedAt)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return expectOneRow(result, "entry", entry.ID)
}

// where builds the WHERE clause shared by List and Count
func where(f domain.EntryFilter) (string, []any) {
	conds := []string{"owner_id = $1"}
	args := []any{f.OwnerID}

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.IncludeReversed {
		conds = append(conds, "reversed_at IS NULL")
	}
	if f.WalletID != nil {
		p := next(*f.WalletID)
		conds = append(conds, fmt.Sprintf("(wallet_id = %s OR counterparty_wallet_id = %s)", p, p))
	}
	if f.GoalID != nil {
		conds = append(conds, "goal_id = "+next(*f.GoalID))
	}
	if f.Kind != "" {
		conds = append(conds, "kind = "+next(string(f.Kind)))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List retrieves entries matching the filter, newest first
func (r *entryRepository) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	clause, args := where(filter)
	query := `SELECT ` + entryColumns + ` FROM ledger_entries` + clause + ` ORDER BY created_at DESC, seq DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of matching entries, ignoring Limit and Offset
func (r *entryRepository) Count(ctx context.Context, filter domain.EntryFilter) (int, error) {
	clause, args := where(filter)

	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_entries`+clause, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// HasLiveReferences reports whether a non-reversed entry references the wallet
func (r *entryRepository) HasLiveReferences(ctx context.Context, walletID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ledger_entries
			WHERE reversed_at IS NULL AND (wallet_id = $1 OR counterparty_wallet_id = $1)
		)
	`

	var exists bool
	if err := r.q.QueryRowContext(ctx, query, walletID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check wallet references: %w", err)
	}
	return exists, nil
}
