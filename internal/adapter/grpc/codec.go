package grpc

import (
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger"
	"github.com/simaogato/nestegg-backend/internal/usecase/summary"
)

// Requests and responses are google.protobuf.Struct messages.
// Money always travels as a decimal string and times as RFC 3339 strings.

func field(req *structpb.Struct, name string) (*structpb.Value, bool) {
	if req == nil {
		return nil, false
	}
	v, ok := req.GetFields()[name]
	if !ok {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func stringField(req *structpb.Struct, name string) string {
	v, ok := field(req, name)
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func optionalString(req *structpb.Struct, name string) *string {
	v, ok := field(req, name)
	if !ok {
		return nil
	}
	s := v.GetStringValue()
	return &s
}

func uuidField(req *structpb.Struct, name string) (uuid.UUID, error) {
	raw := stringField(req, name)
	if raw == "" {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
	}
	return id, nil
}

func optionalUUID(req *structpb.Struct, name string) (*uuid.UUID, error) {
	if stringField(req, name) == "" {
		return nil, nil
	}
	id, err := uuidField(req, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// moneyField parses a decimal string; plain numbers are accepted too
func moneyField(req *structpb.Struct, name string) (domain.Money, error) {
	v, ok := field(req, name)
	if !ok {
		return domain.Money{}, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	var raw any
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		raw = kind.StringValue
	case *structpb.Value_NumberValue:
		raw = kind.NumberValue
	default:
		return domain.Money{}, status.Errorf(codes.InvalidArgument, "%s must be a decimal string", name)
	}
	m, err := domain.Parse(raw)
	if err != nil {
		return domain.Money{}, status.Errorf(codes.InvalidArgument, "invalid %s: %v", name, err)
	}
	return m, nil
}

func optionalMoney(req *structpb.Struct, name string) (*domain.Money, error) {
	if _, ok := field(req, name); !ok {
		return nil, nil
	}
	m, err := moneyField(req, name)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func intField(req *structpb.Struct, name string, def int) (int, error) {
	v, ok := field(req, name)
	if !ok {
		return def, nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != float64(int(n.NumberValue)) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}
	return int(n.NumberValue), nil
}

func optionalInt(req *structpb.Struct, name string) (*int, error) {
	if _, ok := field(req, name); !ok {
		return nil, nil
	}
	n, err := intField(req, name, 0)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func boolField(req *structpb.Struct, name string) bool {
	v, ok := field(req, name)
	return ok && v.GetBoolValue()
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func optionalID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func walletToMap(w *domain.Wallet) map[string]any {
	if w == nil {
		return nil
	}
	return map[string]any{
		"id":         w.ID.String(),
		"name":       w.Name,
		"balance":    w.Balance.String(),
		"created_at": formatTime(w.CreatedAt),
		"updated_at": formatTime(w.UpdatedAt),
	}
}

func goalToMap(g *domain.Goal, now time.Time) map[string]any {
	if g == nil {
		return nil
	}
	m := map[string]any{
		"id":                  g.ID.String(),
		"name":                g.Name,
		"description":         g.Description,
		"target_amount":       g.TargetAmount.String(),
		"current_amount":      g.CurrentAmount.String(),
		"remaining_amount":    g.RemainingAmount().String(),
		"period_days":         g.PeriodDays,
		"start_date":          formatTime(g.StartDate),
		"end_date":            optionalTime(g.EndDate),
		"achieved":            g.Achieved,
		"progress_percentage": g.ProgressPercentage(),
		"is_expired":          g.IsExpired(now),
		"created_at":          formatTime(g.CreatedAt),
		"updated_at":          formatTime(g.UpdatedAt),
	}
	if days, ok := g.DaysRemaining(now); ok {
		m["days_remaining"] = days
	}
	daily, overdue := g.DailySavingsNeeded(now)
	m["daily_savings_needed"] = daily.String()
	m["overdue"] = overdue
	return m
}

func entryToMap(e *domain.Entry) map[string]any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"id":                     e.ID.String(),
		"wallet_id":              e.WalletID.String(),
		"goal_id":                optionalID(e.GoalID),
		"counterparty_wallet_id": optionalID(e.CounterpartyWalletID),
		"amount":                 e.Amount.String(),
		"kind":                   string(e.Kind),
		"description":            e.Description,
		"created_at":             formatTime(e.CreatedAt),
		"reversed_at":            optionalTime(e.ReversedAt),
		"reversed":               e.IsReversed(),
	}
}

// nullableEntry keeps a missing entry as null instead of an empty object
func nullableEntry(e *domain.Entry) any {
	if e == nil {
		return nil
	}
	return entryToMap(e)
}

func receiptToMap(r *ledger.Receipt, now time.Time) map[string]any {
	m := map[string]any{
		"entry":  nullableEntry(r.Entry),
		"wallet": walletToMap(r.Wallet),
	}
	if r.Counterparty != nil {
		m["counterparty"] = walletToMap(r.Counterparty)
	}
	if r.Goal != nil {
		m["goal"] = goalToMap(r.Goal, now)
	}
	return m
}

func pageToMap(p *ledger.EntryPage) map[string]any {
	entries := make([]any, 0, len(p.Entries))
	for _, e := range p.Entries {
		entries = append(entries, entryToMap(e))
	}
	return map[string]any{"entries": entries, "total": p.Total}
}

func summaryToMap(r *summary.SummaryResult) map[string]any {
	recent := make([]any, 0, len(r.RecentEntries))
	for _, e := range r.RecentEntries {
		recent = append(recent, entryToMap(e))
	}
	monthly := make([]any, 0, len(r.Monthly))
	for _, m := range r.Monthly {
		monthly = append(monthly, map[string]any{
			"month":       m.Month,
			"deposits":    m.Deposits.String(),
			"withdrawals": m.Withdrawals.String(),
			"net":         m.Net.String(),
		})
	}
	return map[string]any{
		"total_deposits":           r.TotalDeposits.String(),
		"total_withdrawals":        r.TotalWithdrawals.String(),
		"total_goal_contributions": r.TotalGoalContributions.String(),
		"total_transfers":          r.TotalTransfers.String(),
		"current_balance":          r.CurrentBalance.String(),
		"net_savings":              r.NetSavings.String(),
		"recent_entries":           recent,
		"monthly":                  monthly,
	}
}

func statisticsToMap(r *summary.StatisticsResult) map[string]any {
	period := string(r.Period)
	if period == "" {
		period = "all"
	}
	return map[string]any{
		"period":             period,
		"since":              optionalTime(r.Since),
		"total_deposits":     r.TotalDeposits.String(),
		"total_withdrawals":  r.TotalWithdrawals.String(),
		"net_savings":        r.NetSavings.String(),
		"deposit_count":      r.DepositCount,
		"withdrawal_count":   r.WithdrawalCount,
		"average_deposit":    r.AverageDeposit.String(),
		"average_withdrawal": r.AverageWithdrawal.String(),
		"largest_deposit":    nullableEntry(r.LargestDeposit),
		"largest_withdrawal": nullableEntry(r.LargestWithdrawal),
	}
}

func entryFilter(req *structpb.Struct) (domain.EntryFilter, error) {
	var f domain.EntryFilter
	var err error

	if f.WalletID, err = optionalUUID(req, "wallet_id"); err != nil {
		return f, err
	}
	if f.GoalID, err = optionalUUID(req, "goal_id"); err != nil {
		return f, err
	}
	if kind := stringField(req, "kind"); kind != "" {
		if f.Kind, err = domain.ParseEntryKind(kind); err != nil {
			return f, mapError(err)
		}
	}
	f.IncludeReversed = boolField(req, "include_reversed")
	if f.Limit, err = intField(req, "limit", 0); err != nil {
		return f, err
	}
	if f.Offset, err = intField(req, "offset", 0); err != nil {
		return f, err
	}
	return f, nil
}
