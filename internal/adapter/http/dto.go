package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger"
	"github.com/simaogato/nestegg-backend/internal/usecase/summary"
)

// Money fields marshal as decimal strings (see domain.Money.MarshalJSON)

type walletResponse struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Balance   domain.Money `json:"balance"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type goalResponse struct {
	ID                 uuid.UUID    `json:"id"`
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	TargetAmount       domain.Money `json:"target_amount"`
	CurrentAmount      domain.Money `json:"current_amount"`
	RemainingAmount    domain.Money `json:"remaining_amount"`
	PeriodDays         int          `json:"period_days"`
	StartDate          time.Time    `json:"start_date"`
	EndDate            *time.Time   `json:"end_date"`
	Achieved           bool         `json:"achieved"`
	ProgressPercentage float64      `json:"progress_percentage"`
	IsExpired          bool         `json:"is_expired"`
	DaysRemaining      *int         `json:"days_remaining"`
	DailySavingsNeeded domain.Money `json:"daily_savings_needed"`
	Overdue            bool         `json:"overdue"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

type entryResponse struct {
	ID                   uuid.UUID        `json:"id"`
	WalletID             uuid.UUID        `json:"wallet_id"`
	GoalID               *uuid.UUID       `json:"goal_id"`
	CounterpartyWalletID *uuid.UUID       `json:"counterparty_wallet_id"`
	Amount               domain.Money     `json:"amount"`
	Kind                 domain.EntryKind `json:"kind"`
	Description          string           `json:"description"`
	CreatedAt            time.Time        `json:"created_at"`
	ReversedAt           *time.Time       `json:"reversed_at"`
	Reversed             bool             `json:"reversed"`
}

type receiptResponse struct {
	Entry        *entryResponse  `json:"entry"`
	Wallet       *walletResponse `json:"wallet"`
	Counterparty *walletResponse `json:"counterparty,omitempty"`
	Goal         *goalResponse   `json:"goal,omitempty"`
}

type entryPageResponse struct {
	Entries []*entryResponse `json:"entries"`
	Total   int              `json:"total"`
}

type monthResponse struct {
	Month       string       `json:"month"`
	Deposits    domain.Money `json:"deposits"`
	Withdrawals domain.Money `json:"withdrawals"`
	Net         domain.Money `json:"net"`
}

type summaryResponse struct {
	TotalDeposits          domain.Money     `json:"total_deposits"`
	TotalWithdrawals       domain.Money     `json:"total_withdrawals"`
	TotalGoalContributions domain.Money     `json:"total_goal_contributions"`
	TotalTransfers         domain.Money     `json:"total_transfers"`
	CurrentBalance         domain.Money     `json:"current_balance"`
	NetSavings             domain.Money     `json:"net_savings"`
	RecentEntries          []*entryResponse `json:"recent_entries"`
	Monthly                []monthResponse  `json:"monthly"`
}

type statisticsResponse struct {
	Period            string         `json:"period"`
	Since             *time.Time     `json:"since"`
	TotalDeposits     domain.Money   `json:"total_deposits"`
	TotalWithdrawals  domain.Money   `json:"total_withdrawals"`
	NetSavings        domain.Money   `json:"net_savings"`
	DepositCount      int            `json:"deposit_count"`
	WithdrawalCount   int            `json:"withdrawal_count"`
	AverageDeposit    domain.Money   `json:"average_deposit"`
	AverageWithdrawal domain.Money   `json:"average_withdrawal"`
	LargestDeposit    *entryResponse `json:"largest_deposit"`
	LargestWithdrawal *entryResponse `json:"largest_withdrawal"`
}

func toWallet(w *domain.Wallet) *walletResponse {
	if w == nil {
		return nil
	}
	return &walletResponse{ID: w.ID, Name: w.Name, Balance: w.Balance, CreatedAt: w.CreatedAt, UpdatedAt: w.UpdatedAt}
}

func toGoal(g *domain.Goal, now time.Time) *goalResponse {
	if g == nil {
		return nil
	}
	resp := &goalResponse{
		ID:                 g.ID,
		Name:               g.Name,
		Description:        g.Description,
		TargetAmount:       g.TargetAmount,
		CurrentAmount:      g.CurrentAmount,
		RemainingAmount:    g.RemainingAmount(),
		PeriodDays:         g.PeriodDays,
		StartDate:          g.StartDate,
		EndDate:            g.EndDate,
		Achieved:           g.Achieved,
		ProgressPercentage: g.ProgressPercentage(),
		IsExpired:          g.IsExpired(now),
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
	if days, ok := g.DaysRemaining(now); ok {
		resp.DaysRemaining = &days
	}
	resp.DailySavingsNeeded, resp.Overdue = g.DailySavingsNeeded(now)
	return resp
}

func toEntry(e *domain.Entry) *entryResponse {
	if e == nil {
		return nil
	}
	return &entryResponse{
		ID:                   e.ID,
		WalletID:             e.WalletID,
		GoalID:               e.GoalID,
		CounterpartyWalletID: e.CounterpartyWalletID,
		Amount:               e.Amount,
		Kind:                 e.Kind,
		Description:          e.Description,
		CreatedAt:            e.CreatedAt,
		ReversedAt:           e.ReversedAt,
		Reversed:             e.IsReversed(),
	}
}

func toEntries(entries []*domain.Entry) []*entryResponse {
	out := make([]*entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntry(e))
	}
	return out
}

func toReceipt(r *ledger.Receipt, now time.Time) *receiptResponse {
	return &receiptResponse{
		Entry:        toEntry(r.Entry),
		Wallet:       toWallet(r.Wallet),
		Counterparty: toWallet(r.Counterparty),
		Goal:         toGoal(r.Goal, now),
	}
}

func toPage(p *ledger.EntryPage) *entryPageResponse {
	return &entryPageResponse{Entries: toEntries(p.Entries), Total: p.Total}
}

func toSummary(r *summary.SummaryResult) *summaryResponse {
	resp := &summaryResponse{
		TotalDeposits:          r.TotalDeposits,
		TotalWithdrawals:       r.TotalWithdrawals,
		TotalGoalContributions: r.TotalGoalContributions,
		TotalTransfers:         r.TotalTransfers,
		CurrentBalance:         r.CurrentBalance,
		NetSavings:             r.NetSavings,
		RecentEntries:          toEntries(r.RecentEntries),
		Monthly:                make([]monthResponse, 0, len(r.Monthly)),
	}
	for _, m := range r.Monthly {
		resp.Monthly = append(resp.Monthly, monthResponse{Month: m.Month, Deposits: m.Deposits, Withdrawals: m.Withdrawals, Net: m.Net})
	}
	return resp
}

func toStatistics(r *summary.StatisticsResult) *statisticsResponse {
	period := string(r.Period)
	if period == "" {
		period = "all"
	}
	return &statisticsResponse{
		Period:            period,
		Since:             r.Since,
		TotalDeposits:     r.TotalDeposits,
		TotalWithdrawals:  r.TotalWithdrawals,
		NetSavings:        r.NetSavings,
		DepositCount:      r.DepositCount,
		WithdrawalCount:   r.WithdrawalCount,
		AverageDeposit:    r.AverageDeposit,
		AverageWithdrawal: r.AverageWithdrawal,
		LargestDeposit:    toEntry(r.LargestDeposit),
		LargestWithdrawal: toEntry(r.LargestWithdrawal),
	}
}
