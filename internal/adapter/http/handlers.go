package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/identity"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger"
	"github.com/simaogato/nestegg-backend/internal/usecase/summary"
)

// Handler serves the ledger over JSON/HTTP
type Handler struct {
	ledger        *ledger.Coordinator
	summary       *summary.SummaryService
	summaryMonths int
	logger        logrus.FieldLogger
	now           func() time.Time
}

// NewHandler creates a new HTTP handler set
func NewHandler(coordinator *ledger.Coordinator, summaryService *summary.SummaryService, summaryMonths int, logger logrus.FieldLogger) *Handler {
	return &Handler{
		ledger:        coordinator,
		summary:       summaryService,
		summaryMonths: summaryMonths,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type createWalletRequest struct {
	Name          string        `json:"name"`
	InitialAmount *domain.Money `json:"initial_amount"`
}

type renameWalletRequest struct {
	Name string `json:"name"`
}

type amountRequest struct {
	Amount      *domain.Money `json:"amount"`
	GoalID      *uuid.UUID    `json:"goal_id"`
	Description string        `json:"description"`
}

type contributeRequest struct {
	WalletID    uuid.UUID     `json:"wallet_id"`
	Amount      *domain.Money `json:"amount"`
	Description string        `json:"description"`
}

type transferRequest struct {
	FromWalletID uuid.UUID     `json:"from_wallet_id"`
	ToWalletID   uuid.UUID     `json:"to_wallet_id"`
	Amount       *domain.Money `json:"amount"`
	Description  string        `json:"description"`
}

type createGoalRequest struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	TargetAmount *domain.Money `json:"target_amount"`
	PeriodDays   int           `json:"period_days"`
}

type updateGoalRequest struct {
	Name         *string       `json:"name"`
	Description  *string       `json:"description"`
	TargetAmount *domain.Money `json:"target_amount"`
	PeriodDays   *int          `json:"period_days"`
}

type descriptionRequest struct {
	Description string `json:"description"`
}

func requireAmount(m *domain.Money, field string) (domain.Money, error) {
	if m == nil {
		return domain.Money{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidAmount, field)
	}
	return *m, nil
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := identity.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing user identity"})
		return uuid.Nil, false
	}
	return userID, true
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateWallet handles POST /wallets
func (h *Handler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var req createWalletRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	input := ledger.CreateWalletInput{Name: req.Name}
	if req.InitialAmount != nil {
		input.InitialAmount = *req.InitialAmount
	}
	receipt, err := h.ledger.CreateWallet(r.Context(), userID, input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceipt(receipt, h.now()))
}

// ListWallets handles GET /wallets
func (h *Handler) ListWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	wallets, err := h.ledger.ListWallets(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	out := make([]*walletResponse, 0, len(wallets))
	for _, wallet := range wallets {
		out = append(out, toWallet(wallet))
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallets": out})
}

// GetWallet handles GET /wallets/{id}
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	walletID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	wallet, err := h.ledger.GetWallet(r.Context(), userID, walletID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toWallet(wallet))
}

// RenameWallet handles PATCH /wallets/{id}
func (h *Handler) RenameWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	walletID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req renameWalletRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	wallet, err := h.ledger.RenameWallet(r.Context(), userID, walletID, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toWallet(wallet))
}

// DeleteWallet handles DELETE /wallets/{id}
func (h *Handler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	walletID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.ledger.DeleteWallet(r.Context(), userID, walletID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WalletHistory handles GET /wallets/{id}/entries
func (h *Handler) WalletHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	walletID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	page, err := h.ledger.WalletHistory(r.Context(), userID, walletID, limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPage(page))
}

// RecordDeposit handles POST /wallets/{id}/deposits
func (h *Handler) RecordDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	walletID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req amountRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	amount, err := requireAmount(req.Amount, "amount")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	receipt, err := h.ledger.RecordDeposit(r.Context(), userID, ledger.RecordDepositInput{
		WalletID:    walletID,
		Amount:      amount,
		GoalID:      req.GoalID,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceipt(receipt, h.now()))
}

// RecordWithdrawal handles POST /wallets/{id}/withdrawals
func (h *Handler) RecordWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	walletID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req amountRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.GoalID != nil {
		writeError(w, h.logger, fmt.Errorf("%w: withdrawals cannot reference a goal", domain.ErrInvalidInput))
		return
	}
	amount, err := requireAmount(req.Amount, "amount")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	receipt, err := h.ledger.RecordWithdrawal(r.Context(), userID, ledger.RecordWithdrawalInput{
		WalletID:    walletID,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceipt(receipt, h.now()))
}

// RecordTransfer handles POST /transfers
func (h *Handler) RecordTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	amount, err := requireAmount(req.Amount, "amount")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	receipt, err := h.ledger.RecordTransfer(r.Context(), userID, ledger.RecordTransferInput{
		FromWalletID: req.FromWalletID,
		ToWalletID:   req.ToWalletID,
		Amount:       amount,
		Description:  req.Description,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceipt(receipt, h.now()))
}

// CreateGoal handles POST /goals
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var req createGoalRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	target, err := requireAmount(req.TargetAmount, "target_amount")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	goal, err := h.ledger.CreateGoal(r.Context(), userID, ledger.CreateGoalInput{
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: target,
		PeriodDays:   req.PeriodDays,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoal(goal, h.now()))
}

// ListGoals handles GET /goals
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	goals, err := h.ledger.ListGoals(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	now := h.now()
	out := make([]*goalResponse, 0, len(goals))
	for _, goal := range goals {
		out = append(out, toGoal(goal, now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

// GetGoal handles GET /goals/{id}
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	goalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	goal, err := h.ledger.GetGoal(r.Context(), userID, goalID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoal(goal, h.now()))
}

// UpdateGoal handles PATCH /goals/{id}
func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	goalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req updateGoalRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	goal, err := h.ledger.UpdateGoal(r.Context(), userID, goalID, ledger.UpdateGoalInput{
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		PeriodDays:   req.PeriodDays,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoal(goal, h.now()))
}

// DeleteGoal handles DELETE /goals/{id}
func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	goalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.ledger.DeleteGoal(r.Context(), userID, goalID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GoalHistory handles GET /goals/{id}/entries
func (h *Handler) GoalHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	goalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	page, err := h.ledger.GoalHistory(r.Context(), userID, goalID, limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPage(page))
}

// ContributeToGoal handles POST /goals/{id}/contributions
func (h *Handler) ContributeToGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	goalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req contributeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	amount, err := requireAmount(req.Amount, "amount")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	receipt, err := h.ledger.ContributeToGoal(r.Context(), userID, ledger.ContributeInput{
		GoalID:      goalID,
		WalletID:    req.WalletID,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceipt(receipt, h.now()))
}

// ListEntries handles GET /entries
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	filter, err := entryFilter(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	page, err := h.ledger.ListEntries(r.Context(), userID, filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPage(page))
}

// GetEntry handles GET /entries/{id}
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	entryID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	entry, err := h.ledger.GetEntry(r.Context(), userID, entryID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntry(entry))
}

// UpdateEntryDescription handles PATCH /entries/{id}
func (h *Handler) UpdateEntryDescription(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	entryID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req descriptionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	entry, err := h.ledger.UpdateEntryDescription(r.Context(), userID, entryID, req.Description)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntry(entry))
}

// ReverseEntry handles POST /entries/{id}/reverse
func (h *Handler) ReverseEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	entryID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	receipt, err := h.ledger.ReverseEntry(r.Context(), userID, entryID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceipt(receipt, h.now()))
}

// Summary handles GET /summary?months=N
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	months, err := queryInt(r, "months", h.summaryMonths)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.summary.Summary(r.Context(), userID, h.now(), months)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(result))
}

// Statistics handles GET /statistics?period=week|month|year|all
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}
	period, err := summary.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.summary.Statistics(r.Context(), userID, h.now(), period)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatistics(result))
}

func pagination(r *http.Request) (limit, offset int, err error) {
	if limit, err = queryInt(r, "limit", 0); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(r, "offset", 0); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
