package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/nestegg-backend/internal/identity"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger"
	"github.com/simaogato/nestegg-backend/internal/usecase/summary"
)

// Server implements the LedgerService gRPC server
type Server struct {
	Ledger  *ledger.Coordinator
	Summary *summary.SummaryService

	// SummaryMonths is the default length of the monthly breakdown
	SummaryMonths int

	now func() time.Time
}

// NewServer creates a new gRPC server instance
func NewServer(coordinator *ledger.Coordinator, summaryService *summary.SummaryService, summaryMonths int) *Server {
	return &Server{
		Ledger:        coordinator,
		Summary:       summaryService,
		SummaryMonths: summaryMonths,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func owner(ctx context.Context) (uuid.UUID, error) {
	userID, ok := identity.UserID(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing user identity")
	}
	return userID, nil
}

// CreateWallet handles the CreateWallet RPC
func (s *Server) CreateWallet(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	input := ledger.CreateWalletInput{Name: stringField(req, "name")}
	if initial, err := optionalMoney(req, "initial_amount"); err != nil {
		return nil, err
	} else if initial != nil {
		input.InitialAmount = *initial
	}

	receipt, err := s.Ledger.CreateWallet(ctx, userID, input)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{
		"wallet": walletToMap(receipt.Wallet),
		"entry":  nullableEntry(receipt.Entry),
	})
}

// RenameWallet handles the RenameWallet RPC
func (s *Server) RenameWallet(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	walletID, err := uuidField(req, "wallet_id")
	if err != nil {
		return nil, err
	}

	wallet, err := s.Ledger.RenameWallet(ctx, userID, walletID, stringField(req, "name"))
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"wallet": walletToMap(wallet)})
}

// DeleteWallet handles the DeleteWallet RPC
func (s *Server) DeleteWallet(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	walletID, err := uuidField(req, "wallet_id")
	if err != nil {
		return nil, err
	}

	if err := s.Ledger.DeleteWallet(ctx, userID, walletID); err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"deleted": true})
}

// GetWallet handles the GetWallet RPC
func (s *Server) GetWallet(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	walletID, err := uuidField(req, "wallet_id")
	if err != nil {
		return nil, err
	}

	wallet, err := s.Ledger.GetWallet(ctx, userID, walletID)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"wallet": walletToMap(wallet)})
}

// ListWallets handles the ListWallets RPC
func (s *Server) ListWallets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	wallets, err := s.Ledger.ListWallets(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]any, 0, len(wallets))
	for _, w := range wallets {
		items = append(items, walletToMap(w))
	}
	return toStruct(map[string]any{"wallets": items})
}

// WalletHistory handles the WalletHistory RPC
func (s *Server) WalletHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	walletID, err := uuidField(req, "wallet_id")
	if err != nil {
		return nil, err
	}
	limit, err := intField(req, "limit", 0)
	if err != nil {
		return nil, err
	}
	offset, err := intField(req, "offset", 0)
	if err != nil {
		return nil, err
	}

	page, err := s.Ledger.WalletHistory(ctx, userID, walletID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(pageToMap(page))
}

// RecordDeposit handles the RecordDeposit RPC
func (s *Server) RecordDeposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	var input ledger.RecordDepositInput
	if input.WalletID, err = uuidField(req, "wallet_id"); err != nil {
		return nil, err
	}
	if input.Amount, err = moneyField(req, "amount"); err != nil {
		return nil, err
	}
	if input.GoalID, err = optionalUUID(req, "goal_id"); err != nil {
		return nil, err
	}
	input.Description = stringField(req, "description")

	receipt, err := s.Ledger.RecordDeposit(ctx, userID, input)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(receiptToMap(receipt, s.now()))
}

// RecordWithdrawal handles the RecordWithdrawal RPC
func (s *Server) RecordWithdrawal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	var input ledger.RecordWithdrawalInput
	if input.WalletID, err = uuidField(req, "wallet_id"); err != nil {
		return nil, err
	}
	if input.Amount, err = moneyField(req, "amount"); err != nil {
		return nil, err
	}
	input.Description = stringField(req, "description")

	receipt, err := s.Ledger.RecordWithdrawal(ctx, userID, input)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(receiptToMap(receipt, s.now()))
}

// RecordTransfer handles the RecordTransfer RPC
func (s *Server) RecordTransfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	var input ledger.RecordTransferInput
	if input.FromWalletID, err = uuidField(req, "from_wallet_id"); err != nil {
		return nil, err
	}
	if input.ToWalletID, err = uuidField(req, "to_wallet_id"); err != nil {
		return nil, err
	}
	if input.Amount, err = moneyField(req, "amount"); err != nil {
		return nil, err
	}
	input.Description = stringField(req, "description")

	receipt, err := s.Ledger.RecordTransfer(ctx, userID, input)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(receiptToMap(receipt, s.now()))
}

// CreateGoal handles the CreateGoal RPC
func (s *Server) CreateGoal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	input := ledger.CreateGoalInput{
		Name:        stringField(req, "name"),
		Description: stringField(req, "description"),
	}
	if input.TargetAmount, err = moneyField(req, "target_amount"); err != nil {
		return nil, err
	}
	if input.PeriodDays, err = intField(req, "period_days", 0); err != nil {
		return nil, err
	}

	goal, err := s.Ledger.CreateGoal(ctx, userID, input)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"goal": goalToMap(goal, s.now())})
}

// UpdateGoal handles the UpdateGoal RPC; absent fields are left unchanged
func (s *Server) UpdateGoal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	goalID, err := uuidField(req, "goal_id")
	if err != nil {
		return nil, err
	}

	input := ledger.UpdateGoalInput{
		Name:        optionalString(req, "name"),
		Description: optionalString(req, "description"),
	}
	if input.TargetAmount, err = optionalMoney(req, "target_amount"); err != nil {
		return nil, err
	}
	if input.PeriodDays, err = optionalInt(req, "period_days"); err != nil {
		return nil, err
	}

	goal, err := s.Ledger.UpdateGoal(ctx, userID, goalID, input)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"goal": goalToMap(goal, s.now())})
}

// DeleteGoal handles the DeleteGoal RPC
func (s *Server) DeleteGoal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	goalID, err := uuidField(req, "goal_id")
	if err != nil {
		return nil, err
	}

	if err := s.Ledger.DeleteGoal(ctx, userID, goalID); err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"deleted": true})
}

// GetGoal handles the GetGoal RPC
func (s *Server) GetGoal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	goalID, err := uuidField(req, "goal_id")
	if err != nil {
		return nil, err
	}

	goal, err := s.Ledger.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"goal": goalToMap(goal, s.now())})
}

// ListGoals handles the ListGoals RPC
func (s *Server) ListGoals(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	goals, err := s.Ledger.ListGoals(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	now := s.now()
	items := make([]any, 0, len(goals))
	for _, g := range goals {
		items = append(items, goalToMap(g, now))
	}
	return toStruct(map[string]any{"goals": items})
}

// GoalHistory handles the GoalHistory RPC
func (s *Server) GoalHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	goalID, err := uuidField(req, "goal_id")
	if err != nil {
		return nil, err
	}
	limit, err := intField(req, "limit", 0)
	if err != nil {
		return nil, err
	}
	offset, err := intField(req, "offset", 0)
	if err != nil {
		return nil, err
	}

	page, err := s.Ledger.GoalHistory(ctx, userID, goalID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(pageToMap(page))
}

// ContributeToGoal handles the ContributeToGoal RPC
func (s *Server) ContributeToGoal(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	var input ledger.ContributeInput
	if input.GoalID, err = uuidField(req, "goal_id"); err != nil {
		return nil, err
	}
	if input.WalletID, err = uuidField(req, "wallet_id"); err != nil {
		return nil, err
	}
	if input.Amount, err = moneyField(req, "amount"); err != nil {
		return nil, err
	}
	input.Description = stringField(req, "description")

	receipt, err := s.Ledger.ContributeToGoal(ctx, userID, input)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(receiptToMap(receipt, s.now()))
}

// ReverseEntry handles the ReverseEntry RPC
func (s *Server) ReverseEntry(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	entryID, err := uuidField(req, "entry_id")
	if err != nil {
		return nil, err
	}

	receipt, err := s.Ledger.ReverseEntry(ctx, userID, entryID)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(receiptToMap(receipt, s.now()))
}

// GetEntry handles the GetEntry RPC
func (s *Server) GetEntry(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	entryID, err := uuidField(req, "entry_id")
	if err != nil {
		return nil, err
	}

	entry, err := s.Ledger.GetEntry(ctx, userID, entryID)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"entry": entryToMap(entry)})
}

// ListEntries handles the ListEntries RPC
func (s *Server) ListEntries(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := entryFilter(req)
	if err != nil {
		return nil, err
	}

	page, err := s.Ledger.ListEntries(ctx, userID, filter)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(pageToMap(page))
}

// UpdateEntryDescription handles the UpdateEntryDescription RPC
func (s *Server) UpdateEntryDescription(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	entryID, err := uuidField(req, "entry_id")
	if err != nil {
		return nil, err
	}

	entry, err := s.Ledger.UpdateEntryDescription(ctx, userID, entryID, stringField(req, "description"))
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"entry": entryToMap(entry)})
}

// GetSummary handles the GetSummary RPC
func (s *Server) GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	months, err := intField(req, "months", s.SummaryMonths)
	if err != nil {
		return nil, err
	}

	result, err := s.Summary.Summary(ctx, userID, s.now(), months)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(summaryToMap(result))
}

// GetStatistics handles the GetStatistics RPC
func (s *Server) GetStatistics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	period, err := summary.ParsePeriod(stringField(req, "period"))
	if err != nil {
		return nil, mapError(err)
	}

	result, err := s.Summary.Statistics(ctx, userID, s.now(), period)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(statisticsToMap(result))
}
