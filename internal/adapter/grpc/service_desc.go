package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "nestegg.v1.LedgerService"

// LedgerServiceServer is the server API for the LedgerService service.
// Every method takes and returns a google.protobuf.Struct.
type LedgerServiceServer interface {
	CreateWallet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenameWallet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteWallet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetWallet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListWallets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WalletHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordDeposit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordWithdrawal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordTransfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateGoal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateGoal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteGoal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGoal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListGoals(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GoalHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ContributeToGoal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReverseEntry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEntry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEntries(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEntryDescription(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatistics(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(LedgerServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(server, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// LedgerServiceDesc is the grpc.ServiceDesc for the LedgerService service
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateWallet", LedgerServiceServer.CreateWallet),
		unary("RenameWallet", LedgerServiceServer.RenameWallet),
		unary("DeleteWallet", LedgerServiceServer.DeleteWallet),
		unary("GetWallet", LedgerServiceServer.GetWallet),
		unary("ListWallets", LedgerServiceServer.ListWallets),
		unary("WalletHistory", LedgerServiceServer.WalletHistory),
		unary("RecordDeposit", LedgerServiceServer.RecordDeposit),
		unary("RecordWithdrawal", LedgerServiceServer.RecordWithdrawal),
		unary("RecordTransfer", LedgerServiceServer.RecordTransfer),
		unary("CreateGoal", LedgerServiceServer.CreateGoal),
		unary("UpdateGoal", LedgerServiceServer.UpdateGoal),
		unary("DeleteGoal", LedgerServiceServer.DeleteGoal),
		unary("GetGoal", LedgerServiceServer.GetGoal),
		unary("ListGoals", LedgerServiceServer.ListGoals),
		unary("GoalHistory", LedgerServiceServer.GoalHistory),
		unary("ContributeToGoal", LedgerServiceServer.ContributeToGoal),
		unary("ReverseEntry", LedgerServiceServer.ReverseEntry),
		unary("GetEntry", LedgerServiceServer.GetEntry),
		unary("ListEntries", LedgerServiceServer.ListEntries),
		unary("UpdateEntryDescription", LedgerServiceServer.UpdateEntryDescription),
		unary("GetSummary", LedgerServiceServer.GetSummary),
		unary("GetStatistics", LedgerServiceServer.GetStatistics),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nestegg/v1/ledger.proto",
}

// RegisterLedgerServiceServer registers srv on s
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}
