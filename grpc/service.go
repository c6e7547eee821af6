package wastegrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

const serviceName = "github.com/blockberries/wasteledger.v1.LedgerService"

// LedgerServiceServer is the server-side interface for the waste
// ledger gRPC service.
type LedgerServiceServer interface {
	RegisterEntry(context.Context, *RegisterRequest) (*RegisterResponse, error)
	TransferOwnership(context.Context, *TransferOwnershipRequest) (*MutationResponse, error)
	AppendVersion(context.Context, *AppendVersionRequest) (*NumberedResponse, error)
	SetCategory(context.Context, *SetCategoryRequest) (*MutationResponse, error)
	AddCollaborator(context.Context, *AddCollaboratorRequest) (*MutationResponse, error)
	SetStatus(context.Context, *SetStatusRequest) (*MutationResponse, error)
	AddNote(context.Context, *AddNoteRequest) (*NumberedResponse, error)
	Pause(context.Context, *PauseRequest) (*MutationResponse, error)
	Unpause(context.Context, *PauseRequest) (*MutationResponse, error)

	Entry(context.Context, *EntryRequest) (*EntryResponse, error)
	Version(context.Context, *VersionRequest) (*VersionResponse, error)
	Category(context.Context, *EntryRequest) (*CategoryResponse, error)
	Collaborator(context.Context, *CollaboratorRequest) (*CollaboratorResponse, error)
	Collaborators(context.Context, *EntryRequest) (*CollaboratorsResponse, error)
	Status(context.Context, *EntryRequest) (*StatusResponse, error)
	Note(context.Context, *VersionRequest) (*NoteResponse, error)
	HasPermission(context.Context, *HasPermissionRequest) (*HasPermissionResponse, error)
	Paused(context.Context, *PausedRequest) (*PausedResponse, error)
}

// RegisterLedgerServiceServer registers the LedgerServiceServer on a
// gRPC server.
func RegisterLedgerServiceServer(s *grpc.Server, srv LedgerServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// unary builds a grpc.MethodDesc handler around a typed method. For
// manually registered services grpc-go hands the server's configured
// unary interceptor to the handler instead of running it itself, so
// the handler must thread the call through it.
func unary[Req, Resp any](name string, call func(LedgerServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(name),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor for the waste
// ledger.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary("Register", LedgerServiceServer.RegisterEntry)},
		{MethodName: "TransferOwnership", Handler: unary("TransferOwnership", LedgerServiceServer.TransferOwnership)},
		{MethodName: "AppendVersion", Handler: unary("AppendVersion", LedgerServiceServer.AppendVersion)},
		{MethodName: "SetCategory", Handler: unary("SetCategory", LedgerServiceServer.SetCategory)},
		{MethodName: "AddCollaborator", Handler: unary("AddCollaborator", LedgerServiceServer.AddCollaborator)},
		{MethodName: "SetStatus", Handler: unary("SetStatus", LedgerServiceServer.SetStatus)},
		{MethodName: "AddNote", Handler: unary("AddNote", LedgerServiceServer.AddNote)},
		{MethodName: "Pause", Handler: unary("Pause", LedgerServiceServer.Pause)},
		{MethodName: "Unpause", Handler: unary("Unpause", LedgerServiceServer.Unpause)},
		{MethodName: "Entry", Handler: unary("Entry", LedgerServiceServer.Entry)},
		{MethodName: "Version", Handler: unary("Version", LedgerServiceServer.Version)},
		{MethodName: "Category", Handler: unary("Category", LedgerServiceServer.Category)},
		{MethodName: "Collaborator", Handler: unary("Collaborator", LedgerServiceServer.Collaborator)},
		{MethodName: "Collaborators", Handler: unary("Collaborators", LedgerServiceServer.Collaborators)},
		{MethodName: "Status", Handler: unary("Status", LedgerServiceServer.Status)},
		{MethodName: "Note", Handler: unary("Note", LedgerServiceServer.Note)},
		{MethodName: "HasPermission", Handler: unary("HasPermission", LedgerServiceServer.HasPermission)},
		{MethodName: "Paused", Handler: unary("Paused", LedgerServiceServer.Paused)},
	},
	Metadata: "github.com/blockberries/wasteledger/v1/service.cram",
}
