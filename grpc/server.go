package wastegrpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/server"
)

// Compile-time interface check.
var _ LedgerServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a waste ledger as a gRPC service. Ledger
// rejections are carried in the response Code/Info fields; only
// substrate and transport failures become gRPC errors. Calls pass
// through a Sequencer, so remote mutations obey the same global apply
// order as local ones.
type GRPCServer struct {
	seq *server.Sequencer
}

// NewGRPCServer creates a gRPC server wrapping the given ledger.
func NewGRPCServer(l wasteledger.Ledger) *GRPCServer {
	return &GRPCServer{seq: server.New(l)}
}

// Register adds the ledger service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterLedgerServiceServer(gs, s)
}

// Serve starts a gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

// Sequencer returns the underlying sequencer for advanced use.
func (s *GRPCServer) Sequencer() *server.Sequencer { return s.seq }

// verdict splits an operation result into an in-band rejection and a
// transport error. Ledger rejections ride the response; anything else
// (substrate failure, cancellation) is a real error.
func verdict(err error) (Code, string, error) {
	if err == nil {
		return uint32(wasteledger.CodeOK), "", nil
	}
	if code := wasteledger.CodeOf(err); code != wasteledger.CodeInternal {
		return uint32(code), err.Error(), nil
	}
	return 0, "", err
}

func (s *GRPCServer) RegisterEntry(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	id, err := s.seq.Register(ctx, req.Env, req.Registration)
	code, info, err := verdict(err)
	if err != nil {
		return nil, err
	}
	return &RegisterResponse{Code: code, Info: info, ID: id}, nil
}

func (s *GRPCServer) TransferOwnership(ctx context.Context, req *TransferOwnershipRequest) (*MutationResponse, error) {
	code, info, err := verdict(s.seq.TransferOwnership(ctx, req.Env, req.ID, req.NewOwner))
	if err != nil {
		return nil, err
	}
	return &MutationResponse{Code: code, Info: info}, nil
}

func (s *GRPCServer) AppendVersion(ctx context.Context, req *AppendVersionRequest) (*NumberedResponse, error) {
	n, err := s.seq.AppendVersion(ctx, req.Env, req.ID, req.Digest, req.Notes)
	code, info, err := verdict(err)
	if err != nil {
		return nil, err
	}
	return &NumberedResponse{Code: code, Info: info, Number: n}, nil
}

func (s *GRPCServer) SetCategory(ctx context.Context, req *SetCategoryRequest) (*MutationResponse, error) {
	code, info, err := verdict(s.seq.SetCategory(ctx, req.Env, req.ID, req.Label, req.Tags))
	if err != nil {
		return nil, err
	}
	return &MutationResponse{Code: code, Info: info}, nil
}

func (s *GRPCServer) AddCollaborator(ctx context.Context, req *AddCollaboratorRequest) (*MutationResponse, error) {
	code, info, err := verdict(s.seq.AddCollaborator(ctx, req.Env, req.ID, req.Collaborator, req.Role, req.Permissions))
	if err != nil {
		return nil, err
	}
	return &MutationResponse{Code: code, Info: info}, nil
}

func (s *GRPCServer) SetStatus(ctx context.Context, req *SetStatusRequest) (*MutationResponse, error) {
	code, info, err := verdict(s.seq.SetStatus(ctx, req.Env, req.ID, req.Status, req.Visible))
	if err != nil {
		return nil, err
	}
	return &MutationResponse{Code: code, Info: info}, nil
}

func (s *GRPCServer) AddNote(ctx context.Context, req *AddNoteRequest) (*NumberedResponse, error) {
	n, err := s.seq.AddNote(ctx, req.Env, req.ID, req.Text)
	code, info, err := verdict(err)
	if err != nil {
		return nil, err
	}
	return &NumberedResponse{Code: code, Info: info, Number: n}, nil
}

func (s *GRPCServer) Pause(ctx context.Context, req *PauseRequest) (*MutationResponse, error) {
	code, info, err := verdict(s.seq.Pause(ctx, req.Env))
	if err != nil {
		return nil, err
	}
	return &MutationResponse{Code: code, Info: info}, nil
}

func (s *GRPCServer) Unpause(ctx context.Context, req *PauseRequest) (*MutationResponse, error) {
	code, info, err := verdict(s.seq.Unpause(ctx, req.Env))
	if err != nil {
		return nil, err
	}
	return &MutationResponse{Code: code, Info: info}, nil
}

func (s *GRPCServer) Entry(ctx context.Context, req *EntryRequest) (*EntryResponse, error) {
	e, err := s.seq.Entry(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &EntryResponse{Entry: e}, nil
}

func (s *GRPCServer) Version(ctx context.Context, req *VersionRequest) (*VersionResponse, error) {
	v, err := s.seq.Version(ctx, req.ID, req.Number)
	if err != nil {
		return nil, err
	}
	return &VersionResponse{Version: v}, nil
}

func (s *GRPCServer) Category(ctx context.Context, req *EntryRequest) (*CategoryResponse, error) {
	ci, err := s.seq.Category(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryResponse{Category: ci}, nil
}

func (s *GRPCServer) Collaborator(ctx context.Context, req *CollaboratorRequest) (*CollaboratorResponse, error) {
	g, err := s.seq.Collaborator(ctx, req.ID, req.Collaborator)
	if err != nil {
		return nil, err
	}
	return &CollaboratorResponse{Grant: g}, nil
}

func (s *GRPCServer) Collaborators(ctx context.Context, req *EntryRequest) (*CollaboratorsResponse, error) {
	gs, err := s.seq.Collaborators(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &CollaboratorsResponse{Grants: gs}, nil
}

func (s *GRPCServer) Status(ctx context.Context, req *EntryRequest) (*StatusResponse, error) {
	si, err := s.seq.Status(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{Status: si}, nil
}

func (s *GRPCServer) Note(ctx context.Context, req *VersionRequest) (*NoteResponse, error) {
	n, err := s.seq.Note(ctx, req.ID, req.Number)
	if err != nil {
		return nil, err
	}
	return &NoteResponse{Note: n}, nil
}

func (s *GRPCServer) HasPermission(ctx context.Context, req *HasPermissionRequest) (*HasPermissionResponse, error) {
	ok, err := s.seq.HasPermission(ctx, req.ID, req.Collaborator, req.Token)
	if err != nil {
		return nil, err
	}
	return &HasPermissionResponse{Allowed: ok}, nil
}

func (s *GRPCServer) Paused(ctx context.Context, _ *PausedRequest) (*PausedResponse, error) {
	paused, err := s.seq.Paused(ctx)
	if err != nil {
		return nil, err
	}
	return &PausedResponse{Paused: paused}, nil
}
