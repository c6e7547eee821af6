package wastegrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/types"
)

// Compile-time interface check.
var _ wasteledger.Connection = (*Client)(nil)

// Client implements wasteledger.Connection for a remote ledger over
// gRPC with cramberry serialization. In-band rejection codes are
// reconstructed into the same typed *Error the core returns, so
// errors.Is works identically on both sides of the wire.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a remote waste ledger.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("wasteledger client: dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// rejection converts an in-band code back into a typed error.
func rejection(code Code, info string) error {
	if code == uint32(wasteledger.CodeOK) {
		return nil
	}
	return &wasteledger.Error{Code: wasteledger.Code(code), Detail: info}
}

func (c *Client) Register(ctx context.Context, env types.Env, reg types.Registration) (types.EntryID, error) {
	req := &RegisterRequest{Env: env, Registration: reg}
	resp := new(RegisterResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Register"), req, resp); err != nil {
		return 0, err
	}
	if err := rejection(resp.Code, resp.Info); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) TransferOwnership(ctx context.Context, env types.Env, id types.EntryID, newOwner types.Identity) error {
	req := &TransferOwnershipRequest{Env: env, ID: id, NewOwner: newOwner}
	resp := new(MutationResponse)
	if err := c.cc.Invoke(ctx, fullMethod("TransferOwnership"), req, resp); err != nil {
		return err
	}
	return rejection(resp.Code, resp.Info)
}

func (c *Client) AppendVersion(ctx context.Context, env types.Env, id types.EntryID, digest types.Digest, notes string) (uint32, error) {
	req := &AppendVersionRequest{Env: env, ID: id, Digest: digest, Notes: notes}
	resp := new(NumberedResponse)
	if err := c.cc.Invoke(ctx, fullMethod("AppendVersion"), req, resp); err != nil {
		return 0, err
	}
	if err := rejection(resp.Code, resp.Info); err != nil {
		return 0, err
	}
	return resp.Number, nil
}

func (c *Client) SetCategory(ctx context.Context, env types.Env, id types.EntryID, label string, tags []string) error {
	req := &SetCategoryRequest{Env: env, ID: id, Label: label, Tags: tags}
	resp := new(MutationResponse)
	if err := c.cc.Invoke(ctx, fullMethod("SetCategory"), req, resp); err != nil {
		return err
	}
	return rejection(resp.Code, resp.Info)
}

func (c *Client) AddCollaborator(ctx context.Context, env types.Env, id types.EntryID, collaborator types.Identity, role string, permissions []string) error {
	req := &AddCollaboratorRequest{Env: env, ID: id, Collaborator: collaborator, Role: role, Permissions: permissions}
	resp := new(MutationResponse)
	if err := c.cc.Invoke(ctx, fullMethod("AddCollaborator"), req, resp); err != nil {
		return err
	}
	return rejection(resp.Code, resp.Info)
}

func (c *Client) SetStatus(ctx context.Context, env types.Env, id types.EntryID, status string, visible bool) error {
	req := &SetStatusRequest{Env: env, ID: id, Status: status, Visible: visible}
	resp := new(MutationResponse)
	if err := c.cc.Invoke(ctx, fullMethod("SetStatus"), req, resp); err != nil {
		return err
	}
	return rejection(resp.Code, resp.Info)
}

func (c *Client) AddNote(ctx context.Context, env types.Env, id types.EntryID, text string) (uint32, error) {
	req := &AddNoteRequest{Env: env, ID: id, Text: text}
	resp := new(NumberedResponse)
	if err := c.cc.Invoke(ctx, fullMethod("AddNote"), req, resp); err != nil {
		return 0, err
	}
	if err := rejection(resp.Code, resp.Info); err != nil {
		return 0, err
	}
	return resp.Number, nil
}

func (c *Client) Pause(ctx context.Context, env types.Env) error {
	req := &PauseRequest{Env: env}
	resp := new(MutationResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Pause"), req, resp); err != nil {
		return err
	}
	return rejection(resp.Code, resp.Info)
}

func (c *Client) Unpause(ctx context.Context, env types.Env) error {
	req := &PauseRequest{Env: env}
	resp := new(MutationResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Unpause"), req, resp); err != nil {
		return err
	}
	return rejection(resp.Code, resp.Info)
}

func (c *Client) Entry(ctx context.Context, id types.EntryID) (*types.WasteEntry, error) {
	resp := new(EntryResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Entry"), &EntryRequest{ID: id}, resp); err != nil {
		return nil, err
	}
	return resp.Entry, nil
}

func (c *Client) Version(ctx context.Context, id types.EntryID, number uint32) (*types.VersionRecord, error) {
	resp := new(VersionResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Version"), &VersionRequest{ID: id, Number: number}, resp); err != nil {
		return nil, err
	}
	return resp.Version, nil
}

func (c *Client) Category(ctx context.Context, id types.EntryID) (*types.CategoryInfo, error) {
	resp := new(CategoryResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Category"), &EntryRequest{ID: id}, resp); err != nil {
		return nil, err
	}
	return resp.Category, nil
}

func (c *Client) Collaborator(ctx context.Context, id types.EntryID, collaborator types.Identity) (*types.CollaboratorGrant, error) {
	resp := new(CollaboratorResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Collaborator"), &CollaboratorRequest{ID: id, Collaborator: collaborator}, resp); err != nil {
		return nil, err
	}
	return resp.Grant, nil
}

func (c *Client) Collaborators(ctx context.Context, id types.EntryID) ([]types.CollaboratorGrant, error) {
	resp := new(CollaboratorsResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Collaborators"), &EntryRequest{ID: id}, resp); err != nil {
		return nil, err
	}
	return resp.Grants, nil
}

func (c *Client) Status(ctx context.Context, id types.EntryID) (*types.StatusInfo, error) {
	resp := new(StatusResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Status"), &EntryRequest{ID: id}, resp); err != nil {
		return nil, err
	}
	return resp.Status, nil
}

func (c *Client) Note(ctx context.Context, id types.EntryID, number uint32) (*types.ComplianceNote, error) {
	resp := new(NoteResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Note"), &VersionRequest{ID: id, Number: number}, resp); err != nil {
		return nil, err
	}
	return resp.Note, nil
}

func (c *Client) HasPermission(ctx context.Context, id types.EntryID, collaborator types.Identity, token string) (bool, error) {
	req := &HasPermissionRequest{ID: id, Collaborator: collaborator, Token: token}
	resp := new(HasPermissionResponse)
	if err := c.cc.Invoke(ctx, fullMethod("HasPermission"), req, resp); err != nil {
		return false, err
	}
	return resp.Allowed, nil
}

func (c *Client) Paused(ctx context.Context) (bool, error) {
	resp := new(PausedResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Paused"), &PausedRequest{}, resp); err != nil {
		return false, err
	}
	return resp.Paused, nil
}
