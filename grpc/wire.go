package wastegrpc

import "github.com/blockberries/wasteledger/types"

// Transport-specific request/response types. Mutation responses carry
// the ledger rejection code and detail inline, so typed rejections
// survive the wire: a non-zero Code reconstructs the same *Error the
// core returned. Transport and substrate failures travel as gRPC
// errors instead.

// Code mirrors wasteledger.Code across the wire.
type Code = uint32

// RegisterRequest wraps the parameters for Ledger.Register.
type RegisterRequest struct {
	Env          types.Env          `cramberry:"1"`
	Registration types.Registration `cramberry:"2"`
}

// RegisterResponse carries the allocated entry id on success.
type RegisterResponse struct {
	Code Code          `cramberry:"1"`
	Info string        `cramberry:"2"`
	ID   types.EntryID `cramberry:"3"`
}

// TransferOwnershipRequest wraps the parameters for Ledger.TransferOwnership.
type TransferOwnershipRequest struct {
	Env      types.Env      `cramberry:"1"`
	ID       types.EntryID  `cramberry:"2"`
	NewOwner types.Identity `cramberry:"3"`
}

// AppendVersionRequest wraps the parameters for Ledger.AppendVersion.
type AppendVersionRequest struct {
	Env    types.Env     `cramberry:"1"`
	ID     types.EntryID `cramberry:"2"`
	Digest types.Digest  `cramberry:"3"`
	Notes  string        `cramberry:"4"`
}

// SetCategoryRequest wraps the parameters for Ledger.SetCategory.
type SetCategoryRequest struct {
	Env   types.Env     `cramberry:"1"`
	ID    types.EntryID `cramberry:"2"`
	Label string        `cramberry:"3"`
	Tags  []string      `cramberry:"4"`
}

// AddCollaboratorRequest wraps the parameters for Ledger.AddCollaborator.
type AddCollaboratorRequest struct {
	Env          types.Env      `cramberry:"1"`
	ID           types.EntryID  `cramberry:"2"`
	Collaborator types.Identity `cramberry:"3"`
	Role         string         `cramberry:"4"`
	Permissions  []string       `cramberry:"5"`
}

// SetStatusRequest wraps the parameters for Ledger.SetStatus.
type SetStatusRequest struct {
	Env     types.Env     `cramberry:"1"`
	ID      types.EntryID `cramberry:"2"`
	Status  string        `cramberry:"3"`
	Visible bool          `cramberry:"4"`
}

// AddNoteRequest wraps the parameters for Ledger.AddNote.
type AddNoteRequest struct {
	Env  types.Env     `cramberry:"1"`
	ID   types.EntryID `cramberry:"2"`
	Text string        `cramberry:"3"`
}

// PauseRequest wraps the parameters for Ledger.Pause and
// Ledger.Unpause.
type PauseRequest struct {
	Env types.Env `cramberry:"1"`
}

// MutationResponse is the result of a mutation that returns no value.
type MutationResponse struct {
	Code Code   `cramberry:"1"`
	Info string `cramberry:"2"`
}

// NumberedResponse is the result of AppendVersion and AddNote,
// carrying the allocated sequence number on success.
type NumberedResponse struct {
	Code   Code   `cramberry:"1"`
	Info   string `cramberry:"2"`
	Number uint32 `cramberry:"3"`
}

// --- Read wire types. Absent records travel as nil pointers. ---

// EntryRequest selects an entry by id.
type EntryRequest struct {
	ID types.EntryID `cramberry:"1"`
}

// EntryResponse carries the entry, or nil if absent.
type EntryResponse struct {
	Entry *types.WasteEntry `cramberry:"1"`
}

// VersionRequest selects one version record.
type VersionRequest struct {
	ID     types.EntryID `cramberry:"1"`
	Number uint32        `cramberry:"2"`
}

// VersionResponse carries the version record, or nil if absent.
type VersionResponse struct {
	Version *types.VersionRecord `cramberry:"1"`
}

// CategoryResponse carries the category info, or nil if never set.
type CategoryResponse struct {
	Category *types.CategoryInfo `cramberry:"1"`
}

// CollaboratorRequest selects one grant.
type CollaboratorRequest struct {
	ID           types.EntryID  `cramberry:"1"`
	Collaborator types.Identity `cramberry:"2"`
}

// CollaboratorResponse carries the grant, or nil if absent.
type CollaboratorResponse struct {
	Grant *types.CollaboratorGrant `cramberry:"1"`
}

// CollaboratorsResponse carries all live grants in join order.
type CollaboratorsResponse struct {
	Grants []types.CollaboratorGrant `cramberry:"1"`
}

// StatusResponse carries the status info, or nil if absent.
type StatusResponse struct {
	Status *types.StatusInfo `cramberry:"1"`
}

// NoteResponse carries the compliance note, or nil if absent.
type NoteResponse struct {
	Note *types.ComplianceNote `cramberry:"1"`
}

// HasPermissionRequest wraps the parameters for Reader.HasPermission.
type HasPermissionRequest struct {
	ID           types.EntryID  `cramberry:"1"`
	Collaborator types.Identity `cramberry:"2"`
	Token        string         `cramberry:"3"`
}

// HasPermissionResponse carries the membership test result.
type HasPermissionResponse struct {
	Allowed bool `cramberry:"1"`
}

// PausedRequest is the (empty) request for Reader.Paused.
type PausedRequest struct{}

// PausedResponse carries the gate state.
type PausedResponse struct {
	Paused bool `cramberry:"1"`
}
