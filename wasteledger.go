// Package wasteledger defines the Waste Ledger — a tamper-evident
// record store for the lifecycle of discrete waste entries:
// registration, content versioning, categorization, role-scoped
// collaboration, status transitions, and append-only compliance
// annotations.
//
// The core [Ledger] interface is the complete public surface. The
// ledger consumes three things from its host environment: an opaque,
// strictly non-decreasing ordering counter supplied per call (see
// [types.Env]), an already-authenticated caller identity, and a
// durable persistence substrate with atomic per-call commit (see the
// store package). It never computes hashes, never inspects digests,
// and never authenticates anyone.
package wasteledger

import (
	"context"

	"github.com/blockberries/wasteledger/types"
)

// Ledger is the complete operation surface of the waste ledger.
//
// Mutating operations follow a fixed gate order: the pause switch is
// consulted first, then access control, then field-level validation,
// and only then does the mutation commit — atomically, all or
// nothing. Reads bypass both the pause switch and access control;
// every read is public.
//
// The host must apply mutations in a single global sequential order
// (the server package provides a Sequencer that enforces this).
// Reads are safe for concurrent use and observe the last committed
// mutation.
type Ledger interface {
	// Register creates a new waste entry owned by the caller and
	// initializes its status to ("generated", visible). The returned
	// id is dense and monotonic, starting at 1; a rejected call
	// never burns an id.
	Register(ctx context.Context, env types.Env, reg types.Registration) (types.EntryID, error)

	// TransferOwnership replaces the entry's owner. Only the current
	// owner may transfer; every other field, including history, is
	// untouched.
	TransferOwnership(ctx context.Context, env types.Env, id types.EntryID, newOwner types.Identity) error

	// AppendVersion appends an updated content digest to the entry's
	// version log and returns the new version number. Version
	// numbers form a gapless sequence 1..k, bounded by
	// Limits.MaxVersions. Owner only.
	AppendVersion(ctx context.Context, env types.Env, id types.EntryID, digest types.Digest, notes string) (uint32, error)

	// SetCategory replaces the entry's category label and tag set
	// wholesale. Tag validation short-circuits: the first empty tag
	// aborts the whole write. Owner only.
	SetCategory(ctx context.Context, env types.Env, id types.EntryID, label string, tags []string) error

	// AddCollaborator stores or overwrites the grant for
	// (entry, collaborator). A repeat grant to the same identity
	// replaces the prior grant in place and does not consume a new
	// slot; distinct collaborators are bounded by
	// Limits.MaxCollaborators. Owner only.
	AddCollaborator(ctx context.Context, env types.Env, id types.EntryID, collaborator types.Identity, role string, permissions []string) error

	// SetStatus fully replaces the entry's status and visibility.
	// Prior status is discarded, not versioned. Owner only.
	SetStatus(ctx context.Context, env types.Env, id types.EntryID, status string, visible bool) error

	// AddNote appends an immutable compliance note and returns its
	// number. Allowed for the owner, or for a collaborator whose
	// grant carries the "add-note" permission token. There is no
	// edit or delete path.
	AddNote(ctx context.Context, env types.Env, id types.EntryID, text string) (uint32, error)

	// Pause engages the process-wide gate, rejecting all mutating
	// operations until Unpause. Administrator only; pausing an
	// already-paused ledger fails.
	Pause(ctx context.Context, env types.Env) error

	// Unpause disengages the gate. Administrator only; unpausing a
	// ledger that is not paused fails.
	Unpause(ctx context.Context, env types.Env) error

	Reader
}

// Reader is the public read surface. All reads return (nil, nil) for
// absent records rather than an error; errors signal substrate
// failures only.
type Reader interface {
	// Entry returns the waste entry, or nil if no such entry exists.
	Entry(ctx context.Context, id types.EntryID) (*types.WasteEntry, error)

	// Version returns one version record by number, or nil.
	Version(ctx context.Context, id types.EntryID, number uint32) (*types.VersionRecord, error)

	// Category returns the entry's current category info, or nil if
	// the category was never set.
	Category(ctx context.Context, id types.EntryID) (*types.CategoryInfo, error)

	// Collaborator returns the live grant for the given identity, or nil.
	Collaborator(ctx context.Context, id types.EntryID, collaborator types.Identity) (*types.CollaboratorGrant, error)

	// Collaborators returns all live grants for the entry in join order.
	Collaborators(ctx context.Context, id types.EntryID) ([]types.CollaboratorGrant, error)

	// Status returns the entry's current status info, or nil.
	Status(ctx context.Context, id types.EntryID) (*types.StatusInfo, error)

	// Note returns one compliance note by number, or nil.
	Note(ctx context.Context, id types.EntryID, number uint32) (*types.ComplianceNote, error)

	// HasPermission reports whether a live grant exists for the
	// identity whose permission list contains the token.
	HasPermission(ctx context.Context, id types.EntryID, collaborator types.Identity, token string) (bool, error)

	// Paused reports whether the process-wide gate is engaged.
	Paused(ctx context.Context) (bool, error)
}

// Connection represents a transport-agnostic connection to a waste
// ledger. Both gRPC clients and in-process adapters implement this.
type Connection interface {
	Ledger

	// Close terminates the connection.
	Close() error
}
