// Package store defines the narrow persistence substrate the ledger
// core consumes: a set of durable keyed collections with atomic
// per-call commit. Backends live in subpackages (memory, sqlite,
// postgres) and must be observationally identical — the compliance
// suite in the testing package runs against all of them.
package store

import (
	"context"

	"github.com/blockberries/wasteledger/types"
)

// Global is the process-wide ledger state: the administrator
// identity, the pause flag, and the entry-id allocator position.
// Initialized once at first start; there is no reset operation.
type Global struct {
	Admin       types.Identity
	Paused      bool
	LastEntryID types.EntryID
}

// Tx gives the core typed access to every collection within one
// atomic transaction. Lookups return nil (not an error) for absent
// records; errors signal substrate failures.
//
// Writes made through a Tx become visible to subsequent reads on the
// same Tx immediately (read-your-writes), and to other transactions
// only after the enclosing Update commits.
type Tx interface {
	Global() (Global, error)
	PutGlobal(Global) error

	Entry(id types.EntryID) (*types.WasteEntry, error)
	// PutEntry stores a new entry, or updates an existing one. On an
	// existing id only Owner is guaranteed to be rewritten; all other
	// fields are fixed at registration and must be passed unchanged.
	PutEntry(types.WasteEntry) error

	Version(id types.EntryID, number uint32) (*types.VersionRecord, error)
	// VersionCount returns the number of versions stored for the
	// entry. Versions are gapless, so this is also the highest
	// version number.
	VersionCount(id types.EntryID) (uint32, error)
	PutVersion(types.VersionRecord) error

	Category(id types.EntryID) (*types.CategoryInfo, error)
	PutCategory(types.CategoryInfo) error

	Collaborator(id types.EntryID, who types.Identity) (*types.CollaboratorGrant, error)
	// Collaborators returns all live grants for the entry in join
	// order. Overwriting a grant keeps its original position.
	Collaborators(id types.EntryID) ([]types.CollaboratorGrant, error)
	PutCollaborator(types.CollaboratorGrant) error

	Status(id types.EntryID) (*types.StatusInfo, error)
	PutStatus(types.StatusInfo) error

	Note(id types.EntryID, number uint32) (*types.ComplianceNote, error)
	// NoteCount returns the number of notes stored for the entry.
	NoteCount(id types.EntryID) (uint32, error)
	PutNote(types.ComplianceNote) error
}

// Store is the durable substrate.
type Store interface {
	// View runs fn with read access to the last committed state.
	// Safe for concurrent use.
	View(ctx context.Context, fn func(Tx) error) error

	// Update runs fn inside a transaction. If fn returns nil, every
	// write commits atomically; any error discards all writes and is
	// returned unchanged. Updates are serialized by the backend.
	Update(ctx context.Context, fn func(Tx) error) error

	// Close releases the substrate's resources.
	Close() error
}
