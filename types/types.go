// Package types defines all core data types for the waste ledger.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Transport concerns (gRPC codec
// registration) are handled in the transport packages.
package types

// EntryID identifies one registered waste entry. IDs are positive,
// dense, assigned monotonically starting at 1, and never reused.
type EntryID uint64

// Identity is an opaque caller identifier. Authentication happens
// outside the ledger; by the time an Identity reaches the core it is
// already trusted to name its caller.
type Identity string

// Digest is an opaque content fingerprint. The ledger stores and
// compares digests byte-for-byte; it never computes or inspects them.
type Digest []byte

// Env is the per-call environment supplied by the host: the
// authenticated caller and the ordering counter (a block height or
// wall-clock surrogate). The counter must be strictly non-decreasing
// across the host's global apply order; the ledger records it as the
// timestamp of creation and update events.
type Env struct {
	Caller  Identity `cramberry:"1"`
	Counter uint64   `cramberry:"2"`
}

// PermAddNote is the permission token consulted for compliance-note
// delegation — the only token the core itself checks. Permission
// lists are otherwise opaque data.
const PermAddNote = "add-note"

// StatusGenerated is the status every entry starts in at registration.
const StatusGenerated = "generated"
