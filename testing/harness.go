package ledgertest

import (
	"context"
	"testing"

	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/types"
)

// Harness wraps a Ledger for tests, supplying a strictly increasing
// ordering counter per call so test bodies never manage counters by
// hand.
type Harness struct {
	t       *testing.T
	ledger  wasteledger.Ledger
	counter uint64
}

// NewHarness creates a harness around the given ledger.
func NewHarness(t *testing.T, l wasteledger.Ledger) *Harness {
	t.Helper()
	return &Harness{t: t, ledger: l}
}

// Ledger returns the wrapped ledger for direct access.
func (h *Harness) Ledger() wasteledger.Ledger { return h.ledger }

// Env returns a call environment for the caller, advancing the
// ordering counter.
func (h *Harness) Env(caller types.Identity) types.Env {
	h.counter++
	return types.Env{Caller: caller, Counter: h.counter}
}

// DefaultRegistration returns a registration that passes every
// validation rule.
func DefaultRegistration() types.Registration {
	return types.Registration{
		Digest:      types.Digest("sha256:0000"),
		Category:    "hazardous",
		Quantity:    500,
		Unit:        "kg",
		Description: "spent industrial solvent",
		Location:    "facility-a/bay-3",
	}
}

// MustRegister registers an entry for owner and fails the test on
// rejection.
func (h *Harness) MustRegister(owner types.Identity) types.EntryID {
	h.t.Helper()
	id, err := h.ledger.Register(context.Background(), h.Env(owner), DefaultRegistration())
	if err != nil {
		h.t.Fatalf("Register failed: %v", err)
	}
	return id
}

// MustTransfer transfers ownership and fails the test on rejection.
func (h *Harness) MustTransfer(owner types.Identity, id types.EntryID, newOwner types.Identity) {
	h.t.Helper()
	if err := h.ledger.TransferOwnership(context.Background(), h.Env(owner), id, newOwner); err != nil {
		h.t.Fatalf("TransferOwnership failed: %v", err)
	}
}

// MustAppendVersion appends a version and fails the test on rejection.
func (h *Harness) MustAppendVersion(owner types.Identity, id types.EntryID, digest types.Digest) uint32 {
	h.t.Helper()
	n, err := h.ledger.AppendVersion(context.Background(), h.Env(owner), id, digest, "")
	if err != nil {
		h.t.Fatalf("AppendVersion failed: %v", err)
	}
	return n
}

// MustAddCollaborator adds a grant and fails the test on rejection.
func (h *Harness) MustAddCollaborator(owner types.Identity, id types.EntryID, who types.Identity, role string, permissions ...string) {
	h.t.Helper()
	if err := h.ledger.AddCollaborator(context.Background(), h.Env(owner), id, who, role, permissions); err != nil {
		h.t.Fatalf("AddCollaborator failed: %v", err)
	}
}

// MustAddNote appends a note and fails the test on rejection.
func (h *Harness) MustAddNote(author types.Identity, id types.EntryID, text string) uint32 {
	h.t.Helper()
	n, err := h.ledger.AddNote(context.Background(), h.Env(author), id, text)
	if err != nil {
		h.t.Fatalf("AddNote failed: %v", err)
	}
	return n
}

// MustPause engages the gate and fails the test on rejection.
func (h *Harness) MustPause(admin types.Identity) {
	h.t.Helper()
	if err := h.ledger.Pause(context.Background(), h.Env(admin)); err != nil {
		h.t.Fatalf("Pause failed: %v", err)
	}
}

// MustUnpause disengages the gate and fails the test on rejection.
func (h *Harness) MustUnpause(admin types.Identity) {
	h.t.Helper()
	if err := h.ledger.Unpause(context.Background(), h.Env(admin)); err != nil {
		h.t.Fatalf("Unpause failed: %v", err)
	}
}
