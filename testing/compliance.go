package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/types"
)

// SuiteAdmin is the administrator identity every factory-produced
// ledger must be bootstrapped with.
const SuiteAdmin = types.Identity("suite-admin")

// RunComplianceSuite runs a standard compliance test suite against a
// waste ledger to verify the record state machine's observable
// behavior. It is backend- and transport-agnostic: run it against the
// core over any store, or against a remote client.
//
// The factory must return a fresh, empty ledger bootstrapped with
// SuiteAdmin for each test.
func RunComplianceSuite(t *testing.T, factory func(t *testing.T) wasteledger.Ledger) {
	t.Helper()
	ctx := context.Background()

	t.Run("rejected_registration_burns_no_id", func(t *testing.T) {
		h := NewHarness(t, factory(t))

		bad := DefaultRegistration()
		bad.Digest = nil
		if _, err := h.Ledger().Register(ctx, h.Env("a"), bad); !errors.Is(err, wasteledger.ErrInvalidDigest) {
			t.Fatalf("empty digest: %v", err)
		}
		bad = DefaultRegistration()
		bad.Quantity = -1
		if _, err := h.Ledger().Register(ctx, h.Env("a"), bad); !errors.Is(err, wasteledger.ErrInvalidQuantity) {
			t.Fatalf("negative quantity: %v", err)
		}

		if id := h.MustRegister("a"); id != 1 {
			t.Fatalf("first id = %d, want 1 (rejections must not allocate)", id)
		}
	})

	t.Run("owner_stable_until_transfer", func(t *testing.T) {
		h := NewHarness(t, factory(t))
		id := h.MustRegister("a")

		e, err := h.Ledger().Entry(ctx, id)
		if err != nil || e == nil {
			t.Fatalf("Entry: %v %v", e, err)
		}
		if e.Owner != "a" {
			t.Fatalf("owner = %q, want registering caller", e.Owner)
		}

		h.MustTransfer("a", id, "b")
		e, _ = h.Ledger().Entry(ctx, id)
		if e.Owner != "b" {
			t.Fatalf("owner after transfer = %q, want b", e.Owner)
		}
	})

	t.Run("version_log_gapless_and_bounded", func(t *testing.T) {
		h := NewHarness(t, factory(t))
		id := h.MustRegister("a")

		max := types.DefaultLimits().MaxVersions
		for i := uint32(1); i <= max; i++ {
			if n := h.MustAppendVersion("a", id, types.Digest(fmt.Sprintf("v%d", i))); n != i {
				t.Fatalf("version number = %d, want %d", n, i)
			}
		}
		if _, err := h.Ledger().AppendVersion(ctx, h.Env("a"), id, types.Digest("over"), ""); !errors.Is(err, wasteledger.ErrVersionLimitReached) {
			t.Fatalf("over limit: %v", err)
		}
		for i := uint32(1); i <= max; i++ {
			if v, err := h.Ledger().Version(ctx, id, i); err != nil || v == nil {
				t.Fatalf("version %d missing: %v", i, err)
			}
		}
	})

	t.Run("collaborator_limit_and_regrant", func(t *testing.T) {
		h := NewHarness(t, factory(t))
		id := h.MustRegister("a")

		max := types.DefaultLimits().MaxCollaborators
		for i := 0; i < max; i++ {
			h.MustAddCollaborator("a", id, types.Identity(fmt.Sprintf("c%d", i)), "inspector")
		}
		err := h.Ledger().AddCollaborator(ctx, h.Env("a"), id, "overflow", "inspector", nil)
		if !errors.Is(err, wasteledger.ErrCollaboratorLimitReached) {
			t.Fatalf("over limit: %v", err)
		}
		// Re-granting an existing collaborator is not a limit
		// violation.
		h.MustAddCollaborator("a", id, "c0", "auditor", types.PermAddNote)
		g, err := h.Ledger().Collaborator(ctx, id, "c0")
		if err != nil || g == nil || g.Role != "auditor" {
			t.Fatalf("re-grant not applied: %+v %v", g, err)
		}
	})

	t.Run("note_delegation", func(t *testing.T) {
		h := NewHarness(t, factory(t))
		id := h.MustRegister("a")

		if _, err := h.Ledger().AddNote(ctx, h.Env("c"), id, "x"); !errors.Is(err, wasteledger.ErrNotAuthorized) {
			t.Fatalf("stranger note: %v", err)
		}
		h.MustAddCollaborator("a", id, "b", "inspector", types.PermAddNote)
		n := h.MustAddNote("b", id, "container intact")
		rec, err := h.Ledger().Note(ctx, id, n)
		if err != nil || rec == nil {
			t.Fatalf("Note: %v %v", rec, err)
		}
		if rec.Author != "b" {
			t.Fatalf("author = %q, want collaborator", rec.Author)
		}
	})

	t.Run("pause_gates_mutations_not_reads", func(t *testing.T) {
		h := NewHarness(t, factory(t))
		id := h.MustRegister("a")
		h.MustPause(SuiteAdmin)

		if _, err := h.Ledger().Register(ctx, h.Env("a"), DefaultRegistration()); !errors.Is(err, wasteledger.ErrPaused) {
			t.Fatalf("register while paused: %v", err)
		}
		if err := h.Ledger().SetStatus(ctx, h.Env("a"), id, "collected", true); !errors.Is(err, wasteledger.ErrPaused) {
			t.Fatalf("set status while paused: %v", err)
		}
		if e, err := h.Ledger().Entry(ctx, id); err != nil || e == nil {
			t.Fatalf("read while paused: %v %v", e, err)
		}

		if err := h.Ledger().Pause(ctx, h.Env(SuiteAdmin)); !errors.Is(err, wasteledger.ErrPaused) {
			t.Fatalf("double pause: %v", err)
		}
		h.MustUnpause(SuiteAdmin)
		if err := h.Ledger().Unpause(ctx, h.Env(SuiteAdmin)); !errors.Is(err, wasteledger.ErrNotPaused) {
			t.Fatalf("double unpause: %v", err)
		}
	})

	t.Run("end_to_end_scenario", func(t *testing.T) {
		h := NewHarness(t, factory(t))

		id, err := h.Ledger().Register(ctx, h.Env("A"), types.Registration{
			Digest: types.Digest("h1"), Category: "hazardous",
			Quantity: 500, Unit: "kg",
		})
		if err != nil || id != 1 {
			t.Fatalf("register: id=%d err=%v", id, err)
		}
		if err := h.Ledger().SetCategory(ctx, h.Env("A"), id, "hazardous", []string{"toxic", "flammable"}); err != nil {
			t.Fatalf("set category: %v", err)
		}
		ci, _ := h.Ledger().Category(ctx, id)
		if ci == nil || ci.Label != "hazardous" || len(ci.Tags) != 2 || ci.Tags[0] != "toxic" || ci.Tags[1] != "flammable" {
			t.Fatalf("category = %+v", ci)
		}
		h.MustAddCollaborator("A", id, "B", "inspector", types.PermAddNote)
		if n := h.MustAddNote("B", id, "ok"); n != 1 {
			t.Fatalf("note id = %d, want 1", n)
		}
		if _, err := h.Ledger().AddNote(ctx, h.Env("C"), id, "x"); !errors.Is(err, wasteledger.ErrNotAuthorized) {
			t.Fatalf("note by stranger: %v", err)
		}
	})

	t.Run("transfer_moves_versioning_rights", func(t *testing.T) {
		h := NewHarness(t, factory(t))
		id := h.MustRegister("A")
		h.MustTransfer("A", id, "B")

		if _, err := h.Ledger().AppendVersion(ctx, h.Env("A"), id, types.Digest("h2"), ""); !errors.Is(err, wasteledger.ErrNotOwner) {
			t.Fatalf("old owner version: %v", err)
		}
		if _, err := h.Ledger().AppendVersion(ctx, h.Env("B"), id, types.Digest("h2"), ""); err != nil {
			t.Fatalf("new owner version: %v", err)
		}
	})
}
