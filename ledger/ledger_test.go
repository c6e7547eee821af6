package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/ledger"
	"github.com/blockberries/wasteledger/store/memory"
	"github.com/blockberries/wasteledger/types"
)

const (
	admin = types.Identity("admin")
	alice = types.Identity("alice")
	bob   = types.Identity("bob")
	carol = types.Identity("carol")
)

type fixture struct {
	core    *ledger.Core
	counter uint64
}

func newFixture(t *testing.T, opts ...ledger.Option) *fixture {
	t.Helper()
	c := ledger.New(memory.New(), opts...)
	if err := c.Bootstrap(context.Background(), admin); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	return &fixture{core: c}
}

func (f *fixture) env(caller types.Identity) types.Env {
	f.counter++
	return types.Env{Caller: caller, Counter: f.counter}
}

func registration() types.Registration {
	return types.Registration{
		Digest:      types.Digest("h1"),
		Category:    "hazardous",
		Quantity:    500,
		Unit:        "kg",
		Description: "spent solvent",
		Location:    "bay-3",
	}
}

func (f *fixture) register(t *testing.T, owner types.Identity) types.EntryID {
	t.Helper()
	id, err := f.core.Register(context.Background(), f.env(owner), registration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return id
}

func TestBootstrap_AdminIsImmutable(t *testing.T) {
	st := memory.New()
	c := ledger.New(st)
	ctx := context.Background()

	if err := c.Bootstrap(ctx, admin); err != nil {
		t.Fatalf("cold start: %v", err)
	}
	if err := c.Bootstrap(ctx, admin); err != nil {
		t.Fatalf("restart with same admin: %v", err)
	}
	if err := c.Bootstrap(ctx, "impostor"); err == nil {
		t.Fatal("restart with different admin should fail")
	}
	if err := c.Bootstrap(ctx, ""); err == nil {
		t.Fatal("empty admin should fail")
	}
}

func TestRegister_ValidationDoesNotBurnIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*types.Registration)
		want   error
	}{
		{"empty digest", func(r *types.Registration) { r.Digest = nil }, wasteledger.ErrInvalidDigest},
		{"zero quantity", func(r *types.Registration) { r.Quantity = 0 }, wasteledger.ErrInvalidQuantity},
		{"negative quantity", func(r *types.Registration) { r.Quantity = -5 }, wasteledger.ErrInvalidQuantity},
		{"empty category", func(r *types.Registration) { r.Category = "" }, wasteledger.ErrInvalidCategory},
		{"long description", func(r *types.Registration) {
			for len(r.Description) <= types.DefaultLimits().MaxDescription {
				r.Description += r.Description
			}
		}, wasteledger.ErrDescriptionTooLong},
	}
	for _, tc := range cases {
		reg := registration()
		tc.mutate(&reg)
		if _, err := f.core.Register(ctx, f.env(alice), reg); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}

	// All rejections above must not have advanced the allocator.
	id := f.register(t, alice)
	if id != 1 {
		t.Fatalf("first successful id = %d, want 1", id)
	}
	e, err := f.core.Entry(ctx, id)
	if err != nil || e == nil {
		t.Fatalf("Entry: %v %v", e, err)
	}
	if e.Owner != alice {
		t.Errorf("owner = %q, want %q", e.Owner, alice)
	}
	si, _ := f.core.Status(ctx, id)
	if si == nil || si.Status != types.StatusGenerated || !si.Visible {
		t.Errorf("initial status = %+v, want generated/visible", si)
	}
}

func TestRegister_IDsAreDense(t *testing.T) {
	f := newFixture(t)
	for want := types.EntryID(1); want <= 3; want++ {
		if id := f.register(t, alice); id != want {
			t.Fatalf("id = %d, want %d", id, want)
		}
	}
}

func TestTransferOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, alice)

	if err := f.core.TransferOwnership(ctx, f.env(bob), id, bob); !errors.Is(err, wasteledger.ErrNotOwner) {
		t.Fatalf("transfer by non-owner: %v", err)
	}
	if err := f.core.TransferOwnership(ctx, f.env(alice), 99, bob); !errors.Is(err, wasteledger.ErrNotFound) {
		t.Fatalf("transfer of missing entry: %v", err)
	}
	if err := f.core.TransferOwnership(ctx, f.env(alice), id, bob); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	e, _ := f.core.Entry(ctx, id)
	if e.Owner != bob {
		t.Errorf("owner = %q, want %q", e.Owner, bob)
	}
	if e.Quantity != 500 || string(e.Digest) != "h1" {
		t.Errorf("immutable fields changed: %+v", e)
	}

	// The old owner lost mutation rights, the new owner gained them.
	if _, err := f.core.AppendVersion(ctx, f.env(alice), id, types.Digest("h2"), ""); !errors.Is(err, wasteledger.ErrNotOwner) {
		t.Errorf("old owner version: %v", err)
	}
	if _, err := f.core.AppendVersion(ctx, f.env(bob), id, types.Digest("h2"), ""); err != nil {
		t.Errorf("new owner version: %v", err)
	}
}

func TestAppendVersion_GaplessAndBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, alice)

	if _, err := f.core.AppendVersion(ctx, f.env(alice), id, nil, ""); !errors.Is(err, wasteledger.ErrInvalidDigest) {
		t.Fatalf("empty digest: %v", err)
	}

	max := types.DefaultLimits().MaxVersions
	for i := uint32(1); i <= max; i++ {
		n, err := f.core.AppendVersion(ctx, f.env(alice), id, types.Digest(fmt.Sprintf("v%d", i)), "rev")
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if n != i {
			t.Fatalf("version number = %d, want %d", n, i)
		}
	}
	if _, err := f.core.AppendVersion(ctx, f.env(alice), id, types.Digest("over"), ""); !errors.Is(err, wasteledger.ErrVersionLimitReached) {
		t.Fatalf("over limit: %v", err)
	}

	for i := uint32(1); i <= max; i++ {
		v, err := f.core.Version(ctx, id, i)
		if err != nil || v == nil {
			t.Fatalf("version %d missing: %v", i, err)
		}
		if string(v.Digest) != fmt.Sprintf("v%d", i) {
			t.Errorf("version %d digest = %q", i, v.Digest)
		}
	}
	if v, _ := f.core.Version(ctx, id, max+1); v != nil {
		t.Error("version past the end should be nil")
	}
}

func TestSetCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, alice)

	if err := f.core.SetCategory(ctx, f.env(alice), id, "", nil); !errors.Is(err, wasteledger.ErrInvalidCategory) {
		t.Fatalf("empty label: %v", err)
	}
	over := make([]string, types.DefaultLimits().MaxTags+1)
	for i := range over {
		over[i] = "t"
	}
	if err := f.core.SetCategory(ctx, f.env(alice), id, "c", over); !errors.Is(err, wasteledger.ErrTagLimitExceeded) {
		t.Fatalf("too many tags: %v", err)
	}
	if err := f.core.SetCategory(ctx, f.env(alice), id, "c", []string{"ok", "", "also"}); !errors.Is(err, wasteledger.ErrInvalidTag) {
		t.Fatalf("empty tag: %v", err)
	}
	// The empty tag aborted the whole write.
	if ci, _ := f.core.Category(ctx, id); ci != nil {
		t.Fatalf("partial category committed: %+v", ci)
	}

	if err := f.core.SetCategory(ctx, f.env(alice), id, "hazardous", []string{"toxic", "flammable"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	ci, _ := f.core.Category(ctx, id)
	if ci == nil || ci.Label != "hazardous" {
		t.Fatalf("category = %+v", ci)
	}
	if len(ci.Tags) != 2 || ci.Tags[0] != "toxic" || ci.Tags[1] != "flammable" {
		t.Errorf("tags = %v", ci.Tags)
	}

	// Replace wholesale, not merged.
	if err := f.core.SetCategory(ctx, f.env(alice), id, "inert", []string{"solid"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	ci, _ = f.core.Category(ctx, id)
	if ci.Label != "inert" || len(ci.Tags) != 1 || ci.Tags[0] != "solid" {
		t.Errorf("replacement merged instead of overwrote: %+v", ci)
	}
}

func TestAddCollaborator_LimitCountsDistinctKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, alice)

	if err := f.core.AddCollaborator(ctx, f.env(alice), id, bob, "", nil); !errors.Is(err, wasteledger.ErrInvalidRole) {
		t.Fatalf("empty role: %v", err)
	}

	max := types.DefaultLimits().MaxCollaborators
	for i := 0; i < max; i++ {
		who := types.Identity(fmt.Sprintf("collab-%d", i))
		if err := f.core.AddCollaborator(ctx, f.env(alice), id, who, "inspector", nil); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if err := f.core.AddCollaborator(ctx, f.env(alice), id, "one-too-many", "inspector", nil); !errors.Is(err, wasteledger.ErrCollaboratorLimitReached) {
		t.Fatalf("over limit: %v", err)
	}

	// A re-grant to an existing key is not rejected and overwrites in
	// place.
	if err := f.core.AddCollaborator(ctx, f.env(alice), id, "collab-0", "auditor", []string{types.PermAddNote}); err != nil {
		t.Fatalf("re-grant: %v", err)
	}
	g, _ := f.core.Collaborator(ctx, id, "collab-0")
	if g == nil || g.Role != "auditor" || !g.HasPermission(types.PermAddNote) {
		t.Fatalf("re-grant not applied: %+v", g)
	}
	gs, _ := f.core.Collaborators(ctx, id)
	if len(gs) != max {
		t.Errorf("re-grant consumed a slot: %d grants", len(gs))
	}
	if gs[0].Collaborator != "collab-0" {
		t.Errorf("join order lost on re-grant: %+v", gs[0])
	}
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, alice)

	if err := f.core.SetStatus(ctx, f.env(alice), id, "", true); !errors.Is(err, wasteledger.ErrInvalidStatus) {
		t.Fatalf("empty status: %v", err)
	}
	if err := f.core.SetStatus(ctx, f.env(bob), id, "collected", true); !errors.Is(err, wasteledger.ErrNotOwner) {
		t.Fatalf("non-owner: %v", err)
	}
	if err := f.core.SetStatus(ctx, f.env(alice), id, "collected", false); err != nil {
		t.Fatalf("set: %v", err)
	}
	si, _ := f.core.Status(ctx, id)
	if si.Status != "collected" || si.Visible {
		t.Errorf("status not fully replaced: %+v", si)
	}
}

func TestAddNote_Delegation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, alice)

	n, err := f.core.AddNote(ctx, f.env(alice), id, "created by producer")
	if err != nil || n != 1 {
		t.Fatalf("owner note: %d %v", n, err)
	}

	if _, err := f.core.AddNote(ctx, f.env(carol), id, "x"); !errors.Is(err, wasteledger.ErrNotAuthorized) {
		t.Fatalf("stranger note: %v", err)
	}

	// A collaborator without the token is still denied.
	if err := f.core.AddCollaborator(ctx, f.env(alice), id, bob, "hauler", []string{"other"}); err != nil {
		t.Fatalf("add hauler: %v", err)
	}
	if _, err := f.core.AddNote(ctx, f.env(bob), id, "x"); !errors.Is(err, wasteledger.ErrNotAuthorized) {
		t.Fatalf("tokenless collaborator note: %v", err)
	}

	if err := f.core.AddCollaborator(ctx, f.env(alice), id, bob, "inspector", []string{types.PermAddNote}); err != nil {
		t.Fatalf("re-grant with token: %v", err)
	}
	n, err = f.core.AddNote(ctx, f.env(bob), id, "inspected, ok")
	if err != nil || n != 2 {
		t.Fatalf("collaborator note: %d %v", n, err)
	}
	rec, _ := f.core.Note(ctx, id, 2)
	if rec == nil || rec.Author != bob {
		t.Errorf("note author = %+v, want %q", rec, bob)
	}

	long := make([]byte, types.DefaultLimits().MaxNote+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := f.core.AddNote(ctx, f.env(alice), id, string(long)); !errors.Is(err, wasteledger.ErrNoteTooLong) {
		t.Fatalf("long note: %v", err)
	}
}

func TestNoteAndVersionCountersAreIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, alice)

	if n, _ := f.core.AppendVersion(ctx, f.env(alice), id, types.Digest("v1"), ""); n != 1 {
		t.Fatalf("version = %d, want 1", n)
	}
	if n, _ := f.core.AddNote(ctx, f.env(alice), id, "first note"); n != 1 {
		t.Fatalf("note = %d, want 1 despite existing version", n)
	}
	if n, _ := f.core.AppendVersion(ctx, f.env(alice), id, types.Digest("v2"), ""); n != 2 {
		t.Fatalf("second version = %d, want 2", n)
	}
}

func TestPause_GatesAllMutationsAndAlternatesStrictly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, alice)

	if err := f.core.Pause(ctx, f.env(alice)); !errors.Is(err, wasteledger.ErrNotAuthorized) {
		t.Fatalf("pause by non-admin: %v", err)
	}
	if err := f.core.Unpause(ctx, f.env(admin)); !errors.Is(err, wasteledger.ErrNotPaused) {
		t.Fatalf("unpause while running: %v", err)
	}
	if err := f.core.Pause(ctx, f.env(admin)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := f.core.Pause(ctx, f.env(admin)); !errors.Is(err, wasteledger.ErrPaused) {
		t.Fatalf("double pause: %v", err)
	}

	mutations := map[string]error{
		"register": func() error {
			_, err := f.core.Register(ctx, f.env(alice), registration())
			return err
		}(),
		"transfer": f.core.TransferOwnership(ctx, f.env(alice), id, bob),
		"version": func() error {
			_, err := f.core.AppendVersion(ctx, f.env(alice), id, types.Digest("h2"), "")
			return err
		}(),
		"category":     f.core.SetCategory(ctx, f.env(alice), id, "c", nil),
		"collaborator": f.core.AddCollaborator(ctx, f.env(alice), id, bob, "r", nil),
		"status":       f.core.SetStatus(ctx, f.env(alice), id, "s", true),
		"note": func() error {
			_, err := f.core.AddNote(ctx, f.env(alice), id, "x")
			return err
		}(),
	}
	for name, err := range mutations {
		if !errors.Is(err, wasteledger.ErrPaused) {
			t.Errorf("%s while paused: %v", name, err)
		}
	}

	// Reads still work while paused.
	if e, err := f.core.Entry(ctx, id); err != nil || e == nil {
		t.Errorf("read while paused: %v %v", e, err)
	}
	if paused, _ := f.core.Paused(ctx); !paused {
		t.Error("Paused() = false while paused")
	}

	if err := f.core.Unpause(ctx, f.env(admin)); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if _, err := f.core.Register(ctx, f.env(alice), registration()); err != nil {
		t.Fatalf("register after unpause: %v", err)
	}
}

type recordingSink struct {
	events []types.Event
}

func (s *recordingSink) Emit(ev types.Event) { s.events = append(s.events, ev) }

func TestEvents_EmittedOnlyOnCommit(t *testing.T) {
	sink := &recordingSink{}
	f := newFixture(t, ledger.WithEventSink(sink))
	ctx := context.Background()

	id := f.register(t, alice)
	if _, err := f.core.Register(ctx, f.env(alice), types.Registration{}); err == nil {
		t.Fatal("invalid registration should fail")
	}
	if err := f.core.SetStatus(ctx, f.env(alice), id, "collected", true); err != nil {
		t.Fatalf("set status: %v", err)
	}

	if len(sink.events) != 2 {
		t.Fatalf("got %d events, want 2 (rejected call must not emit)", len(sink.events))
	}
	if sink.events[0].Kind != ledger.EventEntryRegistered {
		t.Errorf("event 0 = %q", sink.events[0].Kind)
	}
	if sink.events[1].Kind != ledger.EventStatusSet {
		t.Errorf("event 1 = %q", sink.events[1].Kind)
	}
	var foundID bool
	for _, attr := range sink.events[0].Attributes {
		if attr.Key == "entry_id" && attr.Value == "1" && attr.Index {
			foundID = true
		}
	}
	if !foundID {
		t.Errorf("registration event missing indexed entry_id: %+v", sink.events[0].Attributes)
	}
}
