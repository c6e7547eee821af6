package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/wasteledger/store"
	"github.com/blockberries/wasteledger/store/memory"
	"github.com/blockberries/wasteledger/types"
)

func TestUpdate_CommitsAtomically(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.PutEntry(types.WasteEntry{ID: 1, Owner: "a"}); err != nil {
			return err
		}
		return tx.PutStatus(types.StatusInfo{Entry: 1, Status: types.StatusGenerated, Visible: true})
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		e, err := tx.Entry(1)
		if err != nil {
			return err
		}
		if e == nil || e.Owner != "a" {
			t.Errorf("entry not committed: %+v", e)
		}
		si, err := tx.Status(1)
		if err != nil {
			return err
		}
		if si == nil || si.Status != types.StatusGenerated {
			t.Errorf("status not committed: %+v", si)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestUpdate_ErrorDiscardsAllWrites(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.PutEntry(types.WasteEntry{ID: 1, Owner: "a"}); err != nil {
			return err
		}
		if err := tx.PutGlobal(store.Global{LastEntryID: 1}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error back, got %v", err)
	}

	s.View(ctx, func(tx store.Tx) error {
		if e, _ := tx.Entry(1); e != nil {
			t.Error("entry write survived a failed update")
		}
		if g, _ := tx.Global(); g.LastEntryID != 0 {
			t.Error("global write survived a failed update")
		}
		return nil
	})
}

func TestUpdate_ReadYourWrites(t *testing.T) {
	s := memory.New()
	err := s.Update(context.Background(), func(tx store.Tx) error {
		if err := tx.PutNote(types.ComplianceNote{Entry: 1, Number: 1, Text: "x"}); err != nil {
			return err
		}
		n, err := tx.NoteCount(1)
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("expected count 1 within tx, got %d", n)
		}
		got, err := tx.Note(1, 1)
		if err != nil {
			return err
		}
		if got == nil || got.Text != "x" {
			t.Errorf("note not visible within tx: %+v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCollaborators_JoinOrderStableAcrossOverwrite(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	s.Update(ctx, func(tx store.Tx) error {
		tx.PutCollaborator(types.CollaboratorGrant{Entry: 1, Collaborator: "b", Role: "inspector", JoinedAt: 1})
		tx.PutCollaborator(types.CollaboratorGrant{Entry: 1, Collaborator: "c", Role: "hauler", JoinedAt: 2})
		// Re-grant to b: new role, same position.
		tx.PutCollaborator(types.CollaboratorGrant{Entry: 1, Collaborator: "b", Role: "auditor", JoinedAt: 3})
		return nil
	})

	s.View(ctx, func(tx store.Tx) error {
		gs, err := tx.Collaborators(1)
		if err != nil {
			return err
		}
		if len(gs) != 2 {
			t.Fatalf("expected 2 grants, got %d", len(gs))
		}
		if gs[0].Collaborator != "b" || gs[0].Role != "auditor" || gs[0].JoinedAt != 3 {
			t.Errorf("overwrite lost position or content: %+v", gs[0])
		}
		if gs[1].Collaborator != "c" {
			t.Errorf("join order broken: %+v", gs[1])
		}
		return nil
	})
}

func TestVersions_GaplessIndexing(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	s.Update(ctx, func(tx store.Tx) error {
		for i := uint32(1); i <= 3; i++ {
			tx.PutVersion(types.VersionRecord{Entry: 5, Number: i, Digest: types.Digest{byte(i)}})
		}
		return nil
	})

	s.View(ctx, func(tx store.Tx) error {
		n, _ := tx.VersionCount(5)
		if n != 3 {
			t.Fatalf("expected 3 versions, got %d", n)
		}
		for i := uint32(1); i <= 3; i++ {
			v, _ := tx.Version(5, i)
			if v == nil || v.Number != i {
				t.Errorf("version %d missing or misnumbered: %+v", i, v)
			}
		}
		if v, _ := tx.Version(5, 0); v != nil {
			t.Error("version 0 should not exist")
		}
		if v, _ := tx.Version(5, 4); v != nil {
			t.Error("version 4 should not exist")
		}
		return nil
	})
}

func TestReads_ReturnIsolatedCopies(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	s.Update(ctx, func(tx store.Tx) error {
		return tx.PutCategory(types.CategoryInfo{Entry: 1, Label: "hazardous", Tags: []string{"toxic"}})
	})

	// Mutating the returned copy must not leak into committed state.
	s.View(ctx, func(tx store.Tx) error {
		ci, _ := tx.Category(1)
		ci.Tags[0] = "mutated"
		return nil
	})
	s.View(ctx, func(tx store.Tx) error {
		ci, _ := tx.Category(1)
		if ci.Tags[0] != "toxic" {
			t.Errorf("read leaked a mutable reference: %+v", ci.Tags)
		}
		return nil
	})
}

func TestReads_DigestsAreIsolated(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	s.Update(ctx, func(tx store.Tx) error {
		if err := tx.PutEntry(types.WasteEntry{ID: 1, Digest: types.Digest("d1"), Owner: "a"}); err != nil {
			return err
		}
		return tx.PutVersion(types.VersionRecord{Entry: 1, Number: 1, Digest: types.Digest("d2")})
	})

	s.View(ctx, func(tx store.Tx) error {
		e, _ := tx.Entry(1)
		e.Digest[0] = 'x'
		v, _ := tx.Version(1, 1)
		v.Digest[0] = 'x'
		return nil
	})
	s.View(ctx, func(tx store.Tx) error {
		e, _ := tx.Entry(1)
		if string(e.Digest) != "d1" {
			t.Errorf("entry digest leaked a mutable reference: %q", e.Digest)
		}
		v, _ := tx.Version(1, 1)
		if string(v.Digest) != "d2" {
			t.Errorf("version digest leaked a mutable reference: %q", v.Digest)
		}
		return nil
	})
}
