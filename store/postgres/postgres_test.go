package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/blockberries/wasteledger/store"
	"github.com/blockberries/wasteledger/store/postgres"
	"github.com/blockberries/wasteledger/types"
)

// Tests here need a live database and are skipped unless
// WASTELEDGER_TEST_POSTGRES_DSN points at one. The database is not
// wiped, so run against a throwaway instance.
func open(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := os.Getenv("WASTELEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("WASTELEDGER_TEST_POSTGRES_DSN not set")
	}
	s, err := postgres.Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGlobal_RoundTrip(t *testing.T) {
	s := open(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx store.Tx) error {
		return tx.PutGlobal(store.Global{Admin: "admin", Paused: false, LastEntryID: 0})
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	s.View(ctx, func(tx store.Tx) error {
		g, err := tx.Global()
		if err != nil {
			t.Fatalf("Global: %v", err)
		}
		if g.Admin != "admin" {
			t.Errorf("admin = %q", g.Admin)
		}
		return nil
	})
}

func TestEntryWithGrants_RoundTrip(t *testing.T) {
	s := open(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.PutEntry(types.WasteEntry{
			ID: 9001, Digest: types.Digest("h"), Owner: "a",
			Category: "chemical", Quantity: 10, Unit: "l",
		}); err != nil {
			return err
		}
		return tx.PutCollaborator(types.CollaboratorGrant{
			Entry: 9001, Collaborator: "b", Role: "inspector",
			Permissions: []string{types.PermAddNote}, JoinedAt: 4,
		})
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	s.View(ctx, func(tx store.Tx) error {
		e, err := tx.Entry(9001)
		if err != nil || e == nil {
			t.Fatalf("Entry: %v %v", e, err)
		}
		g, err := tx.Collaborator(9001, "b")
		if err != nil || g == nil {
			t.Fatalf("Collaborator: %v %v", g, err)
		}
		if !g.HasPermission(types.PermAddNote) {
			t.Errorf("permission lost: %+v", g)
		}
		if v, _ := tx.Entry(9002); v != nil {
			t.Error("absent entry should read as nil")
		}
		return nil
	})
}
