package ledger_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/ledger"
	"github.com/blockberries/wasteledger/store/memory"
	"github.com/blockberries/wasteledger/store/sqlite"
	ledgertest "github.com/blockberries/wasteledger/testing"
)

// The same compliance suite runs against every store backend: the
// observable semantics must not depend on where state lives.

func TestCompliance_MemoryBackend(t *testing.T) {
	ledgertest.RunComplianceSuite(t, func(t *testing.T) wasteledger.Ledger {
		c := ledger.New(memory.New())
		if err := c.Bootstrap(context.Background(), ledgertest.SuiteAdmin); err != nil {
			t.Fatalf("Bootstrap: %v", err)
		}
		return c
	})
}

func TestCompliance_SQLiteBackend(t *testing.T) {
	ledgertest.RunComplianceSuite(t, func(t *testing.T) wasteledger.Ledger {
		st, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
		if err != nil {
			t.Fatalf("sqlite.Open: %v", err)
		}
		t.Cleanup(func() { st.Close() })
		c := ledger.New(st)
		if err := c.Bootstrap(context.Background(), ledgertest.SuiteAdmin); err != nil {
			t.Fatalf("Bootstrap: %v", err)
		}
		return c
	})
}
