package local_test

import (
	"context"
	"testing"

	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/ledger"
	"github.com/blockberries/wasteledger/local"
	"github.com/blockberries/wasteledger/store/memory"
	ledgertest "github.com/blockberries/wasteledger/testing"
)

func TestConnection_Compliance(t *testing.T) {
	ledgertest.RunComplianceSuite(t, func(t *testing.T) wasteledger.Ledger {
		c := ledger.New(memory.New())
		if err := c.Bootstrap(context.Background(), ledgertest.SuiteAdmin); err != nil {
			t.Fatalf("Bootstrap: %v", err)
		}
		return local.New(c)
	})
}

func TestConnection_CloseIsNoOp(t *testing.T) {
	conn := local.New(&ledgertest.MockLedger{})
	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// The connection stays usable after Close.
	if _, err := conn.Paused(context.Background()); err != nil {
		t.Fatalf("Paused after Close: %v", err)
	}
}
