// Package local provides a zero-copy in-process connection to a
// waste ledger, for hosts that embed the ledger directly instead of
// dialing it over gRPC.
package local

import (
	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/server"
)

// Compile-time interface check.
var _ wasteledger.Connection = (*Connection)(nil)

// Connection adapts a ledger into a Connection without any
// serialization or transport. Calls pass through a Sequencer, so the
// same ordering discipline applies as over the wire.
type Connection struct {
	*server.Sequencer
}

// New creates an in-process connection to the given ledger.
func New(l wasteledger.Ledger) *Connection {
	return &Connection{Sequencer: server.New(l)}
}

// Close is a no-op for in-process connections.
func (c *Connection) Close() error { return nil }
