package ledger

import (
	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/store"
	"github.com/blockberries/wasteledger/types"
)

// gate rejects the mutation when the pause switch is engaged. It
// returns the global record so callers that need it avoid a second
// read.
func gate(tx store.Tx) (store.Global, error) {
	g, err := tx.Global()
	if err != nil {
		return store.Global{}, err
	}
	if g.Paused {
		return store.Global{}, wasteledger.ErrPaused
	}
	return g, nil
}

// requireOwner loads the entry and checks that caller is its current
// owner. Structural mutations are owner-only; there is no delegation
// path for them.
func requireOwner(tx store.Tx, id types.EntryID, caller types.Identity) (*types.WasteEntry, error) {
	e, err := tx.Entry(id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, wasteledger.ErrNotFound
	}
	if e.Owner != caller {
		return nil, wasteledger.ErrNotOwner
	}
	return e, nil
}

// authorizeNote allows note authorship for the entry's owner or for a
// collaborator whose grant carries the add-note permission token.
func authorizeNote(tx store.Tx, id types.EntryID, caller types.Identity) error {
	e, err := tx.Entry(id)
	if err != nil {
		return err
	}
	if e == nil {
		return wasteledger.ErrNotFound
	}
	if e.Owner == caller {
		return nil
	}
	g, err := tx.Collaborator(id, caller)
	if err != nil {
		return err
	}
	if g != nil && g.HasPermission(types.PermAddNote) {
		return nil
	}
	return wasteledger.ErrNotAuthorized
}
