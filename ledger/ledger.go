// Package ledger implements the waste ledger state machine over a
// store.Store substrate.
//
// Every mutation runs inside a single atomic store update: the pause
// gate is consulted first, then access control, then field-level
// validation, and only then are any writes staged. A rejected call
// leaves all state unchanged.
package ledger

import (
	"context"
	"fmt"

	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/store"
	"github.com/blockberries/wasteledger/types"
)

// Compile-time interface check.
var _ wasteledger.Ledger = (*Core)(nil)

// EventSink receives one event per committed mutation. Emit is called
// after the commit, on the mutating goroutine; it must not block.
type EventSink interface {
	Emit(types.Event)
}

// Core is the canonical Ledger implementation.
type Core struct {
	st     store.Store
	limits types.Limits
	sink   EventSink
}

// Option configures a Core.
type Option func(*Core)

// WithLimits overrides the default bounds.
func WithLimits(l types.Limits) Option {
	return func(c *Core) { c.limits = l }
}

// WithEventSink attaches a sink for committed-mutation events.
func WithEventSink(s EventSink) Option {
	return func(c *Core) { c.sink = s }
}

// New creates a Core over st. Call Bootstrap before serving.
func New(st store.Store, opts ...Option) *Core {
	c := &Core{st: st, limits: types.DefaultLimits()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bootstrap establishes the administrator identity. On a cold start
// the identity is persisted; on a restart the persisted identity must
// match, since the administrator is immutable after initial setup.
func (c *Core) Bootstrap(ctx context.Context, admin types.Identity) error {
	if admin == "" {
		return fmt.Errorf("ledger: empty administrator identity")
	}
	return c.st.Update(ctx, func(tx store.Tx) error {
		g, err := tx.Global()
		if err != nil {
			return err
		}
		if g.Admin == "" {
			g.Admin = admin
			return tx.PutGlobal(g)
		}
		if g.Admin != admin {
			return fmt.Errorf("ledger: administrator mismatch: store has %q, got %q", g.Admin, admin)
		}
		return nil
	})
}

func (c *Core) emit(ev types.Event) {
	if c.sink != nil {
		c.sink.Emit(ev)
	}
}

func (c *Core) Register(ctx context.Context, env types.Env, reg types.Registration) (types.EntryID, error) {
	var id types.EntryID
	err := c.st.Update(ctx, func(tx store.Tx) error {
		g, err := gate(tx)
		if err != nil {
			return err
		}
		if len(reg.Digest) == 0 {
			return wasteledger.ErrInvalidDigest
		}
		if reg.Quantity <= 0 {
			return wasteledger.ErrInvalidQuantity
		}
		if reg.Category == "" {
			return wasteledger.ErrInvalidCategory
		}
		if len(reg.Description) > c.limits.MaxDescription {
			return wasteledger.ErrDescriptionTooLong
		}

		// Allocate only after all validation has passed so rejected
		// calls never burn an id.
		id = g.LastEntryID + 1
		g.LastEntryID = id
		if err := tx.PutGlobal(g); err != nil {
			return err
		}
		if err := tx.PutEntry(types.WasteEntry{
			ID:          id,
			Digest:      reg.Digest,
			Owner:       env.Caller,
			Category:    reg.Category,
			Quantity:    reg.Quantity,
			Unit:        reg.Unit,
			Description: reg.Description,
			Location:    reg.Location,
			CreatedAt:   env.Counter,
		}); err != nil {
			return err
		}
		return tx.PutStatus(types.StatusInfo{
			Entry:     id,
			Status:    types.StatusGenerated,
			Visible:   true,
			UpdatedAt: env.Counter,
		})
	})
	if err != nil {
		return 0, err
	}
	c.emit(entryRegistered(id, env.Caller, reg.Category))
	return id, nil
}

func (c *Core) TransferOwnership(ctx context.Context, env types.Env, id types.EntryID, newOwner types.Identity) error {
	err := c.st.Update(ctx, func(tx store.Tx) error {
		if _, err := gate(tx); err != nil {
			return err
		}
		e, err := requireOwner(tx, id, env.Caller)
		if err != nil {
			return err
		}
		e.Owner = newOwner
		return tx.PutEntry(*e)
	})
	if err != nil {
		return err
	}
	c.emit(ownershipTransferred(id, env.Caller, newOwner))
	return nil
}

func (c *Core) AppendVersion(ctx context.Context, env types.Env, id types.EntryID, digest types.Digest, notes string) (uint32, error) {
	var number uint32
	err := c.st.Update(ctx, func(tx store.Tx) error {
		if _, err := gate(tx); err != nil {
			return err
		}
		if _, err := requireOwner(tx, id, env.Caller); err != nil {
			return err
		}
		count, err := tx.VersionCount(id)
		if err != nil {
			return err
		}
		if count >= c.limits.MaxVersions {
			return wasteledger.ErrVersionLimitReached
		}
		if len(digest) == 0 {
			return wasteledger.ErrInvalidDigest
		}
		number = count + 1
		return tx.PutVersion(types.VersionRecord{
			Entry:     id,
			Number:    number,
			Digest:    digest,
			Notes:     notes,
			CreatedAt: env.Counter,
		})
	})
	if err != nil {
		return 0, err
	}
	c.emit(versionAppended(id, number))
	return number, nil
}

func (c *Core) SetCategory(ctx context.Context, env types.Env, id types.EntryID, label string, tags []string) error {
	err := c.st.Update(ctx, func(tx store.Tx) error {
		if _, err := gate(tx); err != nil {
			return err
		}
		if _, err := requireOwner(tx, id, env.Caller); err != nil {
			return err
		}
		if label == "" {
			return wasteledger.ErrInvalidCategory
		}
		if len(tags) > c.limits.MaxTags {
			return wasteledger.ErrTagLimitExceeded
		}
		for _, tag := range tags {
			if tag == "" {
				return wasteledger.ErrInvalidTag
			}
		}
		return tx.PutCategory(types.CategoryInfo{
			Entry:     id,
			Label:     label,
			Tags:      tags,
			UpdatedAt: env.Counter,
		})
	})
	if err != nil {
		return err
	}
	c.emit(categorySet(id, label))
	return nil
}

func (c *Core) AddCollaborator(ctx context.Context, env types.Env, id types.EntryID, collaborator types.Identity, role string, permissions []string) error {
	err := c.st.Update(ctx, func(tx store.Tx) error {
		if _, err := gate(tx); err != nil {
			return err
		}
		if _, err := requireOwner(tx, id, env.Caller); err != nil {
			return err
		}
		if role == "" {
			return wasteledger.ErrInvalidRole
		}
		existing, err := tx.Collaborator(id, collaborator)
		if err != nil {
			return err
		}
		if existing == nil {
			// The limit counts distinct live collaborator keys; a
			// re-grant overwrites in place and does not consume a slot.
			current, err := tx.Collaborators(id)
			if err != nil {
				return err
			}
			if len(current) >= c.limits.MaxCollaborators {
				return wasteledger.ErrCollaboratorLimitReached
			}
		}
		return tx.PutCollaborator(types.CollaboratorGrant{
			Entry:        id,
			Collaborator: collaborator,
			Role:         role,
			Permissions:  permissions,
			JoinedAt:     env.Counter,
		})
	})
	if err != nil {
		return err
	}
	c.emit(collaboratorAdded(id, collaborator, role))
	return nil
}

func (c *Core) SetStatus(ctx context.Context, env types.Env, id types.EntryID, status string, visible bool) error {
	err := c.st.Update(ctx, func(tx store.Tx) error {
		if _, err := gate(tx); err != nil {
			return err
		}
		if _, err := requireOwner(tx, id, env.Caller); err != nil {
			return err
		}
		if status == "" {
			return wasteledger.ErrInvalidStatus
		}
		return tx.PutStatus(types.StatusInfo{
			Entry:     id,
			Status:    status,
			Visible:   visible,
			UpdatedAt: env.Counter,
		})
	})
	if err != nil {
		return err
	}
	c.emit(statusSet(id, status, visible))
	return nil
}

func (c *Core) AddNote(ctx context.Context, env types.Env, id types.EntryID, text string) (uint32, error) {
	var number uint32
	err := c.st.Update(ctx, func(tx store.Tx) error {
		if _, err := gate(tx); err != nil {
			return err
		}
		if err := authorizeNote(tx, id, env.Caller); err != nil {
			return err
		}
		if len(text) > c.limits.MaxNote {
			return wasteledger.ErrNoteTooLong
		}
		count, err := tx.NoteCount(id)
		if err != nil {
			return err
		}
		number = count + 1
		return tx.PutNote(types.ComplianceNote{
			Entry:     id,
			Number:    number,
			Text:      text,
			Author:    env.Caller,
			CreatedAt: env.Counter,
		})
	})
	if err != nil {
		return 0, err
	}
	c.emit(noteAdded(id, number, env.Caller))
	return number, nil
}

func (c *Core) Pause(ctx context.Context, env types.Env) error {
	err := c.st.Update(ctx, func(tx store.Tx) error {
		g, err := tx.Global()
		if err != nil {
			return err
		}
		if env.Caller != g.Admin {
			return wasteledger.ErrNotAuthorized
		}
		if g.Paused {
			return wasteledger.ErrPaused
		}
		g.Paused = true
		return tx.PutGlobal(g)
	})
	if err != nil {
		return err
	}
	c.emit(pauseToggled(true))
	return nil
}

func (c *Core) Unpause(ctx context.Context, env types.Env) error {
	err := c.st.Update(ctx, func(tx store.Tx) error {
		g, err := tx.Global()
		if err != nil {
			return err
		}
		if env.Caller != g.Admin {
			return wasteledger.ErrNotAuthorized
		}
		if !g.Paused {
			return wasteledger.ErrNotPaused
		}
		g.Paused = false
		return tx.PutGlobal(g)
	})
	if err != nil {
		return err
	}
	c.emit(pauseToggled(false))
	return nil
}

func (c *Core) Entry(ctx context.Context, id types.EntryID) (e *types.WasteEntry, err error) {
	err = c.st.View(ctx, func(tx store.Tx) error {
		e, err = tx.Entry(id)
		return err
	})
	return e, err
}

func (c *Core) Version(ctx context.Context, id types.EntryID, number uint32) (v *types.VersionRecord, err error) {
	err = c.st.View(ctx, func(tx store.Tx) error {
		v, err = tx.Version(id, number)
		return err
	})
	return v, err
}

func (c *Core) Category(ctx context.Context, id types.EntryID) (ci *types.CategoryInfo, err error) {
	err = c.st.View(ctx, func(tx store.Tx) error {
		ci, err = tx.Category(id)
		return err
	})
	return ci, err
}

func (c *Core) Collaborator(ctx context.Context, id types.EntryID, collaborator types.Identity) (g *types.CollaboratorGrant, err error) {
	err = c.st.View(ctx, func(tx store.Tx) error {
		g, err = tx.Collaborator(id, collaborator)
		return err
	})
	return g, err
}

func (c *Core) Collaborators(ctx context.Context, id types.EntryID) (gs []types.CollaboratorGrant, err error) {
	err = c.st.View(ctx, func(tx store.Tx) error {
		gs, err = tx.Collaborators(id)
		return err
	})
	return gs, err
}

func (c *Core) Status(ctx context.Context, id types.EntryID) (si *types.StatusInfo, err error) {
	err = c.st.View(ctx, func(tx store.Tx) error {
		si, err = tx.Status(id)
		return err
	})
	return si, err
}

func (c *Core) Note(ctx context.Context, id types.EntryID, number uint32) (n *types.ComplianceNote, err error) {
	err = c.st.View(ctx, func(tx store.Tx) error {
		n, err = tx.Note(id, number)
		return err
	})
	return n, err
}

func (c *Core) HasPermission(ctx context.Context, id types.EntryID, collaborator types.Identity, token string) (ok bool, err error) {
	err = c.st.View(ctx, func(tx store.Tx) error {
		g, err := tx.Collaborator(id, collaborator)
		if err != nil {
			return err
		}
		ok = g != nil && g.HasPermission(token)
		return nil
	})
	return ok, err
}

func (c *Core) Paused(ctx context.Context) (paused bool, err error) {
	err = c.st.View(ctx, func(tx store.Tx) error {
		g, err := tx.Global()
		if err != nil {
			return err
		}
		paused = g.Paused
		return nil
	})
	return paused, err
}
