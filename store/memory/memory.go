// Package memory provides an in-memory store backend. State is
// mutated on a deep copy and swapped in on commit, so a failed
// update can never leave partial writes behind. The reference
// backend for tests and single-process hosts.
package memory

import (
	"context"
	"sync"

	"github.com/blockberries/wasteledger/store"
	"github.com/blockberries/wasteledger/types"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// data holds the entire ledger state. Versions and notes are slices
// indexed by number-1 — both sequences are gapless by invariant.
type data struct {
	global     store.Global
	entries    map[types.EntryID]types.WasteEntry
	versions   map[types.EntryID][]types.VersionRecord
	categories map[types.EntryID]types.CategoryInfo
	collabs    map[types.EntryID][]types.CollaboratorGrant // join order
	statuses   map[types.EntryID]types.StatusInfo
	notes      map[types.EntryID][]types.ComplianceNote
}

func newData() *data {
	return &data{
		entries:    make(map[types.EntryID]types.WasteEntry),
		versions:   make(map[types.EntryID][]types.VersionRecord),
		categories: make(map[types.EntryID]types.CategoryInfo),
		collabs:    make(map[types.EntryID][]types.CollaboratorGrant),
		statuses:   make(map[types.EntryID]types.StatusInfo),
		notes:      make(map[types.EntryID][]types.ComplianceNote),
	}
}

func (d *data) clone() *data {
	c := &data{
		global:     d.global,
		entries:    make(map[types.EntryID]types.WasteEntry, len(d.entries)),
		versions:   make(map[types.EntryID][]types.VersionRecord, len(d.versions)),
		categories: make(map[types.EntryID]types.CategoryInfo, len(d.categories)),
		collabs:    make(map[types.EntryID][]types.CollaboratorGrant, len(d.collabs)),
		statuses:   make(map[types.EntryID]types.StatusInfo, len(d.statuses)),
		notes:      make(map[types.EntryID][]types.ComplianceNote, len(d.notes)),
	}
	for id, e := range d.entries {
		c.entries[id] = e
	}
	for id, vs := range d.versions {
		c.versions[id] = append([]types.VersionRecord(nil), vs...)
	}
	for id, ci := range d.categories {
		ci.Tags = append([]string(nil), ci.Tags...)
		c.categories[id] = ci
	}
	for id, gs := range d.collabs {
		cp := make([]types.CollaboratorGrant, len(gs))
		for i, g := range gs {
			g.Permissions = append([]string(nil), g.Permissions...)
			cp[i] = g
		}
		c.collabs[id] = cp
	}
	for id, s := range d.statuses {
		c.statuses[id] = s
	}
	for id, ns := range d.notes {
		c.notes[id] = append([]types.ComplianceNote(nil), ns...)
	}
	return c
}

// Store is an in-memory store.Store implementation.
type Store struct {
	mu      sync.RWMutex
	current *data
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{current: newData()}
}

func (s *Store) View(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{d: s.current})
}

func (s *Store) Update(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.current.clone()
	if err := fn(&tx{d: staged}); err != nil {
		return err
	}
	s.current = staged
	return nil
}

func (s *Store) Close() error { return nil }

// tx operates directly on a data snapshot: the committed one for
// views, a staged clone for updates.
type tx struct {
	d *data
}

var _ store.Tx = (*tx)(nil)

func (t *tx) Global() (store.Global, error) {
	return t.d.global, nil
}

func (t *tx) PutGlobal(g store.Global) error {
	t.d.global = g
	return nil
}

func (t *tx) Entry(id types.EntryID) (*types.WasteEntry, error) {
	e, ok := t.d.entries[id]
	if !ok {
		return nil, nil
	}
	e.Digest = append(types.Digest(nil), e.Digest...)
	return &e, nil
}

func (t *tx) PutEntry(e types.WasteEntry) error {
	t.d.entries[e.ID] = e
	return nil
}

func (t *tx) Version(id types.EntryID, number uint32) (*types.VersionRecord, error) {
	vs := t.d.versions[id]
	if number == 0 || number > uint32(len(vs)) {
		return nil, nil
	}
	v := vs[number-1]
	v.Digest = append(types.Digest(nil), v.Digest...)
	return &v, nil
}

func (t *tx) VersionCount(id types.EntryID) (uint32, error) {
	return uint32(len(t.d.versions[id])), nil
}

func (t *tx) PutVersion(v types.VersionRecord) error {
	vs := t.d.versions[v.Entry]
	if v.Number == uint32(len(vs))+1 {
		t.d.versions[v.Entry] = append(vs, v)
	} else if v.Number >= 1 && v.Number <= uint32(len(vs)) {
		vs[v.Number-1] = v
	}
	return nil
}

func (t *tx) Category(id types.EntryID) (*types.CategoryInfo, error) {
	ci, ok := t.d.categories[id]
	if !ok {
		return nil, nil
	}
	ci.Tags = append([]string(nil), ci.Tags...)
	return &ci, nil
}

func (t *tx) PutCategory(ci types.CategoryInfo) error {
	t.d.categories[ci.Entry] = ci
	return nil
}

func (t *tx) Collaborator(id types.EntryID, who types.Identity) (*types.CollaboratorGrant, error) {
	for _, g := range t.d.collabs[id] {
		if g.Collaborator == who {
			g.Permissions = append([]string(nil), g.Permissions...)
			return &g, nil
		}
	}
	return nil, nil
}

func (t *tx) Collaborators(id types.EntryID) ([]types.CollaboratorGrant, error) {
	gs := make([]types.CollaboratorGrant, len(t.d.collabs[id]))
	for i, g := range t.d.collabs[id] {
		g.Permissions = append([]string(nil), g.Permissions...)
		gs[i] = g
	}
	return gs, nil
}

func (t *tx) PutCollaborator(g types.CollaboratorGrant) error {
	gs := t.d.collabs[g.Entry]
	for i := range gs {
		if gs[i].Collaborator == g.Collaborator {
			gs[i] = g // overwrite keeps join position
			return nil
		}
	}
	t.d.collabs[g.Entry] = append(gs, g)
	return nil
}

func (t *tx) Status(id types.EntryID) (*types.StatusInfo, error) {
	si, ok := t.d.statuses[id]
	if !ok {
		return nil, nil
	}
	return &si, nil
}

func (t *tx) PutStatus(si types.StatusInfo) error {
	t.d.statuses[si.Entry] = si
	return nil
}

func (t *tx) Note(id types.EntryID, number uint32) (*types.ComplianceNote, error) {
	ns := t.d.notes[id]
	if number == 0 || number > uint32(len(ns)) {
		return nil, nil
	}
	n := ns[number-1]
	return &n, nil
}

func (t *tx) NoteCount(id types.EntryID) (uint32, error) {
	return uint32(len(t.d.notes[id])), nil
}

func (t *tx) PutNote(n types.ComplianceNote) error {
	ns := t.d.notes[n.Entry]
	if n.Number == uint32(len(ns))+1 {
		t.d.notes[n.Entry] = append(ns, n)
	} else if n.Number >= 1 && n.Number <= uint32(len(ns)) {
		ns[n.Number-1] = n
	}
	return nil
}
