// Package server provides the host-side wrapper that serializes all
// mutating calls into the single global apply order the ledger
// requires.
package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/types"
)

// Compile-time interface check.
var _ wasteledger.Ledger = (*Sequencer)(nil)

// Sequencer wraps a Ledger with mutation serialization and ordering
// enforcement. The host interacts with the ledger exclusively through
// this wrapper: mutations are applied one at a time under a mutex,
// and the per-call ordering counter must never decrease. A counter
// regression is host misuse, not a ledger error, so the Sequencer
// panics on it.
//
// Reads are passed through without serialization; they are safe for
// concurrent use and observe the last committed mutation.
type Sequencer struct {
	ledger wasteledger.Ledger

	mu          sync.Mutex
	lastCounter uint64
}

// New creates a Sequencer wrapping the given ledger.
func New(l wasteledger.Ledger) *Sequencer {
	return &Sequencer{ledger: l}
}

// acquire takes the apply lock and checks counter monotonicity. The
// counter advances even when the wrapped call later rejects: ordering
// is a property of the call stream, not of its outcomes.
func (s *Sequencer) acquire(env types.Env) {
	s.mu.Lock()
	if env.Counter < s.lastCounter {
		last := s.lastCounter
		s.mu.Unlock()
		panic(fmt.Sprintf("github.com/blockberries/wasteledger: ordering counter moved backwards: %d after %d",
			env.Counter, last))
	}
	s.lastCounter = env.Counter
}

func (s *Sequencer) release() { s.mu.Unlock() }

// LastCounter returns the highest ordering counter seen so far.
func (s *Sequencer) LastCounter() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCounter
}

func (s *Sequencer) Register(ctx context.Context, env types.Env, reg types.Registration) (types.EntryID, error) {
	s.acquire(env)
	defer s.release()
	return s.ledger.Register(ctx, env, reg)
}

func (s *Sequencer) TransferOwnership(ctx context.Context, env types.Env, id types.EntryID, newOwner types.Identity) error {
	s.acquire(env)
	defer s.release()
	return s.ledger.TransferOwnership(ctx, env, id, newOwner)
}

func (s *Sequencer) AppendVersion(ctx context.Context, env types.Env, id types.EntryID, digest types.Digest, notes string) (uint32, error) {
	s.acquire(env)
	defer s.release()
	return s.ledger.AppendVersion(ctx, env, id, digest, notes)
}

func (s *Sequencer) SetCategory(ctx context.Context, env types.Env, id types.EntryID, label string, tags []string) error {
	s.acquire(env)
	defer s.release()
	return s.ledger.SetCategory(ctx, env, id, label, tags)
}

func (s *Sequencer) AddCollaborator(ctx context.Context, env types.Env, id types.EntryID, collaborator types.Identity, role string, permissions []string) error {
	s.acquire(env)
	defer s.release()
	return s.ledger.AddCollaborator(ctx, env, id, collaborator, role, permissions)
}

func (s *Sequencer) SetStatus(ctx context.Context, env types.Env, id types.EntryID, status string, visible bool) error {
	s.acquire(env)
	defer s.release()
	return s.ledger.SetStatus(ctx, env, id, status, visible)
}

func (s *Sequencer) AddNote(ctx context.Context, env types.Env, id types.EntryID, text string) (uint32, error) {
	s.acquire(env)
	defer s.release()
	return s.ledger.AddNote(ctx, env, id, text)
}

func (s *Sequencer) Pause(ctx context.Context, env types.Env) error {
	s.acquire(env)
	defer s.release()
	return s.ledger.Pause(ctx, env)
}

func (s *Sequencer) Unpause(ctx context.Context, env types.Env) error {
	s.acquire(env)
	defer s.release()
	return s.ledger.Unpause(ctx, env)
}

func (s *Sequencer) Entry(ctx context.Context, id types.EntryID) (*types.WasteEntry, error) {
	return s.ledger.Entry(ctx, id)
}

func (s *Sequencer) Version(ctx context.Context, id types.EntryID, number uint32) (*types.VersionRecord, error) {
	return s.ledger.Version(ctx, id, number)
}

func (s *Sequencer) Category(ctx context.Context, id types.EntryID) (*types.CategoryInfo, error) {
	return s.ledger.Category(ctx, id)
}

func (s *Sequencer) Collaborator(ctx context.Context, id types.EntryID, collaborator types.Identity) (*types.CollaboratorGrant, error) {
	return s.ledger.Collaborator(ctx, id, collaborator)
}

func (s *Sequencer) Collaborators(ctx context.Context, id types.EntryID) ([]types.CollaboratorGrant, error) {
	return s.ledger.Collaborators(ctx, id)
}

func (s *Sequencer) Status(ctx context.Context, id types.EntryID) (*types.StatusInfo, error) {
	return s.ledger.Status(ctx, id)
}

func (s *Sequencer) Note(ctx context.Context, id types.EntryID, number uint32) (*types.ComplianceNote, error) {
	return s.ledger.Note(ctx, id, number)
}

func (s *Sequencer) HasPermission(ctx context.Context, id types.EntryID, collaborator types.Identity, token string) (bool, error) {
	return s.ledger.HasPermission(ctx, id, collaborator, token)
}

func (s *Sequencer) Paused(ctx context.Context) (bool, error) {
	return s.ledger.Paused(ctx)
}
