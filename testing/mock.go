// Package ledgertest provides test utilities for waste ledger hosts
// and backends: a configurable mock, a test harness with an
// auto-advancing ordering counter, and a compliance test suite.
package ledgertest

import (
	"context"
	"sync/atomic"

	"github.com/blockberries/wasteledger"
	"github.com/blockberries/wasteledger/types"
)

// Compile-time interface check.
var _ wasteledger.Ledger = (*MockLedger)(nil)

// MockLedger is a configurable mock ledger for host and transport
// testing. All methods are configurable via function fields;
// unconfigured methods return zero-value defaults.
type MockLedger struct {
	RegisterFn          func(context.Context, types.Env, types.Registration) (types.EntryID, error)
	TransferOwnershipFn func(context.Context, types.Env, types.EntryID, types.Identity) error
	AppendVersionFn     func(context.Context, types.Env, types.EntryID, types.Digest, string) (uint32, error)
	SetCategoryFn       func(context.Context, types.Env, types.EntryID, string, []string) error
	AddCollaboratorFn   func(context.Context, types.Env, types.EntryID, types.Identity, string, []string) error
	SetStatusFn         func(context.Context, types.Env, types.EntryID, string, bool) error
	AddNoteFn           func(context.Context, types.Env, types.EntryID, string) (uint32, error)
	PauseFn             func(context.Context, types.Env) error
	UnpauseFn           func(context.Context, types.Env) error

	EntryFn         func(context.Context, types.EntryID) (*types.WasteEntry, error)
	VersionFn       func(context.Context, types.EntryID, uint32) (*types.VersionRecord, error)
	CategoryFn      func(context.Context, types.EntryID) (*types.CategoryInfo, error)
	CollaboratorFn  func(context.Context, types.EntryID, types.Identity) (*types.CollaboratorGrant, error)
	CollaboratorsFn func(context.Context, types.EntryID) ([]types.CollaboratorGrant, error)
	StatusFn        func(context.Context, types.EntryID) (*types.StatusInfo, error)
	NoteFn          func(context.Context, types.EntryID, uint32) (*types.ComplianceNote, error)
	HasPermissionFn func(context.Context, types.EntryID, types.Identity, string) (bool, error)
	PausedFn        func(context.Context) (bool, error)

	// Call counters (atomic for concurrent access).
	RegisterCalls atomic.Int64
	MutationCalls atomic.Int64
	ReadCalls     atomic.Int64
}

func (m *MockLedger) Register(ctx context.Context, env types.Env, reg types.Registration) (types.EntryID, error) {
	m.RegisterCalls.Add(1)
	m.MutationCalls.Add(1)
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, env, reg)
	}
	return 1, nil
}

func (m *MockLedger) TransferOwnership(ctx context.Context, env types.Env, id types.EntryID, newOwner types.Identity) error {
	m.MutationCalls.Add(1)
	if m.TransferOwnershipFn != nil {
		return m.TransferOwnershipFn(ctx, env, id, newOwner)
	}
	return nil
}

func (m *MockLedger) AppendVersion(ctx context.Context, env types.Env, id types.EntryID, digest types.Digest, notes string) (uint32, error) {
	m.MutationCalls.Add(1)
	if m.AppendVersionFn != nil {
		return m.AppendVersionFn(ctx, env, id, digest, notes)
	}
	return 1, nil
}

func (m *MockLedger) SetCategory(ctx context.Context, env types.Env, id types.EntryID, label string, tags []string) error {
	m.MutationCalls.Add(1)
	if m.SetCategoryFn != nil {
		return m.SetCategoryFn(ctx, env, id, label, tags)
	}
	return nil
}

func (m *MockLedger) AddCollaborator(ctx context.Context, env types.Env, id types.EntryID, collaborator types.Identity, role string, permissions []string) error {
	m.MutationCalls.Add(1)
	if m.AddCollaboratorFn != nil {
		return m.AddCollaboratorFn(ctx, env, id, collaborator, role, permissions)
	}
	return nil
}

func (m *MockLedger) SetStatus(ctx context.Context, env types.Env, id types.EntryID, status string, visible bool) error {
	m.MutationCalls.Add(1)
	if m.SetStatusFn != nil {
		return m.SetStatusFn(ctx, env, id, status, visible)
	}
	return nil
}

func (m *MockLedger) AddNote(ctx context.Context, env types.Env, id types.EntryID, text string) (uint32, error) {
	m.MutationCalls.Add(1)
	if m.AddNoteFn != nil {
		return m.AddNoteFn(ctx, env, id, text)
	}
	return 1, nil
}

func (m *MockLedger) Pause(ctx context.Context, env types.Env) error {
	m.MutationCalls.Add(1)
	if m.PauseFn != nil {
		return m.PauseFn(ctx, env)
	}
	return nil
}

func (m *MockLedger) Unpause(ctx context.Context, env types.Env) error {
	m.MutationCalls.Add(1)
	if m.UnpauseFn != nil {
		return m.UnpauseFn(ctx, env)
	}
	return nil
}

func (m *MockLedger) Entry(ctx context.Context, id types.EntryID) (*types.WasteEntry, error) {
	m.ReadCalls.Add(1)
	if m.EntryFn != nil {
		return m.EntryFn(ctx, id)
	}
	return nil, nil
}

func (m *MockLedger) Version(ctx context.Context, id types.EntryID, number uint32) (*types.VersionRecord, error) {
	m.ReadCalls.Add(1)
	if m.VersionFn != nil {
		return m.VersionFn(ctx, id, number)
	}
	return nil, nil
}

func (m *MockLedger) Category(ctx context.Context, id types.EntryID) (*types.CategoryInfo, error) {
	m.ReadCalls.Add(1)
	if m.CategoryFn != nil {
		return m.CategoryFn(ctx, id)
	}
	return nil, nil
}

func (m *MockLedger) Collaborator(ctx context.Context, id types.EntryID, collaborator types.Identity) (*types.CollaboratorGrant, error) {
	m.ReadCalls.Add(1)
	if m.CollaboratorFn != nil {
		return m.CollaboratorFn(ctx, id, collaborator)
	}
	return nil, nil
}

func (m *MockLedger) Collaborators(ctx context.Context, id types.EntryID) ([]types.CollaboratorGrant, error) {
	m.ReadCalls.Add(1)
	if m.CollaboratorsFn != nil {
		return m.CollaboratorsFn(ctx, id)
	}
	return nil, nil
}

func (m *MockLedger) Status(ctx context.Context, id types.EntryID) (*types.StatusInfo, error) {
	m.ReadCalls.Add(1)
	if m.StatusFn != nil {
		return m.StatusFn(ctx, id)
	}
	return nil, nil
}

func (m *MockLedger) Note(ctx context.Context, id types.EntryID, number uint32) (*types.ComplianceNote, error) {
	m.ReadCalls.Add(1)
	if m.NoteFn != nil {
		return m.NoteFn(ctx, id, number)
	}
	return nil, nil
}

func (m *MockLedger) HasPermission(ctx context.Context, id types.EntryID, collaborator types.Identity, token string) (bool, error) {
	m.ReadCalls.Add(1)
	if m.HasPermissionFn != nil {
		return m.HasPermissionFn(ctx, id, collaborator, token)
	}
	return false, nil
}

func (m *MockLedger) Paused(ctx context.Context) (bool, error) {
	m.ReadCalls.Add(1)
	if m.PausedFn != nil {
		return m.PausedFn(ctx)
	}
	return false, nil
}
