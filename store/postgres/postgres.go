// Package postgres provides a PostgreSQL store backend on the pgx
// stdlib driver. Schema changes are shipped as embedded goose
// migrations and applied on Open.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/blockberries/wasteledger/store"
	"github.com/blockberries/wasteledger/types"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a postgres-backed store.Store implementation.
type Store struct {
	db *sql.DB
}

// Open connects to the database at dsn and brings the schema up to
// date.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) View(ctx context.Context, fn func(store.Tx) error) error {
	pg, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("postgres begin view: %w", err)
	}
	defer pg.Rollback()
	return fn(&tx{ctx: ctx, pg: pg})
}

func (s *Store) Update(ctx context.Context, fn func(store.Tx) error) error {
	pg, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres begin update: %w", err)
	}
	if err := fn(&tx{ctx: ctx, pg: pg}); err != nil {
		pg.Rollback()
		return err
	}
	if err := pg.Commit(); err != nil {
		return fmt.Errorf("postgres commit: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

type tx struct {
	ctx context.Context
	pg  *sql.Tx
}

var _ store.Tx = (*tx)(nil)

func (t *tx) Global() (store.Global, error) {
	var g store.Global
	err := t.pg.QueryRowContext(t.ctx,
		`SELECT admin, paused, last_entry_id FROM global WHERE id = 1`,
	).Scan(&g.Admin, &g.Paused, &g.LastEntryID)
	if err != nil {
		return store.Global{}, fmt.Errorf("postgres read global: %w", err)
	}
	return g, nil
}

func (t *tx) PutGlobal(g store.Global) error {
	_, err := t.pg.ExecContext(t.ctx,
		`UPDATE global SET admin = $1, paused = $2, last_entry_id = $3 WHERE id = 1`,
		g.Admin, g.Paused, g.LastEntryID)
	if err != nil {
		return fmt.Errorf("postgres write global: %w", err)
	}
	return nil
}

func (t *tx) Entry(id types.EntryID) (*types.WasteEntry, error) {
	e := types.WasteEntry{ID: id}
	err := t.pg.QueryRowContext(t.ctx,
		`SELECT digest, owner, category, quantity, unit, description, location, created_at
		 FROM entries WHERE id = $1`, id,
	).Scan(&e.Digest, &e.Owner, &e.Category, &e.Quantity, &e.Unit, &e.Description, &e.Location, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres read entry %d: %w", id, err)
	}
	return &e, nil
}

func (t *tx) PutEntry(e types.WasteEntry) error {
	_, err := t.pg.ExecContext(t.ctx,
		`INSERT INTO entries (id, digest, owner, category, quantity, unit, description, location, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET owner = excluded.owner`,
		e.ID, []byte(e.Digest), e.Owner, e.Category, e.Quantity, e.Unit, e.Description, e.Location, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres write entry %d: %w", e.ID, err)
	}
	return nil
}

func (t *tx) Version(id types.EntryID, number uint32) (*types.VersionRecord, error) {
	v := types.VersionRecord{Entry: id, Number: number}
	err := t.pg.QueryRowContext(t.ctx,
		`SELECT digest, notes, created_at FROM versions WHERE entry_id = $1 AND number = $2`,
		id, number,
	).Scan(&v.Digest, &v.Notes, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres read version %d/%d: %w", id, number, err)
	}
	return &v, nil
}

func (t *tx) VersionCount(id types.EntryID) (uint32, error) {
	var n uint32
	err := t.pg.QueryRowContext(t.ctx,
		`SELECT COUNT(*) FROM versions WHERE entry_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres count versions %d: %w", id, err)
	}
	return n, nil
}

func (t *tx) PutVersion(v types.VersionRecord) error {
	_, err := t.pg.ExecContext(t.ctx,
		`INSERT INTO versions (entry_id, number, digest, notes, created_at) VALUES ($1, $2, $3, $4, $5)`,
		v.Entry, v.Number, []byte(v.Digest), v.Notes, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres write version %d/%d: %w", v.Entry, v.Number, err)
	}
	return nil
}

func (t *tx) Category(id types.EntryID) (*types.CategoryInfo, error) {
	ci := types.CategoryInfo{Entry: id}
	var tags string
	err := t.pg.QueryRowContext(t.ctx,
		`SELECT label, tags, updated_at FROM categories WHERE entry_id = $1`, id,
	).Scan(&ci.Label, &tags, &ci.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres read category %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tags), &ci.Tags); err != nil {
		return nil, fmt.Errorf("postgres decode tags %d: %w", id, err)
	}
	return &ci, nil
}

func (t *tx) PutCategory(ci types.CategoryInfo) error {
	tags, err := json.Marshal(ci.Tags)
	if err != nil {
		return fmt.Errorf("postgres encode tags %d: %w", ci.Entry, err)
	}
	_, err = t.pg.ExecContext(t.ctx,
		`INSERT INTO categories (entry_id, label, tags, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (entry_id) DO UPDATE SET
			label = excluded.label, tags = excluded.tags, updated_at = excluded.updated_at`,
		ci.Entry, ci.Label, string(tags), ci.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres write category %d: %w", ci.Entry, err)
	}
	return nil
}

func (t *tx) Collaborator(id types.EntryID, who types.Identity) (*types.CollaboratorGrant, error) {
	g := types.CollaboratorGrant{Entry: id, Collaborator: who}
	var perms string
	err := t.pg.QueryRowContext(t.ctx,
		`SELECT role, permissions, joined_at FROM collaborators WHERE entry_id = $1 AND collaborator = $2`,
		id, who,
	).Scan(&g.Role, &perms, &g.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres read grant %d/%s: %w", id, who, err)
	}
	if err := json.Unmarshal([]byte(perms), &g.Permissions); err != nil {
		return nil, fmt.Errorf("postgres decode permissions %d/%s: %w", id, who, err)
	}
	return &g, nil
}

func (t *tx) Collaborators(id types.EntryID) ([]types.CollaboratorGrant, error) {
	rows, err := t.pg.QueryContext(t.ctx,
		`SELECT collaborator, role, permissions, joined_at FROM collaborators
		 WHERE entry_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("postgres list grants %d: %w", id, err)
	}
	defer rows.Close()

	var gs []types.CollaboratorGrant
	for rows.Next() {
		g := types.CollaboratorGrant{Entry: id}
		var perms string
		if err := rows.Scan(&g.Collaborator, &g.Role, &perms, &g.JoinedAt); err != nil {
			return nil, fmt.Errorf("postgres scan grant: %w", err)
		}
		if err := json.Unmarshal([]byte(perms), &g.Permissions); err != nil {
			return nil, fmt.Errorf("postgres decode permissions: %w", err)
		}
		gs = append(gs, g)
	}
	return gs, rows.Err()
}

func (t *tx) PutCollaborator(g types.CollaboratorGrant) error {
	perms, err := json.Marshal(g.Permissions)
	if err != nil {
		return fmt.Errorf("postgres encode permissions %d/%s: %w", g.Entry, g.Collaborator, err)
	}
	// seq is assigned on first insert and kept on overwrite, so join
	// order survives re-grants.
	_, err = t.pg.ExecContext(t.ctx,
		`INSERT INTO collaborators (entry_id, collaborator, role, permissions, joined_at, seq)
		 VALUES ($1, $2, $3, $4, $5, (SELECT COALESCE(MAX(seq), 0) + 1 FROM collaborators WHERE entry_id = $1))
		 ON CONFLICT (entry_id, collaborator) DO UPDATE SET
			role = excluded.role, permissions = excluded.permissions, joined_at = excluded.joined_at`,
		g.Entry, g.Collaborator, g.Role, string(perms), g.JoinedAt)
	if err != nil {
		return fmt.Errorf("postgres write grant %d/%s: %w", g.Entry, g.Collaborator, err)
	}
	return nil
}

func (t *tx) Status(id types.EntryID) (*types.StatusInfo, error) {
	si := types.StatusInfo{Entry: id}
	err := t.pg.QueryRowContext(t.ctx,
		`SELECT status, visible, updated_at FROM statuses WHERE entry_id = $1`, id,
	).Scan(&si.Status, &si.Visible, &si.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres read status %d: %w", id, err)
	}
	return &si, nil
}

func (t *tx) PutStatus(si types.StatusInfo) error {
	_, err := t.pg.ExecContext(t.ctx,
		`INSERT INTO statuses (entry_id, status, visible, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (entry_id) DO UPDATE SET
			status = excluded.status, visible = excluded.visible, updated_at = excluded.updated_at`,
		si.Entry, si.Status, si.Visible, si.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres write status %d: %w", si.Entry, err)
	}
	return nil
}

func (t *tx) Note(id types.EntryID, number uint32) (*types.ComplianceNote, error) {
	n := types.ComplianceNote{Entry: id, Number: number}
	err := t.pg.QueryRowContext(t.ctx,
		`SELECT body, author, created_at FROM notes WHERE entry_id = $1 AND number = $2`,
		id, number,
	).Scan(&n.Text, &n.Author, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres read note %d/%d: %w", id, number, err)
	}
	return &n, nil
}

func (t *tx) NoteCount(id types.EntryID) (uint32, error) {
	var n uint32
	err := t.pg.QueryRowContext(t.ctx,
		`SELECT COUNT(*) FROM notes WHERE entry_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres count notes %d: %w", id, err)
	}
	return n, nil
}

func (t *tx) PutNote(n types.ComplianceNote) error {
	_, err := t.pg.ExecContext(t.ctx,
		`INSERT INTO notes (entry_id, number, body, author, created_at) VALUES ($1, $2, $3, $4, $5)`,
		n.Entry, n.Number, n.Text, n.Author, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres write note %d/%d: %w", n.Entry, n.Number, err)
	}
	return nil
}
