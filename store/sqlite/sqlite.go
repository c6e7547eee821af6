// Package sqlite provides an embedded durable store backend on the
// pure-Go modernc.org/sqlite driver. Tag and permission lists are
// stored as JSON arrays to keep their insertion order.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blockberries/wasteledger/store"
	"github.com/blockberries/wasteledger/types"

	_ "modernc.org/sqlite"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS global (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	admin         TEXT    NOT NULL,
	paused        INTEGER NOT NULL,
	last_entry_id INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	id          INTEGER PRIMARY KEY,
	digest      BLOB    NOT NULL,
	owner       TEXT    NOT NULL,
	category    TEXT    NOT NULL,
	quantity    INTEGER NOT NULL,
	unit        TEXT    NOT NULL,
	description TEXT    NOT NULL,
	location    TEXT    NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS versions (
	entry_id   INTEGER NOT NULL,
	number     INTEGER NOT NULL,
	digest     BLOB    NOT NULL,
	notes      TEXT    NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (entry_id, number)
);
CREATE TABLE IF NOT EXISTS categories (
	entry_id   INTEGER PRIMARY KEY,
	label      TEXT    NOT NULL,
	tags       TEXT    NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS collaborators (
	entry_id     INTEGER NOT NULL,
	collaborator TEXT    NOT NULL,
	role         TEXT    NOT NULL,
	permissions  TEXT    NOT NULL,
	joined_at    INTEGER NOT NULL,
	seq          INTEGER NOT NULL,
	PRIMARY KEY (entry_id, collaborator)
);
CREATE TABLE IF NOT EXISTS statuses (
	entry_id   INTEGER PRIMARY KEY,
	status     TEXT    NOT NULL,
	visible    INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS notes (
	entry_id   INTEGER NOT NULL,
	number     INTEGER NOT NULL,
	body       TEXT    NOT NULL,
	author     TEXT    NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (entry_id, number)
);
`

// Store is a sqlite-backed store.Store implementation.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies
// the schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open %s: %w", path, err)
	}
	// Single connection: sqlite allows one writer, and the ledger's
	// apply order is sequential anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite apply schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT OR IGNORE INTO global (id, admin, paused, last_entry_id) VALUES (1, '', 0, 0)`,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite seed global row: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) View(ctx context.Context, fn func(store.Tx) error) error {
	sq, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin view: %w", err)
	}
	defer sq.Rollback()
	return fn(&tx{ctx: ctx, sq: sq})
}

func (s *Store) Update(ctx context.Context, fn func(store.Tx) error) error {
	sq, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin update: %w", err)
	}
	if err := fn(&tx{ctx: ctx, sq: sq}); err != nil {
		sq.Rollback()
		return err
	}
	if err := sq.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

type tx struct {
	ctx context.Context
	sq  *sql.Tx
}

var _ store.Tx = (*tx)(nil)

func (t *tx) Global() (store.Global, error) {
	var g store.Global
	var paused int
	err := t.sq.QueryRowContext(t.ctx,
		`SELECT admin, paused, last_entry_id FROM global WHERE id = 1`,
	).Scan(&g.Admin, &paused, &g.LastEntryID)
	if err != nil {
		return store.Global{}, fmt.Errorf("sqlite read global: %w", err)
	}
	g.Paused = paused != 0
	return g, nil
}

func (t *tx) PutGlobal(g store.Global) error {
	_, err := t.sq.ExecContext(t.ctx,
		`UPDATE global SET admin = ?, paused = ?, last_entry_id = ? WHERE id = 1`,
		g.Admin, boolInt(g.Paused), g.LastEntryID)
	if err != nil {
		return fmt.Errorf("sqlite write global: %w", err)
	}
	return nil
}

func (t *tx) Entry(id types.EntryID) (*types.WasteEntry, error) {
	e := types.WasteEntry{ID: id}
	err := t.sq.QueryRowContext(t.ctx,
		`SELECT digest, owner, category, quantity, unit, description, location, created_at
		 FROM entries WHERE id = ?`, id,
	).Scan(&e.Digest, &e.Owner, &e.Category, &e.Quantity, &e.Unit, &e.Description, &e.Location, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite read entry %d: %w", id, err)
	}
	return &e, nil
}

func (t *tx) PutEntry(e types.WasteEntry) error {
	_, err := t.sq.ExecContext(t.ctx,
		`INSERT INTO entries (id, digest, owner, category, quantity, unit, description, location, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET owner = excluded.owner`,
		e.ID, []byte(e.Digest), e.Owner, e.Category, e.Quantity, e.Unit, e.Description, e.Location, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlite write entry %d: %w", e.ID, err)
	}
	return nil
}

func (t *tx) Version(id types.EntryID, number uint32) (*types.VersionRecord, error) {
	v := types.VersionRecord{Entry: id, Number: number}
	err := t.sq.QueryRowContext(t.ctx,
		`SELECT digest, notes, created_at FROM versions WHERE entry_id = ? AND number = ?`,
		id, number,
	).Scan(&v.Digest, &v.Notes, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite read version %d/%d: %w", id, number, err)
	}
	return &v, nil
}

func (t *tx) VersionCount(id types.EntryID) (uint32, error) {
	var n uint32
	err := t.sq.QueryRowContext(t.ctx,
		`SELECT COUNT(*) FROM versions WHERE entry_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite count versions %d: %w", id, err)
	}
	return n, nil
}

func (t *tx) PutVersion(v types.VersionRecord) error {
	_, err := t.sq.ExecContext(t.ctx,
		`INSERT INTO versions (entry_id, number, digest, notes, created_at) VALUES (?, ?, ?, ?, ?)`,
		v.Entry, v.Number, []byte(v.Digest), v.Notes, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlite write version %d/%d: %w", v.Entry, v.Number, err)
	}
	return nil
}

func (t *tx) Category(id types.EntryID) (*types.CategoryInfo, error) {
	ci := types.CategoryInfo{Entry: id}
	var tags string
	err := t.sq.QueryRowContext(t.ctx,
		`SELECT label, tags, updated_at FROM categories WHERE entry_id = ?`, id,
	).Scan(&ci.Label, &tags, &ci.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite read category %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tags), &ci.Tags); err != nil {
		return nil, fmt.Errorf("sqlite decode tags %d: %w", id, err)
	}
	return &ci, nil
}

func (t *tx) PutCategory(ci types.CategoryInfo) error {
	tags, err := json.Marshal(ci.Tags)
	if err != nil {
		return fmt.Errorf("sqlite encode tags %d: %w", ci.Entry, err)
	}
	_, err = t.sq.ExecContext(t.ctx,
		`INSERT INTO categories (entry_id, label, tags, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(entry_id) DO UPDATE SET
			label = excluded.label, tags = excluded.tags, updated_at = excluded.updated_at`,
		ci.Entry, ci.Label, string(tags), ci.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite write category %d: %w", ci.Entry, err)
	}
	return nil
}

func (t *tx) Collaborator(id types.EntryID, who types.Identity) (*types.CollaboratorGrant, error) {
	g := types.CollaboratorGrant{Entry: id, Collaborator: who}
	var perms string
	err := t.sq.QueryRowContext(t.ctx,
		`SELECT role, permissions, joined_at FROM collaborators WHERE entry_id = ? AND collaborator = ?`,
		id, who,
	).Scan(&g.Role, &perms, &g.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite read grant %d/%s: %w", id, who, err)
	}
	if err := json.Unmarshal([]byte(perms), &g.Permissions); err != nil {
		return nil, fmt.Errorf("sqlite decode permissions %d/%s: %w", id, who, err)
	}
	return &g, nil
}

func (t *tx) Collaborators(id types.EntryID) ([]types.CollaboratorGrant, error) {
	rows, err := t.sq.QueryContext(t.ctx,
		`SELECT collaborator, role, permissions, joined_at FROM collaborators
		 WHERE entry_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite list grants %d: %w", id, err)
	}
	defer rows.Close()

	var gs []types.CollaboratorGrant
	for rows.Next() {
		g := types.CollaboratorGrant{Entry: id}
		var perms string
		if err := rows.Scan(&g.Collaborator, &g.Role, &perms, &g.JoinedAt); err != nil {
			return nil, fmt.Errorf("sqlite scan grant: %w", err)
		}
		if err := json.Unmarshal([]byte(perms), &g.Permissions); err != nil {
			return nil, fmt.Errorf("sqlite decode permissions: %w", err)
		}
		gs = append(gs, g)
	}
	return gs, rows.Err()
}

func (t *tx) PutCollaborator(g types.CollaboratorGrant) error {
	perms, err := json.Marshal(g.Permissions)
	if err != nil {
		return fmt.Errorf("sqlite encode permissions %d/%s: %w", g.Entry, g.Collaborator, err)
	}
	// seq is assigned on first insert and kept on overwrite, so join
	// order survives re-grants.
	_, err = t.sq.ExecContext(t.ctx,
		`INSERT INTO collaborators (entry_id, collaborator, role, permissions, joined_at, seq)
		 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM collaborators WHERE entry_id = ?))
		 ON CONFLICT(entry_id, collaborator) DO UPDATE SET
			role = excluded.role, permissions = excluded.permissions, joined_at = excluded.joined_at`,
		g.Entry, g.Collaborator, g.Role, string(perms), g.JoinedAt, g.Entry)
	if err != nil {
		return fmt.Errorf("sqlite write grant %d/%s: %w", g.Entry, g.Collaborator, err)
	}
	return nil
}

func (t *tx) Status(id types.EntryID) (*types.StatusInfo, error) {
	si := types.StatusInfo{Entry: id}
	var visible int
	err := t.sq.QueryRowContext(t.ctx,
		`SELECT status, visible, updated_at FROM statuses WHERE entry_id = ?`, id,
	).Scan(&si.Status, &visible, &si.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite read status %d: %w", id, err)
	}
	si.Visible = visible != 0
	return &si, nil
}

func (t *tx) PutStatus(si types.StatusInfo) error {
	_, err := t.sq.ExecContext(t.ctx,
		`INSERT INTO statuses (entry_id, status, visible, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(entry_id) DO UPDATE SET
			status = excluded.status, visible = excluded.visible, updated_at = excluded.updated_at`,
		si.Entry, si.Status, boolInt(si.Visible), si.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite write status %d: %w", si.Entry, err)
	}
	return nil
}

func (t *tx) Note(id types.EntryID, number uint32) (*types.ComplianceNote, error) {
	n := types.ComplianceNote{Entry: id, Number: number}
	err := t.sq.QueryRowContext(t.ctx,
		`SELECT body, author, created_at FROM notes WHERE entry_id = ? AND number = ?`,
		id, number,
	).Scan(&n.Text, &n.Author, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite read note %d/%d: %w", id, number, err)
	}
	return &n, nil
}

func (t *tx) NoteCount(id types.EntryID) (uint32, error) {
	var n uint32
	err := t.sq.QueryRowContext(t.ctx,
		`SELECT COUNT(*) FROM notes WHERE entry_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite count notes %d: %w", id, err)
	}
	return n, nil
}

func (t *tx) PutNote(n types.ComplianceNote) error {
	_, err := t.sq.ExecContext(t.ctx,
		`INSERT INTO notes (entry_id, number, body, author, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.Entry, n.Number, n.Text, n.Author, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlite write note %d/%d: %w", n.Entry, n.Number, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
