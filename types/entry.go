package types

// Registration carries the caller-supplied fields of a new waste
// entry. All business fields are immutable after registration; only
// the content digest (via versions) and the owner (via transfer)
// evolve afterwards.
type Registration struct {
	// Content fingerprint at creation time. Must be non-empty.
	Digest Digest `cramberry:"1"`
	// Waste-type label, e.g. "hazardous". Must be non-empty.
	Category string `cramberry:"2"`
	// Amount of waste in Unit. Must be positive.
	Quantity int64 `cramberry:"3"`
	// Unit of measure, e.g. "kg".
	Unit string `cramberry:"4"`
	// Free-text description, bounded by Limits.MaxDescription.
	Description string `cramberry:"5"`
	// Free-text origin location.
	Location string `cramberry:"6"`
}

// WasteEntry is the root aggregate: one registered waste record. An
// entry, once created, is never deleted.
type WasteEntry struct {
	ID          EntryID  `cramberry:"1"`
	Digest      Digest   `cramberry:"2"`
	Owner       Identity `cramberry:"3"`
	Category    string   `cramberry:"4"`
	Quantity    int64    `cramberry:"5"`
	Unit        string   `cramberry:"6"`
	Description string   `cramberry:"7"`
	Location    string   `cramberry:"8"`
	// Ordering-counter value at registration. Immutable.
	CreatedAt uint64 `cramberry:"9"`
}

// VersionRecord is one append-only content-hash update. Version
// numbers for an entry form a contiguous sequence starting at 1.
type VersionRecord struct {
	Entry     EntryID `cramberry:"1"`
	Number    uint32  `cramberry:"2"`
	Digest    Digest  `cramberry:"3"`
	Notes     string  `cramberry:"4"`
	CreatedAt uint64  `cramberry:"5"`
}

// CategoryInfo is the entry's single live categorization: a label
// plus an ordered tag set. Replaced wholesale on every update, never
// merged.
type CategoryInfo struct {
	Entry     EntryID  `cramberry:"1"`
	Label     string   `cramberry:"2"`
	Tags      []string `cramberry:"3"`
	UpdatedAt uint64   `cramberry:"4"`
}

// CollaboratorGrant binds a role and an ordered permission token
// list to a collaborator identity on one entry. A repeat grant to
// the same identity overwrites in place.
type CollaboratorGrant struct {
	Entry        EntryID  `cramberry:"1"`
	Collaborator Identity `cramberry:"2"`
	Role         string   `cramberry:"3"`
	Permissions  []string `cramberry:"4"`
	// Ordering-counter value of the most recent grant.
	JoinedAt uint64 `cramberry:"5"`
}

// HasPermission reports whether the grant's permission list contains
// the token. A plain membership test — tokens carry no structure.
func (g CollaboratorGrant) HasPermission(token string) bool {
	for _, p := range g.Permissions {
		if p == token {
			return true
		}
	}
	return false
}

// StatusInfo is the entry's single live (status, visibility) pair.
// Always fully overwritten on update.
type StatusInfo struct {
	Entry     EntryID `cramberry:"1"`
	Status    string  `cramberry:"2"`
	Visible   bool    `cramberry:"3"`
	UpdatedAt uint64  `cramberry:"4"`
}

// ComplianceNote is one append-only free-text annotation. Notes are
// immutable once written; there is no edit or delete path.
type ComplianceNote struct {
	Entry     EntryID  `cramberry:"1"`
	Number    uint32   `cramberry:"2"`
	Text      string   `cramberry:"3"`
	Author    Identity `cramberry:"4"`
	CreatedAt uint64   `cramberry:"5"`
}
