package types

// Limits bounds the satellite collections and free-text fields of
// every entry. Fixed at ledger construction; all replicas of one
// deployment must agree on them.
type Limits struct {
	// Maximum versions per entry.
	MaxVersions uint32 `cramberry:"1"`
	// Maximum distinct live collaborators per entry.
	MaxCollaborators int `cramberry:"2"`
	// Maximum tags in a category update.
	MaxTags int `cramberry:"3"`
	// Maximum description length in bytes.
	MaxDescription int `cramberry:"4"`
	// Maximum compliance-note length in bytes.
	MaxNote int `cramberry:"5"`
}

// DefaultLimits returns the standard deployment bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxVersions:      10,
		MaxCollaborators: 5,
		MaxTags:          15,
		MaxDescription:   500,
		MaxNote:          1000,
	}
}
