package wasteledger

import (
	"errors"
	"fmt"
)

// Code identifies why the ledger rejected an operation. Codes are
// stable across process restarts and transports: the gRPC layer
// carries them verbatim, so a remote caller sees the same code a
// local one would.
type Code uint32

const (
	// CodeOK is the zero code; it never appears inside an Error.
	CodeOK Code = iota
	// CodePaused: the process-wide gate is engaged.
	CodePaused
	// CodeNotPaused: unpause was requested but the gate is not engaged.
	CodeNotPaused
	// CodeNotFound: no entry exists under the given id.
	CodeNotFound
	// CodeNotOwner: the caller is not the entry's current owner.
	CodeNotOwner
	// CodeNotAuthorized: the caller is neither owner, delegated
	// collaborator, nor administrator, as the operation requires.
	CodeNotAuthorized
	// CodeInvalidDigest: the content digest is empty.
	CodeInvalidDigest
	// CodeInvalidQuantity: the quantity is zero or negative.
	CodeInvalidQuantity
	// CodeInvalidCategory: the category label is empty.
	CodeInvalidCategory
	// CodeDescriptionTooLong: the description exceeds Limits.MaxDescription.
	CodeDescriptionTooLong
	// CodeInvalidRole: the collaborator role label is empty.
	CodeInvalidRole
	// CodeInvalidStatus: the status label is empty.
	CodeInvalidStatus
	// CodeInvalidTag: a tag in the set is empty.
	CodeInvalidTag
	// CodeTagLimitExceeded: the tag set exceeds Limits.MaxTags.
	CodeTagLimitExceeded
	// CodeCollaboratorLimitReached: the entry already has
	// Limits.MaxCollaborators distinct live grants.
	CodeCollaboratorLimitReached
	// CodeVersionLimitReached: the entry already has
	// Limits.MaxVersions versions.
	CodeVersionLimitReached
	// CodeNoteTooLong: the note exceeds Limits.MaxNote.
	CodeNoteTooLong
	// CodeInternal: a substrate or transport failure, not a
	// ledger-rule rejection.
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodePaused:
		return "paused"
	case CodeNotPaused:
		return "not paused"
	case CodeNotFound:
		return "entry not found"
	case CodeNotOwner:
		return "caller is not the owner"
	case CodeNotAuthorized:
		return "not authorized"
	case CodeInvalidDigest:
		return "invalid digest"
	case CodeInvalidQuantity:
		return "invalid quantity"
	case CodeInvalidCategory:
		return "invalid category label"
	case CodeDescriptionTooLong:
		return "description too long"
	case CodeInvalidRole:
		return "invalid role"
	case CodeInvalidStatus:
		return "invalid status"
	case CodeInvalidTag:
		return "invalid tag"
	case CodeTagLimitExceeded:
		return "tag limit exceeded"
	case CodeCollaboratorLimitReached:
		return "collaborator limit reached"
	case CodeVersionLimitReached:
		return "version limit reached"
	case CodeNoteTooLong:
		return "note too long"
	case CodeInternal:
		return "internal error"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(c))
	}
}

// Error is a typed ledger rejection. A rejected call leaves all
// state unchanged.
//
// Two Errors match under errors.Is when their codes are equal, so
// callers can test against the package sentinels regardless of any
// detail text:
//
//	if errors.Is(err, wasteledger.ErrNotOwner) { ... }
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return "wasteledger: " + e.Code.String()
	}
	return fmt.Sprintf("wasteledger: %s: %s", e.Code, e.Detail)
}

// Is matches by code, making sentinels usable as errors.Is targets.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates an Error with a formatted detail message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the rejection code from an error. It returns
// CodeOK for nil and CodeInternal for errors that did not originate
// as ledger rejections.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Sentinel rejections, one per code. Returned directly by the core
// where no extra detail is useful, and valid targets for errors.Is
// in every case.
var (
	ErrPaused                   = &Error{Code: CodePaused}
	ErrNotPaused                = &Error{Code: CodeNotPaused}
	ErrNotFound                 = &Error{Code: CodeNotFound}
	ErrNotOwner                 = &Error{Code: CodeNotOwner}
	ErrNotAuthorized            = &Error{Code: CodeNotAuthorized}
	ErrInvalidDigest            = &Error{Code: CodeInvalidDigest}
	ErrInvalidQuantity          = &Error{Code: CodeInvalidQuantity}
	ErrInvalidCategory          = &Error{Code: CodeInvalidCategory}
	ErrDescriptionTooLong       = &Error{Code: CodeDescriptionTooLong}
	ErrInvalidRole              = &Error{Code: CodeInvalidRole}
	ErrInvalidStatus            = &Error{Code: CodeInvalidStatus}
	ErrInvalidTag               = &Error{Code: CodeInvalidTag}
	ErrTagLimitExceeded         = &Error{Code: CodeTagLimitExceeded}
	ErrCollaboratorLimitReached = &Error{Code: CodeCollaboratorLimitReached}
	ErrVersionLimitReached      = &Error{Code: CodeVersionLimitReached}
	ErrNoteTooLong              = &Error{Code: CodeNoteTooLong}
)
