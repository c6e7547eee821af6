package wasteledger

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	if got := ErrNotOwner.Error(); got != "wasteledger: caller is not the owner" {
		t.Errorf("unexpected message: %q", got)
	}

	err := NewError(CodeDescriptionTooLong, "%d bytes over limit", 17)
	want := "wasteledger: description too long: 17 bytes over limit"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	detailed := NewError(CodeVersionLimitReached, "entry 4 has 10 versions")
	if !errors.Is(detailed, ErrVersionLimitReached) {
		t.Error("detailed error should match its sentinel")
	}
	if errors.Is(detailed, ErrNoteTooLong) {
		t.Error("errors with different codes must not match")
	}

	// Wrapped.
	wrapped := fmt.Errorf("apply tx: %w", ErrPaused)
	if !errors.Is(wrapped, ErrPaused) {
		t.Error("errors.Is should unwrap")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != CodeOK {
		t.Errorf("CodeOf(nil) = %v", got)
	}
	if got := CodeOf(ErrCollaboratorLimitReached); got != CodeCollaboratorLimitReached {
		t.Errorf("CodeOf(sentinel) = %v", got)
	}
	if got := CodeOf(fmt.Errorf("commit: %w", ErrNotFound)); got != CodeNotFound {
		t.Errorf("CodeOf(wrapped) = %v", got)
	}
	if got := CodeOf(errors.New("disk full")); got != CodeInternal {
		t.Errorf("CodeOf(plain error) = %v", got)
	}
}

func TestCode_StringCoversTaxonomy(t *testing.T) {
	for c := CodeOK; c <= CodeInternal; c++ {
		if s := c.String(); s == "" || s == fmt.Sprintf("unknown(%d)", uint32(c)) {
			t.Errorf("code %d has no name", uint32(c))
		}
	}
	if Code(999).String() != "unknown(999)" {
		t.Error("out-of-range code should format as unknown")
	}
}
