package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestTaxonomy(t *testing.T) {
	cause := stderrors.New("disk full")

	tests := []struct {
		name     string
		err      error
		sentinel error
		expected bool
	}{
		{"storage", Storage("save", cause), ErrStorage, false},
		{"platform", Platform("ban", cause), ErrPlatformRejected, false},
		{"permission", PermissionDenied("ban members"), ErrPermissionDenied, true},
		{"not found", NotFound("member"), ErrNotFound, true},
		{"disabled", FeatureDisabled("warn"), ErrFeatureDisabled, true},
		{"wrapped storage", fmt.Errorf("patch: %w", Storage("save", cause)), ErrStorage, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Is(tt.err, tt.sentinel) {
				t.Errorf("Is(%v, %v) = false, want true", tt.err, tt.sentinel)
			}
			if got := IsExpected(tt.err); got != tt.expected {
				t.Errorf("IsExpected() = %v, want %v", got, tt.expected)
			}
			if UserMessage(tt.err) == "" {
				t.Error("UserMessage should not be empty")
			}
		})
	}
}

func TestStorageUnwrap(t *testing.T) {
	cause := stderrors.New("permission denied by os")
	err := Storage("save", cause)

	if !Is(err, cause) {
		t.Error("StorageError should unwrap to its cause")
	}

	var se *StorageError
	if !As(err, &se) || se.Op != "save" {
		t.Errorf("As(*StorageError) failed, got %+v", se)
	}
	if Is(err, ErrPlatformRejected) {
		t.Error("storage failures must stay distinct from platform failures")
	}
}

func TestNilWrapping(t *testing.T) {
	if Storage("save", nil) != nil {
		t.Error("Storage(nil) should be nil")
	}
	if Platform("ban", nil) != nil {
		t.Error("Platform(nil) should be nil")
	}
}

func TestUserMessageDistinct(t *testing.T) {
	storage := UserMessage(Storage("save", stderrors.New("x")))
	platform := UserMessage(Platform("ban", stderrors.New("x")))
	if storage == platform {
		t.Error("storage and platform failures should read differently")
	}
}
