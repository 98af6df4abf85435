package apperr

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestFromDB(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), ErrNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, ErrConflict},
		{"anything else", errors.New("connection refused"), ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDB(tt.in)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("FromDB(%v) = %v, want kind %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKind(t *testing.T) {
	if k := Kind(Validation("slug %q is malformed", "A B")); k != ErrValidation {
		t.Errorf("expected validation kind, got %v", k)
	}
	if k := Kind(Forbidden("publish")); k != ErrForbidden {
		t.Errorf("expected forbidden kind, got %v", k)
	}
	if k := Kind(errors.New("boom")); k != ErrUnavailable {
		t.Errorf("unclassified errors should map to unavailable, got %v", k)
	}
}
