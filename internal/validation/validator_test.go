package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Text  string `json:"text" validate:"required"`
	Genre string `json:"genre,omitempty" validate:"max=5"`
	Level string `json:"-" validate:"omitempty,oneof=low high"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantErr string
	}{
		{"ok", sample{Text: "hi", Genre: "pop"}, ""},
		{"required", sample{}, "text is required"},
		{"max", sample{Text: "hi", Genre: "classical"}, "genre must be at most 5 characters"},
		{"oneof", sample{Text: "hi", Level: "mid"}, "Level must be one of: low high"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.in)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
			var verr *Error
			if !errors.As(err, &verr) || len(verr.Fields) != 1 {
				t.Errorf("expected a single field error, got %#v", err)
			}
		})
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	err := ValidateStruct(&sample{Genre: "electronic"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "text is required") || !strings.Contains(err.Error(), "; ") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
