package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestCodeOfAndStatusOf(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"validation", NewValidationError("bad field", "age", 5), CodeValidation, 400},
		{"provider", NewProviderError("down", "gemini", nil), CodeProvider, 502},
		{"store", NewStoreError("failed", "save", "lessons", nil), CodeStore, 500},
		{"wrapped", fmt.Errorf("context: %w", NewValidationError("bad", "f", nil)), CodeValidation, 400},
		{"untyped", stderrors.New("plain"), CodeService, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.wantCode {
				t.Errorf("CodeOf = %q, want %q", got, tt.wantCode)
			}
			if got := StatusOf(tt.err); got != tt.wantStatus {
				t.Errorf("StatusOf = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := stderrors.New("root cause")
	err := NewCacheError("get failed", "get", "k", cause)

	if !stderrors.Is(err, cause) {
		t.Error("typed error must unwrap to its cause")
	}
	if msg := err.Error(); msg != "get failed: root cause" {
		t.Errorf("Error() = %q", msg)
	}
}
