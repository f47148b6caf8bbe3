package errors

import (
	"fmt"
	"testing"
)

func TestIsTypeFollowsWrapChain(t *testing.T) {
	base := Store("query comparables", fmt.Errorf("connection refused"))
	wrapped := fmt.Errorf("rank: %w", base)

	if !IsType(wrapped, TypeStore) {
		t.Errorf("IsType(wrapped, TypeStore) = false, want true")
	}
	if IsType(wrapped, TypeInsight) {
		t.Errorf("IsType(wrapped, TypeInsight) = true, want false")
	}
	if got := TypeOf(fmt.Errorf("plain")); got != TypeInternal {
		t.Errorf("TypeOf(plain) = %s, want %s", got, TypeInternal)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"without cause", Input("project category is required"), "[INPUT_ERROR] project category is required"},
		{"with cause", Config("decode rates", fmt.Errorf("bad block")), "[CONFIG_ERROR] decode rates: bad block"},
		{"transition", Transition("accepted", "sent"), "[TRANSITION_ERROR] cannot move estimate from accepted to sent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
