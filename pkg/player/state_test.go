// ABOUTME: Tests for the state enumeration
// ABOUTME: Tests string representations
package player

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StatePlaying, "playing"},
		{StatePaused, "paused"},
		{StateEnded, "ended"},
		{StateResetting, "resetting"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
