package node

import "testing"

func TestParseTokenValid(t *testing.T) {
	tests := []struct {
		input string
		want  Token
	}{
		{"0123456789abcdef", 0x0123456789abcdef},
		{"0123456789ABCDEF", 0x0123456789abcdef}, // case-insensitive
		{"0000000000000000", 0},
		{"ffffffffffffffff", 0xffffffffffffffff},
	}

	for _, tt := range tests {
		got, err := ParseToken(tt.input)
		if err != nil {
			t.Errorf("ParseToken(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseToken(%q) = %x, want %x", tt.input, uint64(got), uint64(tt.want))
		}
	}
}

func TestParseTokenInvalid(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"xyz", ErrTokenLength},
		{"", ErrTokenLength},
		{"0123456789abcde", ErrTokenLength},   // 15 chars
		{"0123456789abcdef0", ErrTokenLength}, // 17 chars
		{"0123456789abcdeg", ErrTokenFormat},
		{"0123456789 bcdef", ErrTokenFormat},
		{"-123456789abcdef", ErrTokenFormat},
	}

	for _, tt := range tests {
		if _, err := ParseToken(tt.input); err != tt.wantErr {
			t.Errorf("ParseToken(%q) error = %v, want %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	const text = "0123456789abcdef"
	token, err := ParseToken(text)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if token.String() != text {
		t.Errorf("String() = %q, want %q", token.String(), text)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnset, "UNSET"},
		{StateJoining, "JOINING"},
		{StateDetached, "DETACHED"},
		{StateAttaching, "ATTACHING"},
		{StateAttached, "ATTACHED"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateTokenBearing(t *testing.T) {
	bearing := map[State]bool{
		StateUnset:     false,
		StateJoining:   false,
		StateDetached:  true,
		StateAttaching: true,
		StateAttached:  true,
	}
	for state, want := range bearing {
		if got := state.TokenBearing(); got != want {
			t.Errorf("%v.TokenBearing() = %v, want %v", state, got, want)
		}
	}
}
