package wire

import "testing"

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input   string
		want    Address
		wantErr bool
	}{
		{"0010", 0x0010, false},
		{"0x0010", 0x0010, false},
		{"C000", 0xc000, false},
		{"ffff", 0xffff, false},
		{"0", 0, false},
		{"10000", 0, true}, // out of 16-bit range
		{"xyz", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseAddress(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAddress(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseAddress(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAddressString(t *testing.T) {
	if got := Address(0x10).String(); got != "0010" {
		t.Errorf("String() = %q, want %q", got, "0010")
	}
}

func TestParseKeyIndex(t *testing.T) {
	idx, err := ParseKeyIndex("0")
	if err != nil || idx != 0 {
		t.Errorf("ParseKeyIndex(\"0\") = %v, %v", idx, err)
	}

	if _, err := ParseKeyIndex("65536"); err == nil {
		t.Error("ParseKeyIndex accepted out-of-range index")
	}
	if _, err := ParseKeyIndex("abc"); err == nil {
		t.Error("ParseKeyIndex accepted non-decimal input")
	}
}
