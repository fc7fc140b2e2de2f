package wire

import (
	"bytes"
	"testing"
)

func TestEncodeOpcodeOnly(t *testing.T) {
	payload := Encode(OpOnOffGet)

	if len(payload) != OpcodeOnlyLen {
		t.Fatalf("len = %d, want %d", len(payload), OpcodeOnlyLen)
	}
	// 0x8201 little-endian
	if !bytes.Equal(payload, []byte{0x01, 0x82}) {
		t.Errorf("payload = %x, want 0182", payload)
	}
}

func TestEncodeWithState(t *testing.T) {
	tests := []struct {
		name  string
		op    Opcode
		state byte
		want  []byte
	}{
		{"set on", OpOnOffSet, 1, []byte{0x02, 0x82, 0x01}},
		{"set off", OpOnOffSet, 0, []byte{0x02, 0x82, 0x00}},
		{"set unack", OpOnOffSetUnack, 1, []byte{0x03, 0x82, 0x01}},
		{"status verbatim", OpOnOffStatus, 0x7f, []byte{0x04, 0x82, 0x7f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := Encode(tt.op, tt.state)
			if !bytes.Equal(payload, tt.want) {
				t.Errorf("Encode(%v, %d) = %x, want %x", tt.op, tt.state, payload, tt.want)
			}
		})
	}
}

func TestDecodeOpcode(t *testing.T) {
	op, ok := DecodeOpcode([]byte{0x01, 0x82})
	if !ok {
		t.Fatal("DecodeOpcode failed on valid payload")
	}
	if op != OpOnOffGet {
		t.Errorf("opcode = %v, want ONOFF_GET", op)
	}

	if _, ok := DecodeOpcode([]byte{0x01}); ok {
		t.Error("DecodeOpcode accepted 1-byte payload")
	}
	if _, ok := DecodeOpcode(nil); ok {
		t.Error("DecodeOpcode accepted nil payload")
	}
}

func TestDecodeState(t *testing.T) {
	state, ok := DecodeState([]byte{0x04, 0x82, 0x01})
	if !ok {
		t.Fatal("DecodeState failed on 3-byte payload")
	}
	if state != 1 {
		t.Errorf("state = %d, want 1", state)
	}

	// Only exact opcode+state length carries a state byte.
	if _, ok := DecodeState([]byte{0x01, 0x82}); ok {
		t.Error("DecodeState accepted 2-byte payload")
	}
	if _, ok := DecodeState([]byte{0x04, 0x82, 0x01, 0x00}); ok {
		t.Error("DecodeState accepted 4-byte payload")
	}
}

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpOnOffGet, "ONOFF_GET"},
		{OpOnOffSet, "ONOFF_SET"},
		{OpOnOffSetUnack, "ONOFF_SET_UNACK"},
		{OpOnOffStatus, "ONOFF_STATUS"},
		{Opcode(0x1234), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Opcode(%#x).String() = %q, want %q", uint16(tt.op), got, tt.want)
		}
	}
}

func TestMessageOpcode(t *testing.T) {
	msg := Message{Source: 0x0010, KeyIndex: 0, Payload: Encode(OpOnOffStatus, 1)}

	op, ok := msg.Opcode()
	if !ok || op != OpOnOffStatus {
		t.Errorf("Opcode() = %v, %v, want ONOFF_STATUS, true", op, ok)
	}

	empty := Message{Payload: nil}
	if _, ok := empty.Opcode(); ok {
		t.Error("Opcode() accepted empty payload")
	}
}
