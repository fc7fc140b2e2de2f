package onoff

import (
	"bytes"
	"testing"

	"github.com/btmesh-tools/meshnode-go/pkg/model"
	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

func TestClientGet(t *testing.T) {
	sender := &fakeSender{}
	c := NewClient(sender, nil, nil)

	if err := c.Get(0x0010, 0); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if sender.sentCount() != 1 {
		t.Fatalf("sent %d messages, want 1", sender.sentCount())
	}
	sent := sender.lastSent()
	if sent.dest != 0x0010 || sent.key != 0 {
		t.Errorf("sent to %v key %d, want 0010 key 0", sent.dest, sent.key)
	}
	if !bytes.Equal(sent.payload, wire.Encode(wire.OpOnOffGet)) {
		t.Errorf("payload = %x, want GET", sent.payload)
	}
}

func TestClientSetVerbatim(t *testing.T) {
	sender := &fakeSender{}
	c := NewClient(sender, nil, nil)

	// Value is not validated to 0/1.
	if err := c.Set(0x0010, 0, 0x2a); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	want := wire.Encode(wire.OpOnOffSet, 0x2a)
	if !bytes.Equal(sender.lastSent().payload, want) {
		t.Errorf("payload = %x, want %x", sender.lastSent().payload, want)
	}
}

func TestClientStatusReport(t *testing.T) {
	var gotSource wire.Address
	var gotState byte
	calls := 0

	c := NewClient(&fakeSender{}, func(source wire.Address, state byte) {
		gotSource = source
		gotState = state
		calls++
	}, nil)

	msg := wire.Message{Source: 0x0010, Payload: wire.Encode(wire.OpOnOffStatus, StateOn)}
	if !c.ProcessMessage(msg) {
		t.Fatal("STATUS not recognized")
	}

	if calls != 1 {
		t.Fatalf("handler called %d times, want 1", calls)
	}
	if gotSource != 0x0010 || gotState != StateOn {
		t.Errorf("handler got (%v, %d), want (0010, 1)", gotSource, gotState)
	}
	if StateLabel(gotState) != "ON" {
		t.Errorf("StateLabel(%d) = %q, want ON", gotState, StateLabel(gotState))
	}
}

func TestClientIgnoresUnrecognized(t *testing.T) {
	calls := 0
	c := NewClient(&fakeSender{}, func(wire.Address, byte) { calls++ }, nil)

	tests := []struct {
		name    string
		payload []byte
	}{
		{"get opcode", wire.Encode(wire.OpOnOffGet)},
		{"set opcode", wire.Encode(wire.OpOnOffSet, 1)},
		{"status without state", wire.Encode(wire.OpOnOffStatus)},
		{"status too long", []byte{0x04, 0x82, 0x01, 0x00}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c.ProcessMessage(wire.Message{Source: 1, Payload: tt.payload}) {
				t.Error("unrecognized message reported as recognized")
			}
		})
	}
	if calls != 0 {
		t.Errorf("handler called %d times, want 0", calls)
	}
}

func TestClientStateLabels(t *testing.T) {
	if StateLabel(0) != "OFF" {
		t.Errorf("StateLabel(0) = %q, want OFF", StateLabel(0))
	}
	// Anything non-zero reads as ON.
	for _, v := range []byte{1, 2, 0xff} {
		if StateLabel(v) != "ON" {
			t.Errorf("StateLabel(%d) = %q, want ON", v, StateLabel(v))
		}
	}
}

func TestClientApplyConfig(t *testing.T) {
	c := NewClient(&fakeSender{}, nil, nil)

	c.ApplyConfig(model.Config{Bindings: []wire.KeyIndex{1}, HasBindings: true})
	if got := c.Bindings(); len(got) != 1 || got[0] != 1 {
		t.Errorf("Bindings() = %v, want [1]", got)
	}
}
