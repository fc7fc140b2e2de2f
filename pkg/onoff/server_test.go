package onoff

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/btmesh-tools/meshnode-go/pkg/model"
	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// fakeSender records outbound traffic.
type fakeSender struct {
	mu sync.Mutex

	sent      []sentPayload
	published []pubPayload
}

type sentPayload struct {
	dest    wire.Address
	key     wire.KeyIndex
	payload []byte
}

type pubPayload struct {
	modelID uint16
	payload []byte
}

func (f *fakeSender) Send(dest wire.Address, key wire.KeyIndex, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentPayload{dest, key, payload})
	return nil
}

func (f *fakeSender) Publish(modelID uint16, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, pubPayload{modelID, payload})
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) publishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func (f *fakeSender) lastSent() sentPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func TestServerInitialStateOff(t *testing.T) {
	s := NewServer(&fakeSender{}, nil)
	if s.State() != StateOff {
		t.Errorf("initial state = %d, want OFF", s.State())
	}
}

func TestServerGet(t *testing.T) {
	sender := &fakeSender{}
	s := NewServer(sender, nil)

	msg := wire.Message{Source: 0x0042, KeyIndex: 3, Payload: wire.Encode(wire.OpOnOffGet)}
	if !s.ProcessMessage(msg) {
		t.Fatal("GET not recognized")
	}

	if s.State() != StateOff {
		t.Error("GET mutated state")
	}
	if sender.sentCount() != 1 {
		t.Fatalf("sent %d replies, want 1", sender.sentCount())
	}

	reply := sender.lastSent()
	if reply.dest != 0x0042 || reply.key != 3 {
		t.Errorf("reply addressed to %v key %d, want source 0042 key 3", reply.dest, reply.key)
	}
	if !bytes.Equal(reply.payload, wire.Encode(wire.OpOnOffStatus, StateOff)) {
		t.Errorf("reply payload = %x, want STATUS OFF", reply.payload)
	}
}

func TestServerSet(t *testing.T) {
	tests := []struct {
		name  string
		op    wire.Opcode
		value byte
	}{
		{"set on", wire.OpOnOffSet, StateOn},
		{"set off", wire.OpOnOffSet, StateOff},
		{"set unack", wire.OpOnOffSetUnack, StateOn},
		{"verbatim non-boolean", wire.OpOnOffSet, 0x2a},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			s := NewServer(sender, nil)

			msg := wire.Message{Source: 0x0010, Payload: wire.Encode(tt.op, tt.value)}
			if !s.ProcessMessage(msg) {
				t.Fatal("SET not recognized")
			}

			// Stored verbatim, not normalized.
			if s.State() != tt.value {
				t.Errorf("state = %d, want %d", s.State(), tt.value)
			}

			// SET_UNACK still answers with a STATUS reply.
			if sender.sentCount() != 1 {
				t.Fatalf("sent %d replies, want 1", sender.sentCount())
			}
			want := wire.Encode(wire.OpOnOffStatus, tt.value)
			if !bytes.Equal(sender.lastSent().payload, want) {
				t.Errorf("reply = %x, want %x", sender.lastSent().payload, want)
			}
		})
	}
}

func TestServerIgnoresUnrecognized(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"foreign opcode", wire.Encode(0x8205, 1)},
		{"status opcode", wire.Encode(wire.OpOnOffStatus, 1)},
		{"get with state byte", wire.Encode(wire.OpOnOffGet, 1)},
		{"set without state byte", wire.Encode(wire.OpOnOffSet)},
		{"too short", []byte{0x01}},
		{"too long", []byte{0x02, 0x82, 0x01, 0x00}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			s := NewServer(sender, nil)

			msg := wire.Message{Source: 0x0010, Payload: tt.payload}
			if s.ProcessMessage(msg) {
				t.Error("unrecognized message reported as recognized")
			}
			if s.State() != StateOff {
				t.Error("unrecognized message mutated state")
			}
			if sender.sentCount() != 0 {
				t.Errorf("sent %d replies, want 0", sender.sentCount())
			}
		})
	}
}

func TestServerApplyConfigBindings(t *testing.T) {
	s := NewServer(&fakeSender{}, nil)

	s.ApplyConfig(model.Config{Bindings: []wire.KeyIndex{0, 2}, HasBindings: true})
	got := s.Bindings()
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("Bindings() = %v, want [0 2]", got)
	}

	// Config without bindings leaves the set unchanged.
	s.ApplyConfig(model.Config{HasPeriod: true, PublicationPeriod: 0})
	if len(s.Bindings()) != 2 {
		t.Error("binding set lost on unrelated config")
	}
}

func TestServerPublication(t *testing.T) {
	sender := &fakeSender{}
	s := NewServer(sender, nil)

	// Below granularity: rejected, no publication starts.
	s.ApplyConfig(model.Config{PublicationPeriod: 500 * time.Millisecond, HasPeriod: true})
	if s.Publishing() {
		t.Fatal("sub-second period started publication")
	}

	s.ApplyConfig(model.Config{PublicationPeriod: 1 * time.Second, HasPeriod: true})
	if !s.Publishing() {
		t.Fatal("publication did not start")
	}

	time.Sleep(1300 * time.Millisecond)
	if sender.publishedCount() < 1 {
		t.Error("no STATUS publication after one period")
	}

	// Zero period cancels.
	s.ApplyConfig(model.Config{PublicationPeriod: 0, HasPeriod: true})
	if s.Publishing() {
		t.Error("publication still active after zero-period config")
	}
}

func TestServerClose(t *testing.T) {
	s := NewServer(&fakeSender{}, nil)
	s.ApplyConfig(model.Config{PublicationPeriod: 1 * time.Second, HasPeriod: true})

	s.Close()
	if s.Publishing() {
		t.Error("publication still active after Close")
	}
}
