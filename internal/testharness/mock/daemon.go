// Package mock provides an in-process mesh daemon simulation for tests and
// for the node binary's simulation mode. It implements the meshapi.Daemon
// surface with deterministic, synchronous callback delivery and supports
// injected failures plus simulated remote OnOff servers.
package mock

import (
	"errors"
	"sync"

	"github.com/btmesh-tools/meshnode-go/pkg/meshapi"
	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// Daemon errors surfaced through the async error callbacks.
var (
	ErrUnknownToken = errors.New("unknown node token")
	ErrNotJoined    = errors.New("node not attached")
)

// SentMessage records one unicast send.
type SentMessage struct {
	ElementIndex int
	Dest         wire.Address
	Key          wire.KeyIndex
	Payload      []byte
}

// Publication records one unsolicited publication.
type Publication struct {
	ElementIndex int
	ModelID      uint16
	Payload      []byte
}

// nodeRecord is the daemon-side state for one provisioned node.
type nodeRecord struct {
	token uint64
	addr  wire.Address
	cfg   meshapi.ElementConfigMap
}

// remoteServer simulates a remote OnOff server element the node can talk
// to. It answers GET/SET/SET_UNACK with a STATUS back to the sender.
type remoteServer struct {
	addr  wire.Address
	state byte
}

// Daemon is the simulated mesh daemon.
type Daemon struct {
	mu sync.Mutex

	handler meshapi.Handler

	nodes     map[uint64]*nodeRecord
	nextToken uint64
	nextAddr  wire.Address

	remotes map[wire.Address]*remoteServer

	sent      []SentMessage
	published []Publication

	// Failure injection. A non-empty joinFailReason fails the next Join;
	// attachErr/leaveErr fail Attach/Leave while set.
	joinFailReason string
	attachErr      error
	leaveErr       error

	// attachCfg is handed out on successful attach.
	attachCfg meshapi.ElementConfigMap
}

// Compile-time check: *Daemon implements meshapi.Daemon.
var _ meshapi.Daemon = (*Daemon)(nil)

// NewDaemon creates an empty simulated daemon.
func NewDaemon() *Daemon {
	return &Daemon{
		nodes:     make(map[uint64]*nodeRecord),
		remotes:   make(map[wire.Address]*remoteServer),
		nextToken: 0x76bd4f2372477007,
		nextAddr:  0x0100,
	}
}

// SetHandler registers the application's signal handler.
func (d *Daemon) SetHandler(h meshapi.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = h
}

// SetAttachConfig sets the element configuration map returned by the next
// successful Attach.
func (d *Daemon) SetAttachConfig(cfg meshapi.ElementConfigMap) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attachCfg = cfg
}

// FailNextJoin makes the next Join fail with reason.
func (d *Daemon) FailNextJoin(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.joinFailReason = reason
}

// FailAttach makes Attach fail with err until reset with nil.
func (d *Daemon) FailAttach(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attachErr = err
}

// FailLeave makes Leave fail with err until reset with nil.
func (d *Daemon) FailLeave(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.leaveErr = err
}

// SeedToken pre-provisions a node record for token, as if a previous run
// had joined with it.
func (d *Daemon) SeedToken(token uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seedLocked(token)
}

func (d *Daemon) seedLocked(token uint64) *nodeRecord {
	rec := &nodeRecord{token: token, addr: d.nextAddr}
	d.nextAddr += 0x10
	d.nodes[token] = rec
	return rec
}

// AddRemoteServer creates a simulated remote OnOff server at addr with the
// given initial state.
func (d *Daemon) AddRemoteServer(addr wire.Address, state byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remotes[addr] = &remoteServer{addr: addr, state: state}
}

// RemoteState returns the state byte of the simulated server at addr.
func (d *Daemon) RemoteState(addr wire.Address) (byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.remotes[addr]
	if !ok {
		return 0, false
	}
	return r.state, true
}

// Join simulates the provisioning handshake: a token is assigned and the
// completion callback invoked synchronously.
func (d *Daemon) Join(_ meshapi.Application, _ []byte, _ meshapi.Capabilities,
	onComplete func(token uint64), onFailed func(reason string)) {
	d.mu.Lock()
	if d.joinFailReason != "" {
		reason := d.joinFailReason
		d.joinFailReason = ""
		d.mu.Unlock()
		onFailed(reason)
		return
	}

	token := d.nextToken
	d.nextToken++
	d.seedLocked(token)
	d.mu.Unlock()

	onComplete(token)
}

// Attach registers the node for the process lifetime and returns its
// unicast address plus the configured element map.
func (d *Daemon) Attach(_ meshapi.Application, token uint64,
	onSuccess func(addr wire.Address, cfg meshapi.ElementConfigMap),
	onError func(err error)) {
	d.mu.Lock()
	if d.attachErr != nil {
		err := d.attachErr
		d.mu.Unlock()
		onError(err)
		return
	}
	rec, ok := d.nodes[token]
	if !ok {
		d.mu.Unlock()
		onError(ErrUnknownToken)
		return
	}
	cfg := d.attachCfg
	rec.cfg = cfg
	addr := rec.addr
	d.mu.Unlock()

	onSuccess(addr, cfg)
}

// Leave permanently destroys the node record for token.
func (d *Daemon) Leave(token uint64, onSuccess func(), onError func(err error)) {
	d.mu.Lock()
	if d.leaveErr != nil {
		err := d.leaveErr
		d.mu.Unlock()
		onError(err)
		return
	}
	if _, ok := d.nodes[token]; !ok {
		d.mu.Unlock()
		onError(ErrUnknownToken)
		return
	}
	delete(d.nodes, token)
	d.mu.Unlock()

	onSuccess()
}

// Send records the message and, when a simulated remote server exists at
// dest, processes it there and delivers the STATUS reply back to the
// sending element.
func (d *Daemon) Send(elementIndex int, dest wire.Address, key wire.KeyIndex, payload []byte) error {
	d.mu.Lock()
	d.sent = append(d.sent, SentMessage{
		ElementIndex: elementIndex,
		Dest:         dest,
		Key:          key,
		Payload:      append([]byte(nil), payload...),
	})
	remote := d.remotes[dest]
	handler := d.handler
	var reply []byte
	if remote != nil {
		reply = remote.process(payload)
	}
	d.mu.Unlock()

	if reply != nil && handler != nil {
		handler.MessageReceived(elementIndex, wire.Message{
			Source:   dest,
			KeyIndex: key,
			Payload:  reply,
		})
	}
	return nil
}

// Publish records the publication.
func (d *Daemon) Publish(elementIndex int, modelID uint16, payload []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, Publication{
		ElementIndex: elementIndex,
		ModelID:      modelID,
		Payload:      append([]byte(nil), payload...),
	})
	return nil
}

// Deliver injects an inbound message for the element at index, as if a
// remote peer had addressed the node.
func (d *Daemon) Deliver(elementIndex int, msg wire.Message) {
	d.mu.Lock()
	handler := d.handler
	d.mu.Unlock()

	if handler != nil {
		handler.MessageReceived(elementIndex, msg)
	}
}

// RemoveService simulates the daemon going away.
func (d *Daemon) RemoveService() {
	d.mu.Lock()
	handler := d.handler
	d.mu.Unlock()

	if handler != nil {
		handler.ServiceRemoved()
	}
}

// Sent returns a copy of all recorded unicast sends.
func (d *Daemon) Sent() []SentMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]SentMessage, len(d.sent))
	copy(result, d.sent)
	return result
}

// Published returns a copy of all recorded publications.
func (d *Daemon) Published() []Publication {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]Publication, len(d.published))
	copy(result, d.published)
	return result
}

// NodeCount returns the number of provisioned node records.
func (d *Daemon) NodeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.nodes)
}

// process applies OnOff semantics to one request payload and returns the
// STATUS reply, or nil for unrecognized traffic.
func (r *remoteServer) process(payload []byte) []byte {
	op, ok := wire.DecodeOpcode(payload)
	if !ok {
		return nil
	}

	switch op {
	case wire.OpOnOffGet:
		if len(payload) != wire.OpcodeOnlyLen {
			return nil
		}
	case wire.OpOnOffSet, wire.OpOnOffSetUnack:
		state, ok := wire.DecodeState(payload)
		if !ok {
			return nil
		}
		r.state = state
	default:
		return nil
	}

	return wire.Encode(wire.OpOnOffStatus, r.state)
}
