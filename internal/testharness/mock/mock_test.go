package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btmesh-tools/meshnode-go/pkg/meshapi"
	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// recordingHandler captures daemon signals.
type recordingHandler struct {
	messages []struct {
		elementIndex int
		msg          wire.Message
	}
	removed bool
}

func (h *recordingHandler) MessageReceived(elementIndex int, msg wire.Message) {
	h.messages = append(h.messages, struct {
		elementIndex int
		msg          wire.Message
	}{elementIndex, msg})
}

func (h *recordingHandler) ServiceRemoved() {
	h.removed = true
}

func TestJoinAssignsDistinctTokens(t *testing.T) {
	d := NewDaemon()

	var tokens []uint64
	for i := 0; i < 3; i++ {
		d.Join(nil, nil, meshapi.Capabilities{},
			func(token uint64) { tokens = append(tokens, token) },
			func(reason string) { t.Fatalf("join failed: %s", reason) })
	}

	require.Len(t, tokens, 3)
	assert.NotEqual(t, tokens[0], tokens[1])
	assert.NotEqual(t, tokens[1], tokens[2])
	assert.Equal(t, 3, d.NodeCount())
}

func TestJoinFailureInjection(t *testing.T) {
	d := NewDaemon()
	d.FailNextJoin("no resources")

	var reason string
	d.Join(nil, nil, meshapi.Capabilities{},
		func(uint64) { t.Fatal("join unexpectedly succeeded") },
		func(r string) { reason = r })
	assert.Equal(t, "no resources", reason)

	// Failure is one-shot.
	joined := false
	d.Join(nil, nil, meshapi.Capabilities{},
		func(uint64) { joined = true },
		func(r string) { t.Fatalf("second join failed: %s", r) })
	assert.True(t, joined)
}

func TestAttachUnknownToken(t *testing.T) {
	d := NewDaemon()

	var gotErr error
	d.Attach(nil, 0xdead,
		func(wire.Address, meshapi.ElementConfigMap) { t.Fatal("attach unexpectedly succeeded") },
		func(err error) { gotErr = err })
	assert.ErrorIs(t, gotErr, ErrUnknownToken)
}

func TestAttachReturnsSeededConfig(t *testing.T) {
	d := NewDaemon()
	d.SeedToken(0xbeef)
	cfg := meshapi.ElementConfigMap{
		0: {{ModelID: 0x1000, Config: meshapi.ModelSettings{
			Bindings: []wire.KeyIndex{0}, HasBindings: true,
		}}},
	}
	d.SetAttachConfig(cfg)

	var gotAddr wire.Address
	var gotCfg meshapi.ElementConfigMap
	d.Attach(nil, 0xbeef,
		func(addr wire.Address, c meshapi.ElementConfigMap) { gotAddr, gotCfg = addr, c },
		func(err error) { t.Fatalf("attach failed: %v", err) })

	assert.NotEqual(t, wire.Unassigned, gotAddr)
	require.Contains(t, gotCfg, 0)
	assert.Equal(t, uint16(0x1000), gotCfg[0][0].ModelID)
}

func TestLeaveDestroysRecord(t *testing.T) {
	d := NewDaemon()
	d.SeedToken(0xbeef)

	ok := false
	d.Leave(0xbeef, func() { ok = true }, func(err error) { t.Fatalf("leave failed: %v", err) })
	require.True(t, ok)
	assert.Equal(t, 0, d.NodeCount())

	// Second leave: the record is gone.
	var gotErr error
	d.Leave(0xbeef, func() { t.Fatal("leave unexpectedly succeeded") },
		func(err error) { gotErr = err })
	assert.ErrorIs(t, gotErr, ErrUnknownToken)
}

func TestRemoteServerRoundTrip(t *testing.T) {
	d := NewDaemon()
	h := &recordingHandler{}
	d.SetHandler(h)
	d.AddRemoteServer(0x0010, 0)

	// SET 1: remote stores and answers STATUS 1 to the sending element.
	err := d.Send(0, 0x0010, 0, wire.Encode(wire.OpOnOffSet, 1))
	require.NoError(t, err)

	state, ok := d.RemoteState(0x0010)
	require.True(t, ok)
	assert.Equal(t, byte(1), state)

	require.Len(t, h.messages, 1)
	reply := h.messages[0]
	assert.Equal(t, 0, reply.elementIndex)
	assert.Equal(t, wire.Address(0x0010), reply.msg.Source)
	assert.Equal(t, wire.Encode(wire.OpOnOffStatus, 1), reply.msg.Payload)

	// GET does not mutate.
	require.NoError(t, d.Send(0, 0x0010, 0, wire.Encode(wire.OpOnOffGet)))
	state, _ = d.RemoteState(0x0010)
	assert.Equal(t, byte(1), state)
	require.Len(t, h.messages, 2)

	// Unrecognized traffic produces no reply.
	require.NoError(t, d.Send(0, 0x0010, 0, wire.Encode(0x8205)))
	assert.Len(t, h.messages, 2)
}

func TestSendWithoutRemoteJustRecords(t *testing.T) {
	d := NewDaemon()
	h := &recordingHandler{}
	d.SetHandler(h)

	require.NoError(t, d.Send(1, 0x0099, 2, wire.Encode(wire.OpOnOffGet)))
	require.Len(t, d.Sent(), 1)
	assert.Equal(t, 1, d.Sent()[0].ElementIndex)
	assert.Empty(t, h.messages)
}

func TestPublishRecorded(t *testing.T) {
	d := NewDaemon()

	require.NoError(t, d.Publish(0, 0x1000, wire.Encode(wire.OpOnOffStatus, 1)))
	pubs := d.Published()
	require.Len(t, pubs, 1)
	assert.Equal(t, uint16(0x1000), pubs[0].ModelID)
}

func TestRemoveService(t *testing.T) {
	d := NewDaemon()
	h := &recordingHandler{}
	d.SetHandler(h)

	d.RemoveService()
	assert.True(t, h.removed)
}

func TestAgentCapabilities(t *testing.T) {
	a := NewAgent()

	caps := a.Capabilities()
	assert.True(t, caps.OutputNumeric)
	assert.True(t, caps.OtherOOB)

	a.DisplayNumeric(1234)
	assert.Equal(t, []uint32{1234}, a.Displayed())
}
