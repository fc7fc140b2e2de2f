package onoff

import (
	"log/slog"
	"sync"

	"github.com/btmesh-tools/meshnode-go/pkg/model"
	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// StatusHandler reports a decoded STATUS from a remote server model.
type StatusHandler func(source wire.Address, state byte)

// Compile-time check: Client implements model.Model.
var _ model.Model = (*Client)(nil)

// Client is the stateless OnOff client model. It issues GET/SET requests
// and decodes STATUS reports; replies are not correlated to the request
// that caused them beyond the transport's own request/response pairing.
type Client struct {
	mu sync.Mutex

	bindings []wire.KeyIndex

	sender   Sender
	onStatus StatusHandler
	logger   *slog.Logger
}

// NewClient creates an OnOff client. onStatus may be nil.
func NewClient(sender Sender, onStatus StatusHandler, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		sender:   sender,
		onStatus: onStatus,
		logger:   logger,
	}
}

// ModelID returns the OnOff client model ID.
func (c *Client) ModelID() uint16 {
	return ClientModelID
}

// VendorID returns the SIG sentinel; the client is a standard model.
func (c *Client) VendorID() uint16 {
	return model.NoVendor
}

// Get requests the remote state from dest over key.
func (c *Client) Get(dest wire.Address, key wire.KeyIndex) error {
	return c.sender.Send(dest, key, wire.Encode(wire.OpOnOffGet))
}

// Set writes value to dest over key. The value is sent verbatim; any
// non-zero byte reads back as ON.
func (c *Client) Set(dest wire.Address, key wire.KeyIndex, value byte) error {
	return c.sender.Send(dest, key, wire.Encode(wire.OpOnOffSet, value))
}

// ProcessMessage recognizes STATUS reports and hands them to the status
// handler. Everything else is silently ignored.
func (c *Client) ProcessMessage(msg wire.Message) bool {
	op, ok := msg.Opcode()
	if !ok || op != wire.OpOnOffStatus {
		return false
	}
	state, ok := wire.DecodeState(msg.Payload)
	if !ok {
		return false
	}

	c.logger.Info("onoff status",
		"source", msg.Source.String(), "state", StateLabel(state))
	if c.onStatus != nil {
		c.onStatus(msg.Source, state)
	}
	return true
}

// ApplyConfig replaces the binding set. The client has no publication.
func (c *Client) ApplyConfig(cfg model.Config) {
	if cfg.HasBindings {
		c.mu.Lock()
		c.bindings = append([]wire.KeyIndex(nil), cfg.Bindings...)
		c.mu.Unlock()
	}
}

// Bindings returns the configured application key bindings.
func (c *Client) Bindings() []wire.KeyIndex {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]wire.KeyIndex, len(c.bindings))
	copy(result, c.bindings)
	return result
}
