package model

import (
	"time"

	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// NoVendor is the vendor ID sentinel marking a standard SIG model.
// Models with any other vendor ID are vendor-specific and are not
// advertised on the daemon's generic discovery surface.
const NoVendor uint16 = 0xffff

// Model is a protocol role hosted on an element.
//
// ProcessMessage reports whether the model recognized the message. A model
// must return false, without side effects, for any opcode or payload length
// outside its vocabulary.
type Model interface {
	// ModelID returns the 16-bit model identifier.
	ModelID() uint16

	// VendorID returns the 16-bit vendor identifier, or NoVendor for a
	// standard SIG model.
	VendorID() uint16

	// ProcessMessage handles one inbound message and reports recognition.
	ProcessMessage(msg wire.Message) bool

	// ApplyConfig applies daemon-supplied configuration (bindings and
	// publication period). Concerns absent from cfg are left unchanged.
	ApplyConfig(cfg Config)
}

// Closer is implemented by models that hold resources (typically a
// publication scheduler) needing release on teardown.
type Closer interface {
	Close()
}

// Config carries the per-model configuration an element applies.
// The daemon delivers it on attach (restored from its persistent store)
// and on remote configuration changes. Unset concerns are skipped.
type Config struct {
	// Bindings replaces the model's application key binding set when
	// HasBindings is true.
	Bindings    []wire.KeyIndex
	HasBindings bool

	// PublicationPeriod updates the model's periodic publication when
	// HasPeriod is true. Zero disables publication.
	PublicationPeriod time.Duration
	HasPeriod         bool
}
