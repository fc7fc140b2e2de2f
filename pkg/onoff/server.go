package onoff

import (
	"log/slog"
	"sync"

	"github.com/btmesh-tools/meshnode-go/pkg/model"
	"github.com/btmesh-tools/meshnode-go/pkg/publication"
	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// Model IDs for the generic OnOff models.
const (
	ServerModelID uint16 = 0x1000
	ClientModelID uint16 = 0x1001
)

// State byte values. Any non-zero byte received in a SET is stored
// verbatim and reported as ON.
const (
	StateOff byte = 0x00
	StateOn  byte = 0x01
)

// StateLabel returns the human-readable label for a state byte.
func StateLabel(state byte) string {
	if state == StateOff {
		return "OFF"
	}
	return "ON"
}

// Sender is the outbound path a model uses to answer requests and emit
// publications. The service implementation marshals calls onto the event
// loop, so models may invoke it from timer goroutines.
type Sender interface {
	// Send transmits a unicast payload from the model's element.
	Send(dest wire.Address, key wire.KeyIndex, payload []byte) error

	// Publish emits an unsolicited publication for modelID.
	Publish(modelID uint16, payload []byte) error
}

// Compile-time check: Server implements model.Model and model.Closer.
var (
	_ model.Model  = (*Server)(nil)
	_ model.Closer = (*Server)(nil)
)

// Server is the stateful OnOff server model.
type Server struct {
	mu sync.Mutex

	state    byte
	bindings []wire.KeyIndex

	sender Sender
	sched  *publication.Scheduler
	logger *slog.Logger
}

// NewServer creates an OnOff server with state OFF.
func NewServer(sender Sender, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		sender: sender,
		sched:  publication.NewScheduler(),
		logger: logger,
	}
}

// ModelID returns the OnOff server model ID.
func (s *Server) ModelID() uint16 {
	return ServerModelID
}

// VendorID returns the SIG sentinel; the server is a standard model.
func (s *Server) VendorID() uint16 {
	return model.NoVendor
}

// State returns the current state byte.
func (s *Server) State() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Bindings returns the configured application key bindings.
func (s *Server) Bindings() []wire.KeyIndex {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]wire.KeyIndex, len(s.bindings))
	copy(result, s.bindings)
	return result
}

// ProcessMessage handles GET, SET, and SET_UNACK. Every recognized request
// is answered with a STATUS reply to the source over the request's key
// index; SET_UNACK included, a deliberate harness simplification.
func (s *Server) ProcessMessage(msg wire.Message) bool {
	op, ok := msg.Opcode()
	if !ok {
		return false
	}

	switch op {
	case wire.OpOnOffGet:
		if len(msg.Payload) != wire.OpcodeOnlyLen {
			return false
		}

	case wire.OpOnOffSet, wire.OpOnOffSetUnack:
		state, ok := wire.DecodeState(msg.Payload)
		if !ok {
			return false
		}
		s.mu.Lock()
		s.state = state
		s.mu.Unlock()
		s.logger.Debug("onoff state set",
			"state", StateLabel(state), "source", msg.Source.String())

	default:
		return false
	}

	s.respondStatus(msg.Source, msg.KeyIndex)
	return true
}

// ApplyConfig replaces the binding set and updates periodic publication.
// Periods below the scheduler granularity are rejected as a no-op; a zero
// period cancels publication.
func (s *Server) ApplyConfig(cfg model.Config) {
	if cfg.HasBindings {
		s.mu.Lock()
		s.bindings = append([]wire.KeyIndex(nil), cfg.Bindings...)
		s.mu.Unlock()
	}

	if !cfg.HasPeriod {
		return
	}
	if cfg.PublicationPeriod == 0 {
		s.sched.Cancel()
		return
	}
	if err := s.sched.Start(cfg.PublicationPeriod, s.publishStatus); err != nil {
		s.logger.Warn("publication period rejected",
			"period", cfg.PublicationPeriod, "err", err)
	}
}

// Close cancels periodic publication. Must be called on teardown so no
// timer fires into a torn-down application.
func (s *Server) Close() {
	s.sched.Cancel()
}

// Publishing reports whether periodic publication is active.
func (s *Server) Publishing() bool {
	return s.sched.Active()
}

func (s *Server) respondStatus(dest wire.Address, key wire.KeyIndex) {
	payload := wire.Encode(wire.OpOnOffStatus, s.State())
	if err := s.sender.Send(dest, key, payload); err != nil {
		s.logger.Warn("status reply failed", "dest", dest.String(), "err", err)
	}
}

func (s *Server) publishStatus() {
	payload := wire.Encode(wire.OpOnOffStatus, s.State())
	if err := s.sender.Publish(ServerModelID, payload); err != nil {
		s.logger.Warn("status publication failed", "err", err)
	}
}
