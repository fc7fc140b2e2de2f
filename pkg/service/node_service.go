package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/btmesh-tools/meshnode-go/pkg/log"
	"github.com/btmesh-tools/meshnode-go/pkg/meshapi"
	"github.com/btmesh-tools/meshnode-go/pkg/model"
	"github.com/btmesh-tools/meshnode-go/pkg/node"
	"github.com/btmesh-tools/meshnode-go/pkg/persistence"
	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// Config configures a NodeService.
type Config struct {
	// App is the application to register with the daemon.
	App *model.Application

	// Daemon is the external mesh daemon.
	Daemon meshapi.Daemon

	// Agent is the provisioning agent; nil disables joining.
	Agent meshapi.ProvisionAgent

	// Logger is the debug logger; nil uses slog.Default().
	Logger *slog.Logger

	// ProtocolLogger captures structured protocol events; nil disables.
	ProtocolLogger log.Logger

	// StateStore persists token and element config; nil disables.
	StateStore *persistence.NodeStateStore
}

// NodeService orchestrates one mesh node: it owns the event loop, the
// lifecycle manager, and the application, and is the handler the daemon
// delivers signals to.
type NodeService struct {
	mu sync.Mutex

	app     *model.Application
	daemon  meshapi.Daemon
	manager *node.Manager
	loop    *Loop

	logger   *slog.Logger
	protoLog log.Logger
	store    *persistence.NodeStateStore

	onShutdown    func()
	onStateChange func(old, new node.State)
}

// Compile-time check: *NodeService implements meshapi.Handler.
var _ meshapi.Handler = (*NodeService)(nil)

// NewNodeService creates a node service from cfg.
func NewNodeService(cfg Config) *NodeService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	protoLog := cfg.ProtocolLogger
	if protoLog == nil {
		protoLog = log.NoopLogger{}
	}

	s := &NodeService{
		app:      cfg.App,
		daemon:   cfg.Daemon,
		loop:     NewLoop(logger),
		logger:   logger,
		protoLog: protoLog,
		store:    cfg.StateStore,
	}
	s.manager = node.NewManager(cfg.Daemon, cfg.Agent, cfg.App, s.loop.Post, logger)

	s.manager.OnStateChange(func(old, new node.State) {
		s.protoLog.Log(log.NewLifecycleEvent(old.String(), new.String(), ""))

		s.mu.Lock()
		fn := s.onStateChange
		s.mu.Unlock()
		if fn != nil {
			fn(old, new)
		}
	})
	s.manager.OnAttached(s.handleAttached)
	s.manager.OnRemoved(s.handleRemoved)

	return s
}

// Manager returns the lifecycle manager.
func (s *NodeService) Manager() *node.Manager {
	return s.manager
}

// App returns the application.
func (s *NodeService) App() *model.Application {
	return s.app
}

// OnStateChange sets a callback for lifecycle transitions. It runs after
// the transition has been logged.
func (s *NodeService) OnStateChange(fn func(old, new node.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStateChange = fn
}

// Start runs the event loop and restores a persisted token, if any.
// A token supplied externally via Manager().SetToken beforehand wins over
// the persisted one.
func (s *NodeService) Start() {
	s.loop.Start()

	if s.store == nil || s.manager.State() != node.StateUnset {
		return
	}
	state, err := s.store.Load()
	if err != nil {
		s.logger.Warn("state restore failed", "err", err)
		return
	}
	if state == nil || state.Token == "" {
		return
	}
	if s.manager.SetToken(state.Token) {
		s.logger.Info("token restored", "token", state.Token)
	}
}

// Stop cancels every model's publication scheduler and halts the event
// loop. Schedulers are cancelled first so no timer fires into a torn-down
// application.
func (s *NodeService) Stop() {
	s.app.Close()
	s.loop.Stop()
}

// OnShutdown sets the callback invoked when the daemon goes away.
func (s *NodeService) OnShutdown(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onShutdown = fn
}

// SenderFor returns the outbound path for models on the element at index.
// Sends are marshaled onto the event loop; failures are reported through
// the protocol log once, with no retry.
func (s *NodeService) SenderFor(elementIndex int) *ElementSender {
	return &ElementSender{svc: s, elementIndex: elementIndex}
}

// MessageReceived implements meshapi.Handler. The message is dispatched to
// the target element on the event loop.
func (s *NodeService) MessageReceived(elementIndex int, msg wire.Message) {
	s.loop.Post(func() {
		op, _ := msg.Opcode()
		s.protoLog.Log(log.NewMessageEvent(log.DirectionIn, elementIndex, log.MessageEvent{
			Opcode:   uint16(op),
			Peer:     uint16(msg.Source),
			KeyIndex: uint16(msg.KeyIndex),
			Length:   len(msg.Payload),
		}))
		s.app.Dispatch(elementIndex, msg)
	})
}

// ServiceRemoved implements meshapi.Handler: the daemon is going away, so
// the whole harness tears down cleanly.
func (s *NodeService) ServiceRemoved() {
	s.logger.Warn("mesh daemon removed, shutting down")
	s.protoLog.Log(log.NewErrorEvent("mesh daemon removed", "shutdown"))

	s.mu.Lock()
	fn := s.onShutdown
	s.mu.Unlock()

	s.Stop()
	if fn != nil {
		fn()
	}
}

// handleAttached persists the token and the restored element config.
func (s *NodeService) handleAttached(addr wire.Address, cfg meshapi.ElementConfigMap) {
	if s.store == nil {
		return
	}

	state := &persistence.NodeState{
		Token:    s.manager.Token().String(),
		NodeAddr: uint16(addr),
	}
	for index, models := range cfg {
		es := persistence.ElementState{Index: index}
		for _, mc := range models {
			ms := persistence.ModelState{ModelID: mc.ModelID}
			if mc.Config.HasBindings {
				for _, k := range mc.Config.Bindings {
					ms.Bindings = append(ms.Bindings, uint16(k))
				}
			}
			if mc.Config.HasPeriod {
				ms.PublicationPeriodMS = mc.Config.PublicationPeriod.Milliseconds()
			}
			es.Models = append(es.Models, ms)
		}
		state.Elements = append(state.Elements, es)
	}

	if err := s.store.Save(state); err != nil {
		s.logger.Warn("state save failed", "err", err)
	}
}

// handleRemoved clears the persisted state; the daemon-side configuration
// for the token is gone for good.
func (s *NodeService) handleRemoved() {
	if s.store == nil {
		return
	}
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("state clear failed", "err", err)
	}
}

// ElementSender is the per-element outbound path handed to models.
type ElementSender struct {
	svc          *NodeService
	elementIndex int
}

// Send transmits a unicast payload from the element. The call is marshaled
// onto the event loop, so it is safe from timer goroutines; daemon errors
// are reported through the protocol log.
func (e *ElementSender) Send(dest wire.Address, key wire.KeyIndex, payload []byte) error {
	e.svc.loop.Post(func() {
		e.logOutbound(payload, dest, key, false)
		if err := e.svc.daemon.Send(e.elementIndex, dest, key, payload); err != nil {
			e.svc.logger.Warn("send failed", "dest", dest.String(), "err", err)
			e.svc.protoLog.Log(log.NewErrorEvent(err.Error(), "send"))
		}
	})
	return nil
}

// Publish emits an unsolicited publication for modelID from the element.
func (e *ElementSender) Publish(modelID uint16, payload []byte) error {
	e.svc.loop.Post(func() {
		e.logOutbound(payload, wire.Unassigned, 0, true)
		if err := e.svc.daemon.Publish(e.elementIndex, modelID, payload); err != nil {
			e.svc.logger.Warn("publish failed", "model", modelID, "err", err)
			e.svc.protoLog.Log(log.NewErrorEvent(err.Error(), "publish"))
		}
	})
	return nil
}

func (e *ElementSender) logOutbound(payload []byte, peer wire.Address, key wire.KeyIndex, publication bool) {
	op, _ := wire.DecodeOpcode(payload)
	e.svc.protoLog.Log(log.NewMessageEvent(log.DirectionOut, e.elementIndex, log.MessageEvent{
		Opcode:      uint16(op),
		Peer:        uint16(peer),
		KeyIndex:    uint16(key),
		Length:      len(payload),
		Publication: publication,
	}))
}

// WaitIdle blocks until tasks posted before the call, including short
// chains they post in turn (join completion posting the attach, the attach
// posting its completion), have executed. Test helper; not used on the hot
// path.
func (s *NodeService) WaitIdle(timeout time.Duration) bool {
	deadline := time.After(timeout)

	// Each marker round flushes one level of task chaining.
	for round := 0; round < 4; round++ {
		done := make(chan struct{})
		s.loop.Post(func() { close(done) })

		select {
		case <-done:
		case <-deadline:
			return false
		}
	}
	return true
}
