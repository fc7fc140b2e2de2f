package node

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/btmesh-tools/meshnode-go/pkg/meshapi"
	"github.com/btmesh-tools/meshnode-go/pkg/model"
	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// Lifecycle precondition errors. These are reported locally; no daemon
// call is attempted.
var (
	ErrTokenAlreadySet = errors.New("node already has a token")
	ErrNoToken         = errors.New("node has no token")
	ErrNoAgent         = errors.New("no provisioning agent available")
	ErrBusy            = errors.New("lifecycle operation already in flight")
)

// baseDeviceUUID is the fixed byte set the device UUID is built from.
// It is shuffled before each join so repeated test runs do not collide
// on UUID reuse.
var baseDeviceUUID = uuid.MustParse("0a1b2c3d-4e5f-6789-abcd-ef0123456789")

// Manager owns the node token and lifecycle state and drives join, attach,
// and remove against the daemon.
//
// Daemon continuations are marshaled onto the event loop through post
// before they touch manager state, so the only writers of token and state
// run on the loop goroutine. Continuations tolerate state having moved on:
// a stale completion is logged and dropped, never fatal.
type Manager struct {
	mu sync.Mutex

	state    State
	token    Token
	nodeAddr wire.Address

	daemon meshapi.Daemon
	agent  meshapi.ProvisionAgent
	app    *model.Application
	post   func(func())
	logger *slog.Logger

	onStateChange func(old, new State)
	onJoinFailed  func(reason string)
	onAttached    func(addr wire.Address, cfg meshapi.ElementConfigMap)
	onAttachError func(err error)
	onRemoved     func()
	onRemoveError func(err error)
}

// NewManager creates a lifecycle manager. agent may be nil (joining is then
// unavailable); post may be nil (continuations run inline, test use only).
func NewManager(daemon meshapi.Daemon, agent meshapi.ProvisionAgent,
	app *model.Application, post func(func()), logger *slog.Logger) *Manager {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		state:  StateUnset,
		daemon: daemon,
		agent:  agent,
		app:    app,
		post:   post,
		logger: logger,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token returns the current token; zero when Unset.
func (m *Manager) Token() Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// NodeAddr returns the unicast address reported by the last successful
// attach.
func (m *Manager) NodeAddr() wire.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nodeAddr
}

// SetToken accepts an externally supplied textual token. It returns false,
// with no state change, when the text is not exactly 16 hex characters or
// when the node already holds a token.
func (m *Manager) SetToken(s string) bool {
	token, err := ParseToken(s)
	if err != nil {
		m.logger.Warn("token rejected", "err", err)
		return false
	}

	m.mu.Lock()
	if m.state != StateUnset {
		m.mu.Unlock()
		m.logger.Warn("token rejected", "err", ErrTokenAlreadySet)
		return false
	}
	m.token = token
	old := m.transitionLocked(StateDetached)
	m.mu.Unlock()

	m.notifyStateChange(old, StateDetached)
	return true
}

// Join initiates the provisioning handshake. Valid only when Unset and a
// provisioning agent is available; fails fast otherwise.
func (m *Manager) Join() error {
	if m.agent == nil {
		return ErrNoAgent
	}

	m.mu.Lock()
	switch {
	case m.state == StateJoining:
		m.mu.Unlock()
		return ErrBusy
	case m.state != StateUnset:
		m.mu.Unlock()
		return ErrTokenAlreadySet
	}
	old := m.transitionLocked(StateJoining)
	m.mu.Unlock()
	m.notifyStateChange(old, StateJoining)

	deviceUUID := shuffledDeviceUUID()
	m.logger.Info("joining mesh", "device_uuid", deviceUUID.String())

	m.daemon.Join(m.app, deviceUUID[:], m.agent.Capabilities(),
		func(token uint64) { m.post(func() { m.joinComplete(Token(token)) }) },
		func(reason string) { m.post(func() { m.joinFailed(reason) }) },
	)
	return nil
}

// Attach registers the node's runtime handlers with the daemon.
// Valid only when a token is held and no attach is in flight.
func (m *Manager) Attach() error {
	m.mu.Lock()
	switch m.state {
	case StateUnset, StateJoining:
		m.mu.Unlock()
		return ErrNoToken
	case StateAttaching:
		m.mu.Unlock()
		return ErrBusy
	}
	token := m.token
	old := m.transitionLocked(StateAttaching)
	m.mu.Unlock()
	m.notifyStateChange(old, StateAttaching)

	m.daemon.Attach(m.app, uint64(token),
		func(addr wire.Address, cfg meshapi.ElementConfigMap) {
			m.post(func() { m.attachSuccess(addr, cfg) })
		},
		func(err error) { m.post(func() { m.attachError(err) }) },
	)
	return nil
}

// Remove asks the daemon to destroy its persisted configuration for the
// node's token. Success is irreversible: the token is cleared and the node
// returns to Unset.
func (m *Manager) Remove() error {
	m.mu.Lock()
	if !m.state.TokenBearing() {
		m.mu.Unlock()
		return ErrNoToken
	}
	token := m.token
	m.mu.Unlock()

	m.daemon.Leave(uint64(token),
		func() { m.post(m.removeSuccess) },
		func(err error) { m.post(func() { m.removeError(err) }) },
	)
	return nil
}

// OnStateChange sets a callback for lifecycle transitions.
func (m *Manager) OnStateChange(fn func(old, new State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// OnJoinFailed sets a callback for a failed provisioning handshake.
func (m *Manager) OnJoinFailed(fn func(reason string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onJoinFailed = fn
}

// OnAttached sets a callback invoked after a successful attach, with the
// node's unicast address and the configuration the daemon restored.
func (m *Manager) OnAttached(fn func(addr wire.Address, cfg meshapi.ElementConfigMap)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAttached = fn
}

// OnAttachError sets a callback for a failed attach.
func (m *Manager) OnAttachError(fn func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAttachError = fn
}

// OnRemoved sets a callback invoked after a successful remove.
func (m *Manager) OnRemoved(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRemoved = fn
}

// OnRemoveError sets a callback for a failed remove.
func (m *Manager) OnRemoveError(fn func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRemoveError = fn
}

func (m *Manager) joinComplete(token Token) {
	m.mu.Lock()
	if m.state != StateJoining {
		m.mu.Unlock()
		m.logger.Warn("stale join completion dropped", "state", m.state.String())
		return
	}
	m.token = token
	old := m.transitionLocked(StateDetached)
	m.mu.Unlock()

	m.logger.Info("join complete", "token", token.String())
	m.notifyStateChange(old, StateDetached)

	// A fresh token is attached immediately.
	if err := m.Attach(); err != nil {
		m.logger.Error("attach after join failed", "err", err)
	}
}

func (m *Manager) joinFailed(reason string) {
	m.mu.Lock()
	if m.state != StateJoining {
		m.mu.Unlock()
		m.logger.Warn("stale join failure dropped", "state", m.state.String())
		return
	}
	old := m.transitionLocked(StateUnset)
	fn := m.onJoinFailed
	m.mu.Unlock()

	m.logger.Warn("join failed", "reason", reason)
	m.notifyStateChange(old, StateUnset)
	if fn != nil {
		fn(reason)
	}
}

func (m *Manager) attachSuccess(addr wire.Address, cfg meshapi.ElementConfigMap) {
	m.mu.Lock()
	if m.state != StateAttaching {
		m.mu.Unlock()
		m.logger.Warn("stale attach completion dropped", "state", m.state.String())
		return
	}
	m.nodeAddr = addr
	old := m.transitionLocked(StateAttached)
	fn := m.onAttached
	m.mu.Unlock()

	m.logger.Info("attached", "addr", addr.String())
	m.applyElementConfig(cfg)
	m.notifyStateChange(old, StateAttached)
	if fn != nil {
		fn(addr, cfg)
	}
}

func (m *Manager) attachError(err error) {
	m.mu.Lock()
	if m.state != StateAttaching {
		m.mu.Unlock()
		m.logger.Warn("stale attach error dropped", "state", m.state.String())
		return
	}
	// Token is retained; the caller may retry attach manually.
	old := m.transitionLocked(StateDetached)
	fn := m.onAttachError
	m.mu.Unlock()

	m.logger.Warn("attach failed", "err", err)
	m.notifyStateChange(old, StateDetached)
	if fn != nil {
		fn(err)
	}
}

func (m *Manager) removeSuccess() {
	m.mu.Lock()
	if !m.state.TokenBearing() {
		m.mu.Unlock()
		m.logger.Warn("stale remove completion dropped", "state", m.state.String())
		return
	}
	m.token = 0
	m.nodeAddr = wire.Unassigned
	old := m.transitionLocked(StateUnset)
	fn := m.onRemoved
	m.mu.Unlock()

	m.logger.Info("node removed, token destroyed")
	m.notifyStateChange(old, StateUnset)
	if fn != nil {
		fn()
	}
}

func (m *Manager) removeError(err error) {
	m.mu.Lock()
	fn := m.onRemoveError
	m.mu.Unlock()

	m.logger.Warn("remove failed", "err", err)
	if fn != nil {
		fn(err)
	}
}

// applyElementConfig applies the daemon's restored configuration to every
// matching element/model pair. Unknown elements or model IDs are skipped.
func (m *Manager) applyElementConfig(cfg meshapi.ElementConfigMap) {
	for index, models := range cfg {
		element := m.app.Element(index)
		if element == nil {
			m.logger.Warn("config for unknown element dropped", "index", index)
			continue
		}
		for _, mc := range models {
			element.Configure(mc.ModelID, model.Config{
				Bindings:          mc.Config.Bindings,
				HasBindings:       mc.Config.HasBindings,
				PublicationPeriod: mc.Config.PublicationPeriod,
				HasPeriod:         mc.Config.HasPeriod,
			})
		}
	}
}

// transitionLocked swaps the state and returns the old one. Caller holds mu.
func (m *Manager) transitionLocked(next State) State {
	old := m.state
	m.state = next
	return old
}

func (m *Manager) notifyStateChange(old, next State) {
	if old == next {
		return
	}
	m.mu.Lock()
	fn := m.onStateChange
	m.mu.Unlock()
	if fn != nil {
		fn(old, next)
	}
}

// shuffledDeviceUUID returns the fixed base UUID with its bytes uniformly
// shuffled, giving each join attempt a distinct device identity.
func shuffledDeviceUUID() uuid.UUID {
	var u uuid.UUID = baseDeviceUUID
	rand.Shuffle(len(u), func(i, j int) {
		u[i], u[j] = u[j], u[i]
	})
	return u
}
