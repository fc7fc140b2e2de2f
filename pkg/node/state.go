package node

// State is the node lifecycle state.
type State uint8

const (
	// StateUnset indicates no token: the node has never joined, or was
	// removed.
	StateUnset State = iota

	// StateJoining indicates a provisioning handshake is in flight.
	StateJoining

	// StateDetached indicates a token is held but the node is not
	// attached to the daemon.
	StateDetached

	// StateAttaching indicates an attach request is in flight.
	StateAttaching

	// StateAttached indicates the daemon acknowledged attachment and
	// delivers traffic for this node.
	StateAttached
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUnset:
		return "UNSET"
	case StateJoining:
		return "JOINING"
	case StateDetached:
		return "DETACHED"
	case StateAttaching:
		return "ATTACHING"
	case StateAttached:
		return "ATTACHED"
	default:
		return "UNKNOWN"
	}
}

// TokenBearing reports whether the state implies a stored token.
func (s State) TokenBearing() bool {
	return s == StateDetached || s == StateAttaching || s == StateAttached
}
