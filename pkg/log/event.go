package log

import "time"

// Event is one protocol event captured by the harness.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Direction indicates message flow for message events.
	Direction Direction `cbor:"2,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"3,keyasint"`

	// ElementIndex is the element the event belongs to, where applicable.
	ElementIndex int `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (one of these is set).
	Message   *MessageEvent   `cbor:"5,keyasint,omitempty"`
	Lifecycle *LifecycleEvent `cbor:"6,keyasint,omitempty"`
	Error     *ErrorEvent     `cbor:"7,keyasint,omitempty"`
}

// MessageEvent describes one model message crossing the daemon boundary.
type MessageEvent struct {
	// Opcode is the 16-bit message opcode.
	Opcode uint16 `cbor:"1,keyasint"`

	// Peer is the remote address: source for inbound, destination for
	// outbound. Zero for publications.
	Peer uint16 `cbor:"2,keyasint,omitempty"`

	// KeyIndex is the application key index used.
	KeyIndex uint16 `cbor:"3,keyasint,omitempty"`

	// Length is the full payload length in bytes.
	Length int `cbor:"4,keyasint"`

	// Publication marks an unsolicited periodic publication.
	Publication bool `cbor:"5,keyasint,omitempty"`
}

// LifecycleEvent describes a node state transition.
type LifecycleEvent struct {
	OldState string `cbor:"1,keyasint"`
	NewState string `cbor:"2,keyasint"`
	Reason   string `cbor:"3,keyasint,omitempty"`
}

// ErrorEvent describes a reported failure.
type ErrorEvent struct {
	Message string `cbor:"1,keyasint"`
	Context string `cbor:"2,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an inbound message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outbound message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a model message.
	CategoryMessage Category = 0
	// CategoryLifecycle indicates a node state transition.
	CategoryLifecycle Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// NewMessageEvent builds a message event stamped with the current time.
func NewMessageEvent(dir Direction, elementIndex int, msg MessageEvent) Event {
	return Event{
		Timestamp:    time.Now(),
		Direction:    dir,
		Category:     CategoryMessage,
		ElementIndex: elementIndex,
		Message:      &msg,
	}
}

// NewLifecycleEvent builds a lifecycle transition event.
func NewLifecycleEvent(oldState, newState, reason string) Event {
	return Event{
		Timestamp: time.Now(),
		Category:  CategoryLifecycle,
		Lifecycle: &LifecycleEvent{OldState: oldState, NewState: newState, Reason: reason},
	}
}

// NewErrorEvent builds an error event.
func NewErrorEvent(message, context string) Event {
	return Event{
		Timestamp: time.Now(),
		Category:  CategoryError,
		Error:     &ErrorEvent{Message: message, Context: context},
	}
}
