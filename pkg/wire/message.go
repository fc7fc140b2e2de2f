package wire

// Message is a decrypted access-layer message delivered to an element.
// The daemon has already resolved the application key; KeyIndex identifies
// which key authorized the message.
type Message struct {
	// Source is the unicast address of the sending element.
	Source Address

	// KeyIndex is the application key index the message was secured with.
	KeyIndex KeyIndex

	// Subscription is true when the message arrived on a subscribed
	// group address rather than the element's unicast address.
	Subscription bool

	// Payload is the raw opcoded payload.
	Payload []byte
}

// Opcode returns the message opcode, or false if the payload is malformed.
func (m Message) Opcode() (Opcode, bool) {
	return DecodeOpcode(m.Payload)
}
