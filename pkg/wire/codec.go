package wire

import "encoding/binary"

// Payload sizes for the OnOff vocabulary.
const (
	// OpcodeOnlyLen is the length of a payload carrying just an opcode.
	OpcodeOnlyLen = 2

	// OpcodeStateLen is the length of a payload carrying an opcode and
	// one state byte.
	OpcodeStateLen = 3
)

// Encode builds a payload from an opcode and up to one state byte.
// All multi-byte fields are little-endian.
func Encode(op Opcode, state ...byte) []byte {
	payload := make([]byte, OpcodeOnlyLen, OpcodeOnlyLen+len(state))
	binary.LittleEndian.PutUint16(payload, uint16(op))
	return append(payload, state...)
}

// DecodeOpcode extracts the opcode from a payload.
// Returns false if the payload is too short to carry one.
func DecodeOpcode(payload []byte) (Opcode, bool) {
	if len(payload) < OpcodeOnlyLen {
		return 0, false
	}
	return Opcode(binary.LittleEndian.Uint16(payload)), true
}

// DecodeState extracts the state byte from an opcode+state payload.
// Returns false unless the payload is exactly opcode plus one byte.
func DecodeState(payload []byte) (byte, bool) {
	if len(payload) != OpcodeStateLen {
		return 0, false
	}
	return payload[OpcodeStateLen-1], true
}
