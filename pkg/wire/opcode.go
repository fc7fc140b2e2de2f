package wire

// Opcode is a 16-bit model message discriminator.
type Opcode uint16

// Generic OnOff opcodes.
const (
	// OpOnOffGet queries the current OnOff state.
	OpOnOffGet Opcode = 0x8201

	// OpOnOffSet sets the OnOff state and requests a status reply.
	OpOnOffSet Opcode = 0x8202

	// OpOnOffSetUnack sets the OnOff state without requesting a reply.
	OpOnOffSetUnack Opcode = 0x8203

	// OpOnOffStatus reports the current OnOff state.
	OpOnOffStatus Opcode = 0x8204
)

// String returns a human-readable opcode name.
func (o Opcode) String() string {
	switch o {
	case OpOnOffGet:
		return "ONOFF_GET"
	case OpOnOffSet:
		return "ONOFF_SET"
	case OpOnOffSetUnack:
		return "ONOFF_SET_UNACK"
	case OpOnOffStatus:
		return "ONOFF_STATUS"
	default:
		return "UNKNOWN"
	}
}
