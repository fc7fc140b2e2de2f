// Package wire implements the access-layer message encoding used by the
// mesh node test harness.
//
// A model message is an opcode (16-bit, little-endian) optionally followed
// by a payload. The generic OnOff vocabulary used here carries at most one
// state byte:
//
//	GET            opcode only            (2 bytes)
//	SET            opcode + state byte    (3 bytes)
//	SET_UNACK      opcode + state byte    (3 bytes)
//	STATUS         opcode + state byte    (3 bytes)
//
// Encryption, network-layer headers, and routing are owned entirely by the
// external mesh daemon; this package only sees the decrypted access payload.
package wire
