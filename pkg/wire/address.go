package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Address is a 16-bit mesh unicast address.
type Address uint16

// Unassigned is the reserved all-zero address.
const Unassigned Address = 0x0000

// String formats the address as 4 hex digits.
func (a Address) String() string {
	return fmt.Sprintf("%04x", uint16(a))
}

// ParseAddress parses a 16-bit hex address, with or without a 0x prefix.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return Address(v), nil
}

// KeyIndex references an application key managed by the daemon.
type KeyIndex uint16

// ParseKeyIndex parses a decimal application key index.
func ParseKeyIndex(s string) (KeyIndex, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid app key index %q: %w", s, err)
	}
	return KeyIndex(v), nil
}
