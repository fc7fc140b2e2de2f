package node

import (
	"errors"
	"fmt"
	"strconv"
)

// TokenHexLen is the exact textual token length: 16 hex digits (64 bits).
const TokenHexLen = 16

// Token errors.
var (
	ErrTokenLength = errors.New("token must be exactly 16 hex characters")
	ErrTokenFormat = errors.New("token contains non-hex characters")
)

// Token is the 64-bit node identifier assigned by the daemon on join.
// It keys the daemon's persisted node configuration.
type Token uint64

// ParseToken parses a textual token: exactly 16 hex characters,
// case-insensitive.
func ParseToken(s string) (Token, error) {
	if len(s) != TokenHexLen {
		return 0, ErrTokenLength
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, ErrTokenFormat
	}
	return Token(v), nil
}

// String formats the token as 16 lowercase hex digits.
func (t Token) String() string {
	return fmt.Sprintf("%016x", uint64(t))
}
