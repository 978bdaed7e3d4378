package transport

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
)

var (
	// ErrInvalidAddress is a configuration error: the peer address
	// cannot be parsed. It is fatal at startup.
	ErrInvalidAddress = errors.New("transport: invalid peer address")

	// ErrUnavailable covers resolution and socket failures that may clear up
	// later.
	ErrUnavailable = errors.New("transport: peer temporarily unavailable")
)

// IsTemporary reports whether a Connect error is worth retrying.
func IsTemporary(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// RandUint32 returns a cryptographically random uint32.
func RandUint32() uint32 {
	var buf [4]byte
	crand.Read(buf[:])
	return binary.BigEndian.Uint32(buf[:])
}
