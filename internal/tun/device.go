package tun

import (
	"errors"
	"net/netip"
)

var ErrUnsupported = errors.New("tun: platform not supported")

// Device is an open tun interface. Frames read from and written to it carry
// a link-layer header whose layout is described by a Framing.
type Device interface {
	Read(buf []byte) (int, error)

	// WriteFrame writes hdr and payload as a single frame.
	WriteFrame(hdr, payload []byte) (int, error)

	// Fd is the descriptor used for readiness waits.
	Fd() int
	Name() string
	MTU() int
	Close() error
}

type Config struct {
	Name string
	IPv4 netip.Prefix
	IPv6 netip.Prefix
	MTU  int
}
