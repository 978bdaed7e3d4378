package tun

import (
	"errors"
	"fmt"

	"udptun/internal/packet"
)

var (
	// ErrShortRead means the device returned less than a link-layer header.
	// The device is local and trusted, so this is fatal.
	ErrShortRead = errors.New("tun: short read")

	ErrUnknownProtocol = errors.New("tun: not an IPv4 or IPv6 frame")
	ErrTruncatedPacket = errors.New("tun: packet shorter than its IP header")
)

// Frame is one packet read from the device. Packet aliases the read buffer.
type Frame struct {
	Proto  uint16
	Packet []byte
}

// Bridge moves IP packets between the tun device and the session, hiding
// the platform link-layer header behind a Framing.
type Bridge struct {
	dev     Device
	framing Framing
	hdr     []byte
}

func NewBridge(dev Device, framing Framing) *Bridge {
	return &Bridge{
		dev:     dev,
		framing: framing,
		hdr:     make([]byte, framing.HeaderLen()),
	}
}

func (b *Bridge) Fd() int      { return b.dev.Fd() }
func (b *Bridge) Name() string { return b.dev.Name() }
func (b *Bridge) MTU() int      { return b.dev.MTU() }
func (b *Bridge) Close() error { return b.dev.Close() }

// ReadFrame reads one frame into buf. ErrUnknownProtocol and
// ErrTruncatedPacket mean the frame should be dropped; any other error is a
// device failure.
func (b *Bridge) ReadFrame(buf []byte) (Frame, error) {
	n, err := b.dev.Read(buf)
	if err != nil {
		return Frame{}, fmt.Errorf("read %s: %w", b.dev.Name(), err)
	}
	hl := b.framing.HeaderLen()
	if n < hl {
		return Frame{}, fmt.Errorf("%w: %d bytes from %s", ErrShortRead, n, b.dev.Name())
	}

	proto, ok := b.framing.Decode(buf[:hl])
	minLen, known := packet.MinHeaderLen(proto)
	if !ok || !known {
		return Frame{}, fmt.Errorf("%w: 0x%x", ErrUnknownProtocol, buf[:hl])
	}
	pkt := buf[hl:n]
	if len(pkt) < minLen {
		return Frame{}, ErrTruncatedPacket
	}
	return Frame{Proto: proto, Packet: pkt}, nil
}

// WriteFrame hands one packet to the device as a single scatter write.
func (b *Bridge) WriteFrame(proto uint16, pkt []byte) error {
	if err := b.framing.Encode(b.hdr, proto); err != nil {
		return err
	}
	if _, err := b.dev.WriteFrame(b.hdr, pkt); err != nil {
		return fmt.Errorf("write %s: %w", b.dev.Name(), err)
	}
	return nil
}

// IsDrop reports whether a ReadFrame error concerns only the frame itself.
func IsDrop(err error) bool {
	return errors.Is(err, ErrUnknownProtocol) || errors.Is(err, ErrTruncatedPacket)
}
