package tun

import (
	"encoding/binary"
	"fmt"

	"udptun/internal/packet"
)

// Framing translates between the link-layer header a tun device puts in
// front of each packet and the Ethernet type numbers used on the wire.
type Framing interface {
	HeaderLen() int

	// Decode returns the L3 protocol of a frame header. ok is false when the
	// header names a family the framing cannot express.
	Decode(hdr []byte) (proto uint16, ok bool)

	// Encode fills hdr[:HeaderLen()] for proto.
	Encode(hdr []byte, proto uint16) error
}

// PIFraming is Linux struct tun_pi: [2 flags][2 Ethernet type].
type PIFraming struct{}

func (PIFraming) HeaderLen() int { return 4 }

func (PIFraming) Decode(hdr []byte) (uint16, bool) {
	return binary.BigEndian.Uint16(hdr[2:4]), true
}

func (PIFraming) Encode(hdr []byte, proto uint16) error {
	binary.BigEndian.PutUint16(hdr[0:2], 0)
	binary.BigEndian.PutUint16(hdr[2:4], proto)
	return nil
}

// Address family numbers used by AFFraming. AF_INET is 2 everywhere;
// AF_INET6 differs between kernels.
const (
	AFInet        = 2
	AFInet6Darwin = 30
	AFInet6BSD    = 28
)

// AFFraming is the BSD/Darwin utun header: a 4-byte big-endian address
// family.
type AFFraming struct {
	INET6 uint32
}

func (AFFraming) HeaderLen() int { return 4 }

func (f AFFraming) Decode(hdr []byte) (uint16, bool) {
	switch binary.BigEndian.Uint32(hdr[0:4]) {
	case AFInet:
		return packet.EtherTypeIPv4, true
	case f.INET6:
		return packet.EtherTypeIPv6, true
	}
	return 0, false
}

func (f AFFraming) Encode(hdr []byte, proto uint16) error {
	var af uint32
	switch proto {
	case packet.EtherTypeIPv4:
		af = AFInet
	case packet.EtherTypeIPv6:
		af = f.INET6
	default:
		return fmt.Errorf("tun: no address family for proto 0x%04x", proto)
	}
	binary.BigEndian.PutUint32(hdr[0:4], af)
	return nil
}

// ParseFraming selects a framing by name. "auto" picks the build target's
// native header.
func ParseFraming(name string) (Framing, error) {
	switch name {
	case "", "auto":
		return defaultFraming(), nil
	case "pi":
		return PIFraming{}, nil
	case "af":
		return AFFraming{INET6: hostAFInet6}, nil
	}
	return nil, fmt.Errorf("tun: unknown framing %q", name)
}
