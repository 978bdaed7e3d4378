package packet

import (
	"github.com/google/gopacket/layers"
)

const (
	IPv4HeaderLen = 20
	IPv6HeaderLen = 40
)

// L3 protocol identifiers as carried on the wire and in Linux tun_pi:
// standard Ethernet type numbers.
const (
	EtherTypeIPv4 = uint16(layers.EthernetTypeIPv4)
	EtherTypeIPv6 = uint16(layers.EthernetTypeIPv6)
)

// MinHeaderLen returns the smallest valid packet for an L3 protocol. ok is
// false for anything other than IPv4 and IPv6.
func MinHeaderLen(proto uint16) (n int, ok bool) {
	switch proto {
	case EtherTypeIPv4:
		return IPv4HeaderLen, true
	case EtherTypeIPv6:
		return IPv6HeaderLen, true
	}
	return 0, false
}
