package packet

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Describe renders a one-line summary of an IP packet for debug logs, e.g.
// "IPv4 10.7.0.2 -> 10.7.0.1 ICMPv4 len=84". It never fails: undecodable
// input is reported as such.
func Describe(proto uint16, data []byte) string {
	var first gopacket.LayerType
	switch proto {
	case EtherTypeIPv4:
		first = layers.LayerTypeIPv4
	case EtherTypeIPv6:
		first = layers.LayerTypeIPv6
	default:
		return fmt.Sprintf("proto=0x%04x len=%d", proto, len(data))
	}

	pkt := gopacket.NewPacket(data, first, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	net := pkt.NetworkLayer()
	if net == nil {
		return fmt.Sprintf("%s (undecodable) len=%d", first, len(data))
	}

	src, dst := net.NetworkFlow().Endpoints()
	summary := fmt.Sprintf("%s %s -> %s", first, src, dst)
	if next := nextLayer(pkt, net); next != "" {
		summary += " " + next
	}
	return fmt.Sprintf("%s len=%d", summary, len(data))
}

func nextLayer(pkt gopacket.Packet, net gopacket.NetworkLayer) string {
	if tl := pkt.TransportLayer(); tl != nil {
		return tl.LayerType().String()
	}
	switch l := net.(type) {
	case *layers.IPv4:
		return l.Protocol.String()
	case *layers.IPv6:
		return l.NextHeader.String()
	}
	return ""
}
