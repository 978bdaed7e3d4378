// Package wire defines the tunnel PDU layout and the codec that turns
// plaintext messages into encrypted datagrams and back.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"udptun/internal/config"
	"udptun/internal/packet"
)

var (
	ErrShortMessage    = errors.New("wire: message too short")
	ErrUnknownProtocol = errors.New("wire: unknown L3 protocol")
	ErrTruncated       = errors.New("wire: truncated IP packet")
	ErrFrameTooLarge   = errors.New("wire: frame exceeds buffer")
	ErrDecrypt         = errors.New("wire: decrypt failed")
)

const (
	AuthLen      = 16
	HeaderLen    = 4 + AuthLen
	IPDataOffset = config.IPDataOffset
	EchoLen      = 4 + 16 + 4
	EchoMsgLen   = HeaderLen + EchoLen
)

type Opcode uint8

const (
	OpEchoReq Opcode = iota
	OpIPData
	OpDisconnect
	OpEchoAck
)

func (o Opcode) String() string {
	switch o {
	case OpEchoReq:
		return "ECHO_REQ"
	case OpIPData:
		return "IP_DATA"
	case OpDisconnect:
		return "DISCONNECT"
	case OpEchoAck:
		return "ECHO_ACK"
	}
	return fmt.Sprintf("OP(%d)", uint8(o))
}

// Header is the fixed prefix of every message:
// [1 opcode][1 reserved][2 seq][16 auth].
type Header struct {
	Opcode Opcode
	Seq    uint16
	Auth   [AuthLen]byte
}

func (h Header) appendTo(dst []byte) []byte {
	dst = append(dst, byte(h.Opcode), 0)
	dst = binary.BigEndian.AppendUint16(dst, h.Seq)
	return append(dst, h.Auth[:]...)
}

func ParseHeader(msg []byte) (Header, error) {
	var h Header
	if len(msg) < HeaderLen {
		return h, ErrShortMessage
	}
	h.Opcode = Opcode(msg[0])
	h.Seq = binary.BigEndian.Uint16(msg[2:4])
	copy(h.Auth[:], msg[4:HeaderLen])
	return h, nil
}

// IPData is the payload of an OpIPData message. Packet aliases the message
// buffer.
type IPData struct {
	Proto  uint16
	Packet []byte
}

// AppendIPData appends a complete IP_DATA message to dst. h.Opcode is
// overridden.
func AppendIPData(dst []byte, h Header, proto uint16, pkt []byte) []byte {
	h.Opcode = OpIPData
	dst = h.appendTo(dst)
	dst = binary.BigEndian.AppendUint16(dst, proto)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(pkt)))
	return append(dst, pkt...)
}

// ParseIPData validates the IP_DATA body of msg. The protocol must be IPv4 or
// IPv6, the message must hold at least a minimal header of that protocol and
// the declared inner length must fit in what was received. Bytes past the
// declared length are ignored.
func ParseIPData(msg []byte) (IPData, error) {
	if len(msg) < IPDataOffset {
		return IPData{}, ErrShortMessage
	}
	proto := binary.BigEndian.Uint16(msg[HeaderLen : HeaderLen+2])
	minLen, ok := packet.MinHeaderLen(proto)
	if !ok {
		return IPData{}, fmt.Errorf("%w: 0x%04x", ErrUnknownProtocol, proto)
	}
	if len(msg) < IPDataOffset+minLen {
		return IPData{}, ErrTruncated
	}
	ipLen := int(binary.BigEndian.Uint16(msg[HeaderLen+2 : IPDataOffset]))
	if len(msg)-IPDataOffset < ipLen {
		return IPData{}, ErrTruncated
	}
	return IPData{Proto: proto, Packet: msg[IPDataOffset : IPDataOffset+ipLen]}, nil
}

// Echo is the payload of OpEchoReq and OpEchoAck. The addresses are
// informational only.
type Echo struct {
	IPv4 netip.Addr
	IPv6 netip.Addr
	ID   uint32
}

// AppendEcho appends a complete echo message to dst. h.Opcode must be
// OpEchoReq or OpEchoAck.
func AppendEcho(dst []byte, h Header, e Echo) []byte {
	dst = h.appendTo(dst)
	var v4 [4]byte
	var v6 [16]byte
	if e.IPv4.Is4() {
		v4 = e.IPv4.As4()
	}
	if e.IPv6.Is6() && !e.IPv6.Is4In6() {
		v6 = e.IPv6.As16()
	}
	dst = append(dst, v4[:]...)
	dst = append(dst, v6[:]...)
	return binary.BigEndian.AppendUint32(dst, e.ID)
}

func ParseEcho(msg []byte) (Echo, error) {
	if len(msg) < EchoMsgLen {
		return Echo{}, ErrShortMessage
	}
	body := msg[HeaderLen:]
	return Echo{
		IPv4: netip.AddrFrom4([4]byte(body[0:4])),
		IPv6: netip.AddrFrom16([16]byte(body[4:20])),
		ID:   binary.BigEndian.Uint32(body[20:24]),
	}, nil
}
