package transport

import (
	"fmt"
	"net"
	"net/netip"
)

type udpConn struct {
	*net.UDPConn
	fd int
}

func newUDPConn(conn *net.UDPConn) (*udpConn, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("syscall conn: %w", err)
	}
	var fd int
	if err := raw.Control(func(f uintptr) { fd = int(f) }); err != nil {
		return nil, fmt.Errorf("socket fd: %w", err)
	}
	return &udpConn{UDPConn: conn, fd: fd}, nil
}

func (c *udpConn) Fd() int {
	return c.fd
}

func (c *udpConn) LocalAddr() netip.AddrPort {
	return c.UDPConn.LocalAddr().(*net.UDPAddr).AddrPort()
}

func (c *udpConn) RemoteAddr() netip.AddrPort {
	return c.UDPConn.RemoteAddr().(*net.UDPAddr).AddrPort()
}

var _ Conn = (*udpConn)(nil)
