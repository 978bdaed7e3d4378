package transport

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"

	"udptun/internal/config"
)

// Resolver looks up host addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Conn is a connected UDP socket to the peer.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error

	// Fd is the socket descriptor used for readiness waits.
	Fd() int
	LocalAddr() netip.AddrPort
	RemoteAddr() netip.AddrPort
}

// Option configures a Connector.
type Option func(*Connector)

// WithResolver replaces the system resolver.
func WithResolver(r Resolver) Option {
	return func(c *Connector) {
		c.resolver = r
	}
}

// WithResolveTimeout bounds each host lookup.
func WithResolveTimeout(d time.Duration) Option {
	return func(c *Connector) {
		c.resolveTimeout = d
	}
}

// Connector turns a "host:port" peer address into a connected UDP
// socket. Every call resolves again and binds a fresh ephemeral local port.
type Connector struct {
	resolver       Resolver
	resolveTimeout time.Duration
}

func NewConnector(opts ...Option) *Connector {
	c := &Connector{
		resolver:       net.DefaultResolver,
		resolveTimeout: config.ResolveTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect resolves peerAddr and connects a UDP socket to it. Errors wrap either
// ErrInvalidAddress or ErrUnavailable.
func (c *Connector) Connect(ctx context.Context, peerAddr string) (Conn, error) {
	peer, err := c.Resolve(ctx, peerAddr)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialUDP("udp", nil, net.UDPAddrFromAddrPort(peer))
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %w", ErrUnavailable, peer, err)
	}

	uc, err := newUDPConn(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return uc, nil
}

// Resolve parses peerAddr and looks up its host. Literal addresses skip the
// resolver.
func (c *Connector) Resolve(ctx context.Context, peerAddr string) (netip.AddrPort, error) {
	host, port, err := SplitAddr(peerAddr)
	if err != nil {
		return netip.AddrPort{}, err
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return netip.AddrPortFrom(ip.Unmap(), port), nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.resolveTimeout)
	defer cancel()

	addrs, err := c.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: resolve %s: %w", ErrUnavailable, host, err)
	}
	if len(addrs) == 0 {
		return netip.AddrPort{}, fmt.Errorf("%w: resolve %s: no addresses", ErrUnavailable, host)
	}
	return netip.AddrPortFrom(addrs[0].Unmap(), port), nil
}

// SplitAddr validates a "host:port" peer address. IPv6 literals must be
// bracketed.
func SplitAddr(peerAddr string) (string, uint16, error) {
	host, portStr, err := net.SplitHostPort(peerAddr)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, peerAddr, err)
	}
	if host == "" {
		return "", 0, fmt.Errorf("%w: %q: empty host", ErrInvalidAddress, peerAddr)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return "", 0, fmt.Errorf("%w: %q: bad port", ErrInvalidAddress, peerAddr)
	}
	return host, uint16(port), nil
}
