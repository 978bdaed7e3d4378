// Package client runs the tunnel session: it moves packets between the tun
// device and the UDP peer, keeps the link alive with echo probes and
// reconnects when the peer goes quiet.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"udptun/internal/config"
	"udptun/internal/crypto"
	"udptun/internal/logging"
	"udptun/internal/transport"
	"udptun/internal/tun"
	"udptun/internal/wire"
)

// ErrPlaintextSecret is returned when a secret is configured together with
// the "none" cipher. The secret would be sent in the clear.
var ErrPlaintextSecret = errors.New("client: a secret requires an encrypting cipher")

// Connector opens a fresh connected socket to the peer.
// *transport.Connector satisfies it.
type Connector interface {
	Connect(ctx context.Context, peerAddr string) (transport.Conn, error)
}

// Option configures a Client.
type Option func(*Client)

// WithConnector replaces the UDP connector.
func WithConnector(cn Connector) Option {
	return func(c *Client) {
		c.connector = cn
	}
}

// WithPoller replaces the readiness wait.
func WithPoller(p Poller) Option {
	return func(c *Client) {
		c.poller = p
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithSleep replaces the reconnect back-off sleep.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// WithEchoID replaces the random echo id source.
func WithEchoID(id func() uint32) Option {
	return func(c *Client) {
		c.echoID = id
	}
}

// Client is the session state. It is driven by a single goroutine and is
// not safe for concurrent use.
type Client struct {
	cfg    config.Config
	bridge *tun.Bridge
	codec  *wire.Codec
	auth   [wire.AuthLen]byte
	local  wire.Echo

	connector Connector
	poller    Poller
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	echoID    func() uint32

	conn      transport.Conn
	peer      netip.AddrPort
	seq       uint16
	timers    Timers
	state     State
	stats     Stats
	lastStats time.Time

	rbuf []byte // received datagram
	pbuf []byte // decrypted message
	fbuf []byte // tun frame
	mbuf []byte // outgoing plaintext message
	sbuf []byte // outgoing sealed PDU
}

// New builds a session around an open tun bridge. The client owns the
// bridge from here on and closes it in Close.
func New(cfg config.Config, bridge *tun.Bridge, opts ...Option) (*Client, error) {
	if cfg.Cipher == crypto.None && cfg.Secret != "" {
		return nil, ErrPlaintextSecret
	}
	keys, err := crypto.DeriveKeys(cfg.Secret)
	if err != nil {
		return nil, err
	}
	cipher, err := crypto.New(cfg.Cipher, keys.Cipher)
	if err != nil {
		return nil, err
	}
	v4, err := cfg.LocalIPv4()
	if err != nil {
		return nil, err
	}
	v6, err := cfg.LocalIPv6()
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		bridge:    bridge,
		codec:     wire.NewCodec(cipher),
		auth:      keys.Auth,
		local:     wire.Echo{IPv4: v4.Addr(), IPv6: v6.Addr()},
		connector: transport.NewConnector(),
		poller:    NewPoller(),
		now:       time.Now,
		sleep:     sleepContext,
		echoID:    transport.RandUint32,
		rbuf:      make([]byte, config.MaxPDUSize),
		pbuf:      make([]byte, 0, config.MaxPDUSize),
		fbuf:      make([]byte, config.FrameBufferSize),
		mbuf:      make([]byte, 0, config.MaxPDUSize),
		sbuf:      make([]byte, 0, config.MaxPDUSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the socket and the tun device.
func (c *Client) Close() error {
	c.closeConn()
	c.state = Terminated
	return c.bridge.Close()
}

// Stats returns a snapshot of the traffic counters.
func (c *Client) Stats() Stats {
	return c.stats
}

func (c *Client) State() State {
	return c.state
}

// Peer is the address of the current socket. It is the zero value while no
// socket is open.
func (c *Client) Peer() netip.AddrPort {
	return c.peer
}

func (c *Client) attach(conn transport.Conn) {
	c.conn = conn
	c.peer = conn.RemoteAddr()
}

func (c *Client) closeConn() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil {
		logging.Debugf("close socket: %v", err)
	}
	c.conn = nil
	c.peer = netip.AddrPort{}
}

// header builds the next outgoing header and advances the sequence number.
func (c *Client) header(op wire.Opcode) wire.Header {
	h := wire.Header{Opcode: op, Seq: c.seq, Auth: c.auth}
	c.seq++
	return h
}

// send encrypts msg and hands it to the socket. Delivery is best effort: a
// missing socket or a failed send drops the message.
func (c *Client) send(msg []byte) {
	pdu, err := c.codec.Encode(c.sbuf, msg)
	if err != nil {
		c.stats.Dropped++
		logging.Debugf("drop outgoing message: %v", err)
		return
	}
	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write(pdu); err != nil {
		logging.Debugf("send to %s: %v", c.peer, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) String() string {
	return fmt.Sprintf("%s <-> %s", c.bridge.Name(), c.cfg.Peer)
}
