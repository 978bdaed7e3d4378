package client

import (
	"bytes"
	"context"
	"errors"
	"net/netip"
	"os"
	"testing"
	"time"

	"github.com/pterm/pterm"

	"udptun/internal/config"
	"udptun/internal/crypto"
	"udptun/internal/logging"
	"udptun/internal/transport"
	"udptun/internal/tun"
	"udptun/internal/wire"
)

type readResult struct {
	data []byte
	err  error
}

type fakeConn struct {
	fd     int
	reads  []readResult
	writes [][]byte
	closed bool
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if len(c.reads) == 0 {
		return 0, errors.New("fake conn: nothing to read")
	}
	r := c.reads[0]
	c.reads = c.reads[1:]
	if r.err != nil {
		return 0, r.err
	}
	return copy(p, r.data), nil
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.writes = append(c.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) Fd() int                    { return c.fd }
func (c *fakeConn) LocalAddr() netip.AddrPort  { return netip.AddrPortFrom(netip.MustParseAddr("192.0.2.100"), uint16(40000+c.fd)) }
func (c *fakeConn) RemoteAddr() netip.AddrPort { return netip.MustParseAddrPort("192.0.2.1:1414") }

// fakeConnector hands out a new fakeConn per successful call. results is
// consumed in order; a nil entry or an exhausted list means success.
type fakeConnector struct {
	results []error
	conns   []*fakeConn
	calls   int
}

func (f *fakeConnector) Connect(ctx context.Context, peerAddr string) (transport.Conn, error) {
	f.calls++
	if len(f.results) > 0 {
		err := f.results[0]
		f.results = f.results[1:]
		if err != nil {
			return nil, err
		}
	}
	conn := &fakeConn{fd: 100 + len(f.conns)}
	f.conns = append(f.conns, conn)
	return conn, nil
}

type fakePoller struct {
	ready   []Readiness
	err     error
	sockFds []int
}

func (p *fakePoller) Wait(tunFd, sockFd int, timeout time.Duration) (Readiness, error) {
	p.sockFds = append(p.sockFds, sockFd)
	if p.err != nil {
		return Readiness{}, p.err
	}
	if len(p.ready) == 0 {
		return Readiness{}, nil
	}
	r := p.ready[0]
	p.ready = p.ready[1:]
	return r, nil
}

type fakeDevice struct {
	reads   [][]byte
	readErr error
	writes  [][]byte
	werr    error
	closed  bool
}

func (d *fakeDevice) Read(buf []byte) (int, error) {
	if len(d.reads) == 0 {
		if d.readErr != nil {
			return 0, d.readErr
		}
		return 0, errors.New("fake device: nothing to read")
	}
	n := copy(buf, d.reads[0])
	d.reads = d.reads[1:]
	return n, nil
}

func (d *fakeDevice) WriteFrame(hdr, payload []byte) (int, error) {
	if d.werr != nil {
		return 0, d.werr
	}
	d.writes = append(d.writes, append(append([]byte(nil), hdr...), payload...))
	return len(hdr) + len(payload), nil
}

func (d *fakeDevice) Fd() int      { return 3 }
func (d *fakeDevice) Name() string { return "vtun-test" }
func (d *fakeDevice) MTU() int     { return config.DefaultMTU }
func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// harness is a Client wired to fakes plus a peer-side codec sharing its
// secret.
type harness struct {
	t       *testing.T
	c       *Client
	dev     *fakeDevice
	conns   *fakeConnector
	poller  *fakePoller
	clock   *fakeClock
	sleeps  []time.Duration
	onSleep func()
	logs    *bytes.Buffer

	peer *wire.Codec
	auth [wire.AuthLen]byte
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Peer = "vpn.example.com:1414"
	cfg.Secret = "correct horse battery staple"
	cfg.IPv4 = "10.7.0.2/24"
	cfg.IPv6 = "fd00::2/64"
	cfg.StatsInterval = 0
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		t:      t,
		dev:    &fakeDevice{},
		conns:  &fakeConnector{},
		poller: &fakePoller{},
		clock:  &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		logs:   &bytes.Buffer{},
	}
	pterm.DisableStyling()
	logging.SetOutput(h.logs)
	t.Cleanup(func() {
		logging.SetOutput(os.Stderr)
		pterm.EnableStyling()
	})

	sleep := func(ctx context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		if h.onSleep != nil {
			h.onSleep()
		}
		h.clock.Advance(d)
		return ctx.Err()
	}

	c, err := New(cfg, tun.NewBridge(h.dev, tun.PIFraming{}),
		WithConnector(h.conns),
		WithPoller(h.poller),
		WithClock(h.clock.Now),
		WithSleep(sleep),
		WithEchoID(func() uint32 { return 0xdeadbeef }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.c = c

	keys, err := crypto.DeriveKeys(cfg.Secret)
	if err != nil {
		t.Fatal(err)
	}
	cipher, err := crypto.New(cfg.Cipher, keys.Cipher)
	if err != nil {
		t.Fatal(err)
	}
	h.peer = wire.NewCodec(cipher)
	h.auth = keys.Auth
	return h
}

// start runs Start with a connector that succeeds.
func (h *harness) start() {
	h.t.Helper()
	if err := h.c.Start(context.Background()); err != nil {
		h.t.Fatalf("Start: %v", err)
	}
}

func (h *harness) conn() *fakeConn {
	h.t.Helper()
	if len(h.conns.conns) == 0 {
		h.t.Fatal("no connection was made")
	}
	return h.conns.conns[len(h.conns.conns)-1]
}

func (h *harness) step() error {
	return h.c.step(context.Background())
}

// seal encrypts a plaintext message the way the peer would.
func (h *harness) seal(msg []byte) []byte {
	h.t.Helper()
	pdu, err := h.peer.Encode(make([]byte, 0, config.MaxPDUSize), msg)
	if err != nil {
		h.t.Fatalf("peer encode: %v", err)
	}
	return pdu
}

// open decrypts a PDU the client sent.
func (h *harness) open(pdu []byte) []byte {
	h.t.Helper()
	msg, err := h.peer.Decode(make([]byte, 0, config.MaxPDUSize), pdu)
	if err != nil {
		h.t.Fatalf("peer decode: %v", err)
	}
	return msg
}

// sent decodes every header the client wrote to conn.
func (h *harness) sent(conn *fakeConn) []wire.Header {
	h.t.Helper()
	var out []wire.Header
	for _, pdu := range conn.writes {
		hdr, err := wire.ParseHeader(h.open(pdu))
		if err != nil {
			h.t.Fatal(err)
		}
		out = append(out, hdr)
	}
	return out
}

func (h *harness) ipData(proto uint16, pkt []byte) []byte {
	return wire.AppendIPData(nil, wire.Header{Auth: h.auth}, proto, pkt)
}

func (h *harness) echo(op wire.Opcode) []byte {
	return wire.AppendEcho(nil, wire.Header{Opcode: op, Auth: h.auth}, wire.Echo{ID: 7})
}

func piFrame(proto uint16, pkt []byte) []byte {
	hdr := make([]byte, 4)
	if err := (tun.PIFraming{}).Encode(hdr, proto); err != nil {
		panic(err)
	}
	return append(hdr, pkt...)
}
