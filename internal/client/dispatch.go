package client

import (
	"errors"
	"fmt"
	"time"

	"udptun/internal/logging"
	"udptun/internal/packet"
	"udptun/internal/wire"
)

// errConnectionBad means the socket itself failed and must be replaced.
var errConnectionBad = errors.New("client: connection went bad")

// receiveNetwork reads and dispatches one datagram. Undecodable datagrams
// are dropped. A read error or an empty read returns errConnectionBad.
func (c *Client) receiveNetwork(now time.Time) error {
	n, err := c.conn.Read(c.rbuf)
	if err != nil {
		return fmt.Errorf("%w: %v", errConnectionBad, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: empty read", errConnectionBad)
	}

	msg, err := c.codec.Decode(c.pbuf, c.rbuf[:n])
	if err != nil {
		c.stats.Dropped++
		logging.Debugf("drop datagram from %s: %v", c.peer, err)
		return nil
	}
	return c.handleMessage(msg, now)
}

// handleMessage acts on one decrypted message. Messages that fail the
// header or auth checks have no effect at all; any authenticated message
// refreshes LastRecv before its body is validated. The only error returned
// is a tun write failure.
func (c *Client) handleMessage(msg []byte, now time.Time) error {
	h, err := wire.ParseHeader(msg)
	if err != nil {
		c.stats.Dropped++
		return nil
	}
	if h.Auth != c.auth {
		c.stats.Dropped++
		return nil
	}
	c.timers.LastRecv = now

	switch h.Opcode {
	case wire.OpIPData:
		d, err := wire.ParseIPData(msg)
		if err != nil {
			c.stats.Dropped++
			if errors.Is(err, wire.ErrUnknownProtocol) {
				logging.Debugf("invalid protocol from %s: %v", c.peer, err)
			}
			return nil
		}
		if err := c.bridge.WriteFrame(d.Proto, d.Packet); err != nil {
			return fmt.Errorf("deliver %s: %w", packet.Describe(d.Proto, d.Packet), err)
		}
		c.stats.RxPackets++
		c.stats.RxBytes += uint64(len(d.Packet))
	case wire.OpEchoAck:
		c.timers.LastEchoAck = now
	}
	return nil
}
