package client

import (
	"errors"
	"time"

	"udptun/internal/logging"
	"udptun/internal/packet"
	"udptun/internal/tun"
	"udptun/internal/wire"
)

// receiveTunnel forwards one tun frame to the peer. Frames that are not
// IPv4 or IPv6, or are shorter than their IP header, are dropped. Any other
// error comes from the device and is fatal.
func (c *Client) receiveTunnel() error {
	f, err := c.bridge.ReadFrame(c.fbuf)
	if err != nil {
		if !tun.IsDrop(err) {
			return err
		}
		c.stats.Dropped++
		if errors.Is(err, tun.ErrUnknownProtocol) {
			logging.Debugf("drop tun frame: %v", err)
		}
		return nil
	}

	if len(f.Packet) > c.mbufRoom() {
		c.stats.Dropped++
		if logging.DebugEnabled() {
			logging.Debugf("drop oversized %s", packet.Describe(f.Proto, f.Packet))
		}
		return nil
	}
	msg := wire.AppendIPData(c.mbuf[:0], c.header(wire.OpIPData), f.Proto, f.Packet)
	c.send(msg)
	c.stats.TxPackets++
	c.stats.TxBytes += uint64(len(f.Packet))
	return nil
}

// mbufRoom is the largest IP packet an IP_DATA message can carry after
// encryption.
func (c *Client) mbufRoom() int {
	return cap(c.sbuf) - c.codec.Overhead() - wire.IPDataOffset
}

// sendEcho emits one ECHO_REQ carrying the local tunnel addresses.
func (c *Client) sendEcho(now time.Time) {
	e := c.local
	e.ID = c.echoID()
	msg := wire.AppendEcho(c.mbuf[:0], c.header(wire.OpEchoReq), e)
	c.send(msg)
	c.timers.LastEchoReq = now
}
