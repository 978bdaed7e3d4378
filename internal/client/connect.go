package client

import (
	"context"
	"errors"
	"fmt"

	"udptun/internal/config"
	"udptun/internal/logging"
	"udptun/internal/transport"
)

// Start makes the first connection attempt. An unparseable peer address is
// fatal. A temporary failure is fatal too unless WaitDNS is set, in which
// case the session starts without a socket and LastRecv stays at epoch
// until a reconnect succeeds.
func (c *Client) Start(ctx context.Context) error {
	now := c.now()
	conn, err := c.connector.Connect(ctx, c.cfg.Peer)
	switch {
	case err == nil:
		c.attach(conn)
		c.timers.LastRecv = now
		logging.Infof("connected to %s, interface %s", c.peer, c.bridge.Name())
	case errors.Is(err, transport.ErrInvalidAddress):
		return fmt.Errorf("invalid peer address %q: %w", c.cfg.Peer, err)
	case transport.IsTemporary(err) && c.cfg.WaitDNS:
		c.timers.LastRecv = epoch
		logging.Infof("interface %s up", c.bridge.Name())
		logging.Warnf("connection to '%s' temporarily unavailable, to be retried later: %v", c.cfg.Peer, err)
	default:
		return fmt.Errorf("unable to connect to %q: %w", c.cfg.Peer, err)
	}

	c.timers.LastEchoReq = epoch
	c.timers.LastEchoAck = epoch
	c.lastStats = now
	c.state = AwaitingIO
	return nil
}

// reconnect replaces the socket with a fresh one bound to a new local port.
// It retries every ReconnectDelay with no attempt limit and services no tun
// traffic meanwhile. It only fails when ctx is done.
func (c *Client) reconnect(ctx context.Context) error {
	c.state = Reconnecting
	c.stats.Reconnects++
	c.closeConn()

	for {
		conn, err := c.connector.Connect(ctx, c.cfg.Peer)
		if err == nil {
			c.attach(conn)
			break
		}
		logging.Warnf("unable to connect to '%s', retrying: %v", c.cfg.Peer, err)
		if err := c.sleep(ctx, config.ReconnectDelay); err != nil {
			c.state = Terminated
			return err
		}
	}

	c.timers.Reset(c.now())
	c.state = AwaitingIO
	logging.Infof("reconnected to %s", c.peer)
	return nil
}
