package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"udptun/internal/config"
	"udptun/internal/logging"
)

type State int

const (
	AwaitingIO State = iota
	Reconnecting
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingIO:
		return "awaiting-io"
	case Reconnecting:
		return "reconnecting"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Run drives the session until a fatal error or until ctx is done. Start
// must have succeeded first. The returned error is never nil.
func (c *Client) Run(ctx context.Context) error {
	logging.Debugf("session %s running", c)
	for {
		if err := ctx.Err(); err != nil {
			c.state = Terminated
			return err
		}
		if err := c.step(ctx); err != nil {
			c.state = Terminated
			return err
		}
	}
}

// step is one loop iteration: wait for readiness, run the liveness checks,
// then service at most one datagram and one tun frame, network first.
func (c *Client) step(ctx context.Context) error {
	sockFd := -1
	if c.conn != nil {
		sockFd = c.conn.Fd()
	}
	ready, err := c.poller.Wait(c.bridge.Fd(), sockFd, config.PollTimeout)
	if err != nil {
		return fmt.Errorf("poll: %w", err)
	}

	now := c.now()
	c.timers.ClampFuture(now)
	if c.timers.ProbeDue(now, c.cfg.Keepalive) && c.conn != nil {
		c.sendEcho(now)
	}
	if c.timers.Dead(now, c.cfg.ReconnectTimeout) {
		if c.conn != nil {
			logging.Warnf("no reply from %s for %s, reconnecting", c.peer, now.Sub(c.timers.LastRecv).Truncate(time.Second))
		}
		return c.reconnect(ctx)
	}
	c.logStats(now)

	if ready.Sock && c.conn != nil {
		if err := c.receiveNetwork(now); err != nil {
			if !errors.Is(err, errConnectionBad) {
				return err
			}
			logging.Warnf("%v, about to reconnect", err)
			return c.reconnect(ctx)
		}
	}

	if ready.Tun {
		if err := c.receiveTunnel(); err != nil {
			return err
		}
	}
	return nil
}
