package client

import "time"

// epoch stands in for "never". Comparing against it makes a probe due and a
// link dead on the next check.
var epoch = time.Unix(0, 0)

// Timers holds the liveness timestamps of a session.
type Timers struct {
	LastRecv    time.Time
	LastEchoReq time.Time
	LastEchoAck time.Time
}

// ClampFuture pulls any timestamp that lies ahead of now back to now, so a
// wall clock that jumped backwards cannot suppress probes indefinitely.
func (t *Timers) ClampFuture(now time.Time) {
	for _, ts := range []*time.Time{&t.LastRecv, &t.LastEchoReq, &t.LastEchoAck} {
		if ts.After(now) {
			*ts = now
		}
	}
}

// ProbeDue reports whether more than interval has passed since the last
// echo request. Acks are not considered.
func (t Timers) ProbeDue(now time.Time, interval time.Duration) bool {
	return now.Sub(t.LastEchoReq) > interval
}

// Dead reports whether nothing authenticated has arrived for longer than
// timeout.
func (t Timers) Dead(now time.Time, timeout time.Duration) bool {
	return now.Sub(t.LastRecv) > timeout
}

// Reset starts a fresh probe cycle after a successful connect.
func (t *Timers) Reset(now time.Time) {
	t.LastRecv = now
	t.LastEchoReq = epoch
	t.LastEchoAck = epoch
}

func (c *Client) Timers() Timers {
	return c.timers
}
