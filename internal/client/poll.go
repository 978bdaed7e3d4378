package client

import "time"

// Readiness reports which descriptors can be read without blocking.
type Readiness struct {
	Tun  bool
	Sock bool
}

// Poller waits until the tun device or the socket is readable, or until
// timeout elapses. sockFd is -1 when there is no socket. An interrupted
// wait reports nothing ready.
type Poller interface {
	Wait(tunFd, sockFd int, timeout time.Duration) (Readiness, error)
}
