//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package client

import (
	"time"

	"golang.org/x/sys/unix"
)

const readable = unix.POLLIN | unix.POLLERR | unix.POLLHUP

type pollPoller struct {
	fds [2]unix.PollFd
}

// NewPoller returns a Poller backed by poll(2).
func NewPoller() Poller {
	return &pollPoller{}
}

func (p *pollPoller) Wait(tunFd, sockFd int, timeout time.Duration) (Readiness, error) {
	p.fds[0] = unix.PollFd{Fd: int32(tunFd), Events: unix.POLLIN}
	fds := p.fds[:1]
	if sockFd >= 0 {
		p.fds[1] = unix.PollFd{Fd: int32(sockFd), Events: unix.POLLIN}
		fds = p.fds[:2]
	}

	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err == unix.EINTR {
		return Readiness{}, nil
	}
	if err != nil || n == 0 {
		return Readiness{}, err
	}

	var r Readiness
	r.Tun = fds[0].Revents&readable != 0
	if len(fds) > 1 {
		r.Sock = fds[1].Revents&readable != 0
	}
	return r, nil
}
