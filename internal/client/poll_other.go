//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package client

import (
	"errors"
	"time"
)

var errPollUnsupported = errors.New("client: readiness polling not supported on this platform")

type unsupportedPoller struct{}

func NewPoller() Poller {
	return unsupportedPoller{}
}

func (unsupportedPoller) Wait(int, int, time.Duration) (Readiness, error) {
	return Readiness{}, errPollUnsupported
}
