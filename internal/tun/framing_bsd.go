//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package tun

import "golang.org/x/sys/unix"

const hostAFInet6 = unix.AF_INET6

func defaultFraming() Framing { return AFFraming{INET6: hostAFInet6} }
