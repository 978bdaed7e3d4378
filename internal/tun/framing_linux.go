package tun

import "golang.org/x/sys/unix"

const hostAFInet6 = unix.AF_INET6

func defaultFraming() Framing { return PIFraming{} }
