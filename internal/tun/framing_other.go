//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package tun

const hostAFInet6 = AFInet6BSD

func defaultFraming() Framing { return PIFraming{} }
