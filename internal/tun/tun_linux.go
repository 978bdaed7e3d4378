//go:build linux

package tun

import (
	"bytes"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"udptun/internal/netutil"
)

const (
	tunDevice = "/dev/net/tun"
	ifnamsiz  = 16
	iffTun    = 0x0001
)

type ifReq struct {
	name  [ifnamsiz]byte
	flags uint16
	_     [22]byte // padding
}

// LinuxTunDevice keeps the 4-byte packet information header (no IFF_NO_PI),
// so frames use PIFraming.
type LinuxTunDevice struct {
	fd     int
	name   string
	config Config

	closeOnce sync.Once
}

func New(cfg Config) (Device, error) {
	fd, err := unix.Open(tunDevice, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", tunDevice, err)
	}

	var req ifReq
	copy(req.name[:], cfg.Name)
	req.flags = iffTun

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), unix.TUNSETIFF, uintptr(unsafe.Pointer(&req)))
	if errno != 0 {
		unix.Close(fd)
		return nil, fmt.Errorf("ioctl TUNSETIFF: %w", errno)
	}

	name := cfg.Name
	if i := bytes.IndexByte(req.name[:], 0); i > 0 {
		name = string(req.name[:i])
	}

	dev := &LinuxTunDevice{
		fd:     fd,
		name:   name,
		config: cfg,
	}

	if err := dev.configure(); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return dev, nil
}

func (d *LinuxTunDevice) configure() error {
	commands := [][]string{
		{"ip", "link", "set", d.name, "mtu", fmt.Sprint(d.config.MTU)},
		{"ip", "link", "set", d.name, "up"},
	}

	if d.config.IPv4.IsValid() {
		commands = append(commands, []string{"ip", "addr", "add", d.config.IPv4.String(), "dev", d.name})
	}
	if d.config.IPv6.IsValid() {
		commands = append(commands, []string{"ip", "-6", "addr", "add", d.config.IPv6.String(), "dev", d.name})
	}

	return netutil.RunCommands(commands)
}

func (d *LinuxTunDevice) Read(buf []byte) (int, error) {
	for {
		n, err := unix.Read(d.fd, buf)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func (d *LinuxTunDevice) WriteFrame(hdr, payload []byte) (int, error) {
	return unix.Writev(d.fd, [][]byte{hdr, payload})
}

func (d *LinuxTunDevice) Close() error {
	var err error
	d.closeOnce.Do(func() {
		err = unix.Close(d.fd)
	})
	return err
}

func (d *LinuxTunDevice) Fd() int {
	return d.fd
}

func (d *LinuxTunDevice) Name() string {
	return d.name
}

func (d *LinuxTunDevice) MTU() int {
	return d.config.MTU
}

var _ Device = (*LinuxTunDevice)(nil)
