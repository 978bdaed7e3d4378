//go:build darwin

package tun

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"udptun/internal/netutil"
)

const (
	utunControlName = "com.apple.net.utun_control"
	utunOptIfname   = 2
)

// DarwinTunDevice is a utun kernel-control socket. Frames carry a 4-byte
// address family header, so they use AFFraming.
type DarwinTunDevice struct {
	fd     int
	name   string
	config Config
	wbuf   []byte

	closeOnce sync.Once
}

// New opens utunN when cfg.Name is "utunN", or the next free unit when the
// name is empty or not a utun name.
func New(cfg Config) (Device, error) {
	fd, err := unix.Socket(unix.AF_SYSTEM, unix.SOCK_DGRAM, unix.SYSPROTO_CONTROL)
	if err != nil {
		return nil, fmt.Errorf("socket AF_SYSTEM: %w", err)
	}

	info := &unix.CtlInfo{}
	for i, c := range []byte(utunControlName) {
		info.Name[i] = int8(c)
	}
	if err := unix.IoctlCtlInfo(fd, info); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ioctl CTLIOCGINFO: %w", err)
	}

	var unit uint32
	if n, err := strconv.Atoi(strings.TrimPrefix(cfg.Name, "utun")); err == nil && strings.HasPrefix(cfg.Name, "utun") {
		unit = uint32(n) + 1
	}
	if err := unix.Connect(fd, &unix.SockaddrCtl{ID: info.Id, Unit: unit}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("connect utun: %w", err)
	}

	name, err := unix.GetsockoptString(fd, unix.SYSPROTO_CONTROL, utunOptIfname)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("utun ifname: %w", err)
	}

	dev := &DarwinTunDevice{
		fd:     fd,
		name:   name,
		config: cfg,
		wbuf:   make([]byte, 0, cfg.MTU+4),
	}
	if err := dev.configure(); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return dev, nil
}

func (d *DarwinTunDevice) configure() error {
	commands := [][]string{
		{"ifconfig", d.name, "mtu", fmt.Sprint(d.config.MTU), "up"},
	}
	if p := d.config.IPv4; p.IsValid() {
		commands = append(commands, []string{"ifconfig", d.name, "inet", p.String(), p.Addr().String()})
	}
	if p := d.config.IPv6; p.IsValid() {
		commands = append(commands, []string{"ifconfig", d.name, "inet6", p.Addr().String(), "prefixlen", fmt.Sprint(p.Bits())})
	}

	return netutil.RunCommands(commands)
}

func (d *DarwinTunDevice) Read(buf []byte) (int, error) {
	for {
		n, err := unix.Read(d.fd, buf)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

// WriteFrame gathers hdr and payload into one datagram; a utun socket takes
// exactly one packet per write.
func (d *DarwinTunDevice) WriteFrame(hdr, payload []byte) (int, error) {
	d.wbuf = append(append(d.wbuf[:0], hdr...), payload...)
	return unix.Write(d.fd, d.wbuf)
}

func (d *DarwinTunDevice) Close() error {
	var err error
	d.closeOnce.Do(func() {
		err = unix.Close(d.fd)
	})
	return err
}

func (d *DarwinTunDevice) Fd() int      { return d.fd }
func (d *DarwinTunDevice) Name() string { return d.name }
func (d *DarwinTunDevice) MTU() int     { return d.config.MTU }

var _ Device = (*DarwinTunDevice)(nil)
