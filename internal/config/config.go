package config

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	ErrNoPeer         = errors.New("config: peer address is required")
	ErrInvalidMTU     = errors.New("config: mtu out of range")
	ErrInvalidTimeout = errors.New("config: keepalive and reconnect timeout must be positive")
	ErrInvalidLocal   = errors.New("config: invalid local tunnel address")
)

// Config is the full client configuration. It is read once at startup.
type Config struct {
	Peer             string        `toml:"peer"`
	Device           string        `toml:"device"`
	MTU              int           `toml:"mtu"`
	IPv4             string        `toml:"ipv4"`
	IPv6             string        `toml:"ipv6"`
	Secret           string        `toml:"secret"`
	Cipher           string        `toml:"cipher"`
	Framing          string        `toml:"framing"`
	Keepalive        time.Duration `toml:"keepalive"`
	ReconnectTimeout time.Duration `toml:"reconnect_timeout"`
	WaitDNS          bool          `toml:"wait_dns"`
	Debug            bool          `toml:"debug"`
	StatsInterval    time.Duration `toml:"stats_interval"`
}

func Default() Config {
	return Config{
		Device:           DefaultDevice,
		MTU:              DefaultMTU,
		Cipher:           DefaultCipher,
		Framing:          DefaultFraming,
		Keepalive:        DefaultKeepalive,
		ReconnectTimeout: DefaultReconnectTimeout,
		StatsInterval:    DefaultStatsInterval,
	}
}

// Load reads a TOML file on top of the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Peer == "" {
		return ErrNoPeer
	}
	if c.MTU < MinMTU || c.MTU > MaxIPPacket {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidMTU, c.MTU, MinMTU, MaxIPPacket)
	}
	if c.Keepalive <= 0 || c.ReconnectTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if _, err := c.LocalIPv4(); err != nil {
		return err
	}
	if _, err := c.LocalIPv6(); err != nil {
		return err
	}
	return nil
}

// LocalIPv4 returns the configured tunnel IPv4 prefix. The zero prefix means
// none was configured.
func (c Config) LocalIPv4() (netip.Prefix, error) {
	return parseLocal(c.IPv4, true)
}

// LocalIPv6 returns the configured tunnel IPv6 prefix, zero if unset.
func (c Config) LocalIPv6() (netip.Prefix, error) {
	return parseLocal(c.IPv6, false)
}

func parseLocal(s string, v4 bool) (netip.Prefix, error) {
	if s == "" {
		return netip.Prefix{}, nil
	}
	p, err := netip.ParsePrefix(s)
	if err != nil {
		// Bare address: host prefix.
		addr, aerr := netip.ParseAddr(s)
		if aerr != nil {
			return netip.Prefix{}, fmt.Errorf("%w: %q", ErrInvalidLocal, s)
		}
		p = netip.PrefixFrom(addr, addr.BitLen())
	}
	if p.Addr().Is4() != v4 || p.Addr().Is4In6() {
		return netip.Prefix{}, fmt.Errorf("%w: %q has the wrong address family", ErrInvalidLocal, s)
	}
	return p, nil
}
