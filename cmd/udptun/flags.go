package main

import (
	"github.com/spf13/pflag"

	"udptun/internal/config"
)

func bindFlags(f *pflag.FlagSet, cfg *config.Config) {
	f.StringVarP(&cfg.Peer, "remote", "r", cfg.Peer, "peer address, host:port (IPv6 in brackets)")
	f.StringVarP(&cfg.Device, "ifname", "n", cfg.Device, "tun device name")
	f.IntVarP(&cfg.MTU, "mtu", "m", cfg.MTU, "tun MTU")
	f.StringVarP(&cfg.IPv4, "ipv4-addr", "a", cfg.IPv4, "local tunnel IPv4 address, e.g. 10.7.0.2/24")
	f.StringVarP(&cfg.IPv6, "ipv6-addr", "A", cfg.IPv6, "local tunnel IPv6 address, e.g. fd00::2/64")
	f.StringVarP(&cfg.Secret, "key", "e", cfg.Secret, "shared secret")
	f.StringVarP(&cfg.Cipher, "type", "t", cfg.Cipher, "cipher: xchacha20-poly1305, chacha20-poly1305, aes-256-gcm or none")
	f.StringVar(&cfg.Framing, "framing", cfg.Framing, "tun link header: auto, pi or af")
	f.DurationVarP(&cfg.Keepalive, "keepalive", "K", cfg.Keepalive, "interval between echo probes")
	f.DurationVarP(&cfg.ReconnectTimeout, "reconnect-timeout", "R", cfg.ReconnectTimeout, "silence after which the link is reconnected")
	f.BoolVarP(&cfg.WaitDNS, "wait-dns", "w", cfg.WaitDNS, "start even if the peer cannot be resolved yet")
	f.DurationVar(&cfg.StatsInterval, "stats-interval", cfg.StatsInterval, "traffic statistics log interval, 0 to disable")
	f.BoolVarP(&cfg.Debug, "debug", "d", cfg.Debug, "debug logging")
}

var overrides = map[string]func(dst *config.Config, src config.Config){
	"remote":            func(d *config.Config, s config.Config) { d.Peer = s.Peer },
	"ifname":            func(d *config.Config, s config.Config) { d.Device = s.Device },
	"mtu":               func(d *config.Config, s config.Config) { d.MTU = s.MTU },
	"ipv4-addr":         func(d *config.Config, s config.Config) { d.IPv4 = s.IPv4 },
	"ipv6-addr":         func(d *config.Config, s config.Config) { d.IPv6 = s.IPv6 },
	"key":               func(d *config.Config, s config.Config) { d.Secret = s.Secret },
	"type":              func(d *config.Config, s config.Config) { d.Cipher = s.Cipher },
	"framing":           func(d *config.Config, s config.Config) { d.Framing = s.Framing },
	"keepalive":         func(d *config.Config, s config.Config) { d.Keepalive = s.Keepalive },
	"reconnect-timeout": func(d *config.Config, s config.Config) { d.ReconnectTimeout = s.ReconnectTimeout },
	"wait-dns":          func(d *config.Config, s config.Config) { d.WaitDNS = s.WaitDNS },
	"stats-interval":    func(d *config.Config, s config.Config) { d.StatsInterval = s.StatsInterval },
	"debug":             func(d *config.Config, s config.Config) { d.Debug = s.Debug },
}

// mergeFlags applies every flag set on the command line on top of the file
// configuration.
func mergeFlags(f *pflag.FlagSet, file, flags config.Config) config.Config {
	f.Visit(func(fl *pflag.Flag) {
		if apply, ok := overrides[fl.Name]; ok {
			apply(&file, flags)
		}
	})
	return file
}
