// Command udptun connects a local tun interface to a remote tunnel server
// over UDP.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"udptun/internal/client"
	"udptun/internal/config"
	"udptun/internal/logging"
	"udptun/internal/netutil"
	"udptun/internal/tun"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := config.Default()
	var configPath string

	cmd := &cobra.Command{
		Use:           "udptun -r host:port [flags]",
		Short:         "Point-to-point UDP tunnel client",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags
			if configPath != "" {
				file, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = mergeFlags(cmd.Flags(), file, flags)
			}
			return run(cmd.Context(), cfg)
		},
	}
	bindFlags(cmd.Flags(), &flags)
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML configuration file; explicit flags override it")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	if cfg.Debug {
		logging.EnableDebug()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !netutil.IsAdmin() {
		return errors.New("root privileges required")
	}

	framing, err := tun.ParseFraming(cfg.Framing)
	if err != nil {
		return err
	}
	v4, _ := cfg.LocalIPv4()
	v6, _ := cfg.LocalIPv6()

	dev, err := tun.New(tun.Config{Name: cfg.Device, IPv4: v4, IPv6: v6, MTU: cfg.MTU})
	if err != nil {
		return err
	}
	bridge := tun.NewBridge(dev, framing)

	c, err := client.New(cfg, bridge)
	if err != nil {
		bridge.Close()
		return err
	}
	defer c.Close()

	pterm.Info.Printfln("udptun %s, interface %s, mtu %d, cipher %s", version, bridge.Name(), bridge.MTU(), cfg.Cipher)

	if err := c.Start(ctx); err != nil {
		return err
	}
	err = c.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logging.Infof("shutting down: %s", c.Stats())
		return nil
	}
	return err
}
