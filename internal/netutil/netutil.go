// Package netutil holds the host-side helpers for configuring the tunnel
// interface.
package netutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// IsAdmin reports whether the process may create and configure tun
// interfaces.
func IsAdmin() bool {
	return os.Geteuid() == 0
}

// RunCommands executes each command in order and stops at the first
// failure. The error carries the command's combined output.
func RunCommands(commands [][]string) error {
	for _, args := range commands {
		var out bytes.Buffer
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Stdout = &out
		cmd.Stderr = &out
		if err := cmd.Run(); err != nil {
			msg := strings.TrimSpace(out.String())
			if msg == "" {
				return fmt.Errorf("exec %s: %w", strings.Join(args, " "), err)
			}
			return fmt.Errorf("exec %s: %w: %s", strings.Join(args, " "), err, msg)
		}
	}
	return nil
}
