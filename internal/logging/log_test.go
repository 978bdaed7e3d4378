package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/pterm/pterm"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	pterm.DisableStyling()
	SetOutput(&buf)
	prev := pterm.DefaultLogger.Level
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		pterm.DefaultLogger.Level = prev
		pterm.EnableStyling()
	})

	pterm.DefaultLogger.Level = pterm.LogLevelInfo
	Debugf("hidden %d", 1)
	Infof("connected to %s", "192.0.2.1:1414")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug message printed at info level")
	}
	if !strings.Contains(buf.String(), "connected to 192.0.2.1:1414") {
		t.Errorf("info message missing from %q", buf.String())
	}
	if DebugEnabled() {
		t.Error("DebugEnabled() = true at info level")
	}

	buf.Reset()
	EnableDebug()
	Debugf("dropped %d bytes", 7)
	if !strings.Contains(buf.String(), "dropped 7 bytes") {
		t.Errorf("debug message missing from %q", buf.String())
	}
	if !DebugEnabled() {
		t.Error("DebugEnabled() = false after EnableDebug")
	}
}
