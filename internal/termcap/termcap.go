// Package termcap queries the terminal-capability database (through tput)
// for the control sequences used to colour the prompt.
package termcap

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/lsst-cfht/cfhtenv/internal/cmdexec"
	"github.com/lsst-cfht/cfhtenv/internal/config"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var zlog, _ = logging.PackageLogger("termcap", "github.com/lsst-cfht/cfhtenv/internal/termcap")

// Capability names understood by tput.
const (
	CapForeground = "setaf"
	CapReset      = "sgr0"
)

// Colors holds the colour-on and colour-off control sequences.
type Colors struct {
	On  string `json:"on" yaml:"on"`
	Off string `json:"off" yaml:"off"`
	// Fallback is true when at least one sequence did not come from tput.
	Fallback bool `json:"fallback" yaml:"fallback"`
}

// Empty reports whether colouring is disabled.
func (c Colors) Empty() bool {
	return c.On == "" && c.Off == ""
}

// ttyPath is the controlling terminal. Under eval "$(...)" stdout is a
// pipe and stderr may be redirected, but /dev/tty still reaches the user.
var ttyPath = "/dev/tty"

var isatty = term.IsTerminal

// isTerminal reports whether the user sits at a terminal: stderr is one,
// or the process still has a controlling terminal. Swapped in tests.
var isTerminal = func() bool {
	if isatty(int(os.Stderr.Fd())) {
		return true
	}
	tty, err := os.Open(ttyPath)
	if err != nil {
		return false
	}
	defer tty.Close()
	return isatty(int(tty.Fd()))
}

// Query runs `tput <capability> [args...]` and returns the raw sequence.
func Query(ctx context.Context, cmd cmdexec.Commander, capability string, args ...string) (string, error) {
	out, err := cmd.Output(ctx, nil, "tput", append([]string{capability}, args...)...)
	if err != nil {
		return "", fmt.Errorf("termcap.Query %s: %w", capability, err)
	}
	return string(out), nil
}

// Enabled decides whether colours are wanted for the given mode.
func Enabled(mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return isTerminal()
	}
}

// Resolve returns the sequences for foreground colour index color and the
// reset sequence. A failed query is replaced with the plain ANSI sequence
// and logged; Resolve never fails.
func Resolve(ctx context.Context, cmd cmdexec.Commander, color int, mode string) Colors {
	if !Enabled(mode) {
		zlog.Debug("colour disabled", zap.String("mode", mode))
		return Colors{}
	}

	var c Colors
	on, err := Query(ctx, cmd, CapForeground, strconv.Itoa(color))
	if err != nil || on == "" {
		zlog.Warn("tput foreground query failed, using ANSI fallback", zap.Int("color", color), zap.Error(err))
		on = ANSIForeground(color)
		c.Fallback = true
	}
	off, err := Query(ctx, cmd, CapReset)
	if err != nil || off == "" {
		zlog.Warn("tput reset query failed, using ANSI fallback", zap.Error(err))
		off = ANSIReset
		c.Fallback = true
	}
	c.On, c.Off = on, off
	return c
}

// ANSIReset is the SGR reset sequence.
const ANSIReset = "\x1b[0m"

// ANSIForeground returns the SGR sequence for one of the eight base colours.
func ANSIForeground(color int) string {
	return fmt.Sprintf("\x1b[3%dm", color)
}
