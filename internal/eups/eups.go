// Package eups invokes the EUPS "setup" command for a package and reports
// the environment change it made.
//
// setup is a shell function defined by the EUPS bootstrap, so it cannot be
// exec'd directly. It runs inside a throw-away shell that dumps its exported
// environment before and after the call; the difference is what the calling
// shell has to apply.
package eups

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/lsst-cfht/cfhtenv/internal/cmdexec"
	"github.com/lsst-cfht/cfhtenv/internal/envdelta"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

var zlog, _ = logging.PackageLogger("eups", "github.com/lsst-cfht/cfhtenv/internal/eups")

// ErrSetup is wrapped by every failure of the setup call.
var ErrSetup = errors.New("setup failed")

// Dump section markers. Each is surrounded by NUL bytes in the output.
const (
	markerBefore = "__CFHTENV_BEFORE__"
	markerAfter  = "__CFHTENV_AFTER__"
)

// script is run as: <shell> -c script cfhtenv <setup-command> <package> <flag> <tag>.
// $CFHTENV_SETUPS, when non-empty, is sourced before the first dump so the
// variables the bootstrap exports are part of the change too.
const script = `_cfhtenv_dump() {
  for _v in $(compgen -e); do printf '%s=%s\0' "$_v" "${!_v}"; done
}
printf '\0` + markerBefore + `\0'; _cfhtenv_dump
if [ -n "$CFHTENV_SETUPS" ]; then . "$CFHTENV_SETUPS" >&2; fi
unset CFHTENV_SETUPS
_cfhtenv_cmd=$1; shift
"$_cfhtenv_cmd" "$@" >&2
_cfhtenv_rc=$?
printf '\0` + markerAfter + `\0'; _cfhtenv_dump
exit $_cfhtenv_rc
`

// Invocation describes one setup call.
type Invocation struct {
	Shell        string // shell binary, bash-compatible
	SetupsScript string // EUPS bootstrap to source, optional
	Command      string // usually "setup"
	Package      string
	Flag         string // usually "-t"
	Tag          string
}

// Args returns the arguments handed to the setup command, in order.
func (inv Invocation) Args() []string {
	return []string{inv.Package, inv.Flag, inv.Tag}
}

// Result is the outcome of a setup call.
type Result struct {
	Before  map[string]string
	After   map[string]string
	Changes []envdelta.Change
}

// Setup runs the setup command. When the command fails but the shell still
// produced both dumps, the partial Result is returned along with an error
// wrapping ErrSetup so callers may apply what was changed.
func Setup(ctx context.Context, cmd cmdexec.Commander, inv Invocation) (*Result, error) {
	args := append([]string{"-c", script, "cfhtenv", inv.Command}, inv.Args()...)
	env := map[string]string{"CFHTENV_SETUPS": inv.SetupsScript}

	zlog.Debug("invoking setup",
		zap.String("shell", inv.Shell),
		zap.String("setups_script", inv.SetupsScript),
		zap.Strings("args", append([]string{inv.Command}, inv.Args()...)),
	)

	out, runErr := cmd.Output(ctx, env, inv.Shell, args...)

	before, after, ok := split(out)
	if !ok {
		if runErr == nil {
			runErr = errors.New("environment dump missing from output")
		}
		return nil, fmt.Errorf("eups.Setup %s: %w: %w", inv.Package, ErrSetup, runErr)
	}

	res := &Result{Before: before, After: after, Changes: envdelta.Diff(before, after)}
	// CFHTENV_SETUPS only exists inside the child shell.
	res.Changes = dropName(res.Changes, "CFHTENV_SETUPS")

	zlog.Debug("setup finished", zap.Int("changes", len(res.Changes)), zap.Error(runErr))
	if runErr != nil {
		return res, fmt.Errorf("eups.Setup %s: %w: %w", inv.Package, ErrSetup, runErr)
	}
	return res, nil
}

// split extracts the before and after dumps from the shell's output.
func split(out []byte) (before, after map[string]string, ok bool) {
	b := []byte("\x00" + markerBefore + "\x00")
	a := []byte("\x00" + markerAfter + "\x00")

	i := bytes.Index(out, b)
	if i < 0 {
		return nil, nil, false
	}
	rest := out[i+len(b):]
	j := bytes.LastIndex(rest, a)
	if j < 0 {
		return nil, nil, false
	}
	return envdelta.Parse(rest[:j]), envdelta.Parse(rest[j+len(a):]), true
}

func dropName(changes []envdelta.Change, name string) []envdelta.Change {
	out := changes[:0]
	for _, c := range changes {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}
