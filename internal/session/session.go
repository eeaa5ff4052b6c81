// Package session reproduces the lsst-cfht session script: enter the
// project directory, run setup for the package, build the coloured prompt
// and come back. Nothing here touches the calling shell; the Result is
// rendered into shell statements by the caller.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lsst-cfht/cfhtenv/internal/cmdexec"
	"github.com/lsst-cfht/cfhtenv/internal/config"
	"github.com/lsst-cfht/cfhtenv/internal/envdelta"
	"github.com/lsst-cfht/cfhtenv/internal/eups"
	"github.com/lsst-cfht/cfhtenv/internal/identity"
	"github.com/lsst-cfht/cfhtenv/internal/prompt"
	"github.com/lsst-cfht/cfhtenv/internal/termcap"
	"github.com/lsst-cfht/cfhtenv/internal/workdir"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

var zlog, _ = logging.PackageLogger("session", "github.com/lsst-cfht/cfhtenv/internal/session")

var (
	// ErrSetupFailed is returned in fail-fast mode when the setup call fails.
	ErrSetupFailed = eups.ErrSetup
	// ErrProjectDir is returned in fail-fast mode when the project directory
	// cannot be entered.
	ErrProjectDir = workdir.ErrChdir
)

// Result is the explicit configuration the session produces.
type Result struct {
	Package    string            `json:"package" yaml:"package"`
	Identity   string            `json:"identity" yaml:"identity"`
	ProjectDir string            `json:"project_dir" yaml:"project_dir"`
	OriginDir  string            `json:"origin_dir" yaml:"origin_dir"`
	Status     string            `json:"status" yaml:"status"`
	SetupArgs  []string          `json:"setup_args" yaml:"setup_args"`
	Colors     termcap.Colors    `json:"colors" yaml:"colors"`
	Prompt     string            `json:"prompt" yaml:"prompt"`
	Changes    []envdelta.Change `json:"changes" yaml:"changes"`
	Undo       []envdelta.Change `json:"-" yaml:"-"`
	Warnings   []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	SetupErr   error             `json:"-" yaml:"-"`
}

// SetupOK reports whether the setup call succeeded.
func (r *Result) SetupOK() bool {
	return r.SetupErr == nil
}

// Initializer holds everything one session run needs.
type Initializer struct {
	Config    *config.Config
	Commander cmdexec.Commander
	// Shell selects the prompt markers (bash, zsh, fish, sh).
	Shell string
	// Status receives the human-readable status line.
	Status io.Writer
}

// StatusLine returns the line announcing the setup call.
func StatusLine(pkg, flag, tag string) string {
	return fmt.Sprintf("Setting %s %s %s", pkg, flag, tag)
}

// Run performs the session steps in order and always returns to the
// starting directory. In fail-open mode (the default) a failing chdir or
// setup call is logged, recorded on the Result and the run continues; in
// fail-fast mode the first failure aborts with a nil Result.
func (in *Initializer) Run(ctx context.Context) (*Result, error) {
	cfg := in.Config
	keepGoing := !cfg.FailFast

	tag, err := identity.Resolve(cfg.Identity)
	if err != nil {
		return nil, fmt.Errorf("session.Run: %w", err)
	}

	res := &Result{
		Package:    cfg.Package,
		Identity:   tag,
		ProjectDir: cfg.ProjectDir,
	}

	runErr := workdir.Within(cfg.ProjectDir, keepGoing, func(origin string) error {
		res.OriginDir = origin
		return in.steps(ctx, res)
	})

	if runErr != nil {
		if !keepGoing {
			return nil, fmt.Errorf("session.Run: %w", runErr)
		}
		// Only the chdir failure reaches here in fail-open mode.
		zlog.Warn("continuing after failure", zap.Error(runErr))
		res.Warnings = append(res.Warnings, runErr.Error())
	}
	return res, nil
}

func (in *Initializer) steps(ctx context.Context, res *Result) error {
	cfg := in.Config
	inv := eups.Invocation{
		Shell:        cfg.ShellBinary,
		SetupsScript: cfg.SetupsScript,
		Command:      cfg.SetupCommand,
		Package:      cfg.Package,
		Flag:         cfg.SetupFlag,
		Tag:          res.Identity,
	}
	res.SetupArgs = inv.Args()

	res.Status = StatusLine(inv.Package, inv.Flag, inv.Tag)
	if in.Status != nil {
		fmt.Fprintln(in.Status, res.Status)
	}

	setup, err := eups.Setup(ctx, in.Commander, inv)
	if setup != nil {
		res.Changes = setup.Changes
		res.Undo = envdelta.Undo(setup.Changes, setup.Before)
	}
	if err != nil {
		if cfg.FailFast {
			return err
		}
		zlog.Warn("setup failed, continuing", zap.String("package", inv.Package), zap.Error(err))
		res.SetupErr = err
		res.Warnings = append(res.Warnings, err.Error())
	}

	res.Colors = termcap.Resolve(ctx, in.Commander, cfg.ColorIndex(), cfg.Color)
	res.Prompt = prompt.Build(in.Shell, cfg.PromptLabel, res.Colors)

	zlog.Info("session prepared",
		zap.String("package", res.Package),
		zap.String("identity", res.Identity),
		zap.Int("changes", len(res.Changes)),
		zap.Bool("setup_ok", res.SetupOK()),
	)
	return nil
}

// Summary returns a one-line description of the result for status output.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s): %d variable(s) changed", r.Package, r.Identity, len(r.Changes))
	if r.SetupErr != nil {
		b.WriteString(", setup failed")
	}
	return b.String()
}

// IsSetupFailure reports whether err came from the setup call.
func IsSetupFailure(err error) bool {
	return errors.Is(err, ErrSetupFailed)
}
