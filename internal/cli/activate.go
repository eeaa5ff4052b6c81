package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lsst-cfht/cfhtenv/internal/envdelta"
	"github.com/lsst-cfht/cfhtenv/internal/identity"
	"github.com/lsst-cfht/cfhtenv/internal/session"
	"github.com/lsst-cfht/cfhtenv/internal/shell"
	"github.com/lsst-cfht/cfhtenv/internal/state"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// 출력 형식.
const (
	FormatShell = "shell"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

type activateOptions struct {
	shell    string
	profile  string
	identity string
	format   string
	dryRun   bool
	ifStale  time.Duration
}

func (a *App) newActivateCmd() *cobra.Command {
	var opts activateOptions

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "obs_cfht 세션을 준비하고 셸에서 eval할 명령을 출력한다",
		Long: `activate는 프로젝트 디렉토리에서 setup을 실행하고, 그 결과 환경 변화와
프롬프트를 셸 명령으로 stdout에 출력한다. 보통 cfht_setup 래퍼 함수를 통해 사용한다.

  eval "$(cfhtenv activate --shell bash)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runActivate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.shell, "shell", defaultShell(), "셸 유형 (bash, zsh, sh, fish)")
	cmd.Flags().StringVarP(&opts.profile, "profile", "p", "", "사용할 프로필 이름")
	cmd.Flags().StringVar(&opts.identity, "identity", "", "setup 태그로 사용할 사용자 이름")
	cmd.Flags().StringVar(&opts.format, "format", FormatShell, "출력 형식 (shell, json, yaml)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "셸 명령 대신 변경 내용을 사람이 읽는 형태로 출력")
	cmd.Flags().DurationVar(&opts.ifStale, "if-stale", 0, "같은 세션이 이 시간 안에 활성화됐다면 아무것도 하지 않음 (예: 8h)")
	return cmd
}

func (a *App) runActivate(ctx context.Context, stdout, stderr io.Writer, opts activateOptions) error {
	if !shell.Supported(opts.shell) {
		return fmt.Errorf("cli.activate: %w: %q", ErrUnsupportedShell, opts.shell)
	}
	switch opts.format {
	case FormatShell, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("cli.activate: 지원하지 않는 출력 형식: %q", opts.format)
	}

	cfg, err := a.loadConfig(opts.profile)
	if err != nil {
		return err
	}
	if opts.identity != "" {
		cfg.Identity = opts.identity
	}

	st, err := state.Load(a.statePath())
	if err != nil {
		zlog.Warn("state unreadable, starting fresh", zap.Error(err))
		st = state.New()
	}

	if opts.ifStale > 0 && a.fresh(st, cfg.Package, cfg.Identity, opts.ifStale) {
		zlog.Debug("session still fresh, skipping", zap.String("package", cfg.Package))
		return nil
	}

	in := &session.Initializer{
		Config:    cfg,
		Commander: a.Commander,
		Shell:     opts.shell,
		Status:    stderr,
	}
	res, err := in.Run(ctx)
	if err != nil {
		return err
	}

	undo := res.Undo
	if prior := a.priorUndo(); prior != nil {
		undo = envdelta.Merge(prior, undo)
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "경고: %s\n", w)
	}

	if opts.dryRun {
		writeDryRun(stdout, res)
		return nil
	}

	switch opts.format {
	case FormatJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("cli.activate: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("cli.activate: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("cli.activate: %w", err)
		}
	default:
		script, err := shell.Activate(res, opts.shell, undo)
		if err != nil {
			return fmt.Errorf("cli.activate: %w", err)
		}
		fmt.Fprint(stdout, script)
		a.record(st, res)
	}
	return nil
}

// fresh는 현재 셸에 같은 패키지/태그 세션이 maxAge 안에 활성화되어 있는지 확인한다.
func (a *App) fresh(st *state.State, pkg, override string, maxAge time.Duration) bool {
	if a.getenv(shell.VarActive) != pkg {
		return false
	}
	tag, err := identity.Resolve(override)
	if err != nil || tag != a.getenv(shell.VarTag) {
		return false
	}
	return st.Recent(pkg, tag, maxAge, a.now())
}

// priorUndo는 이미 활성화된 세션의 되돌리기 기록을 읽는다.
// 재활성화 시 최초 활성화 이전의 값이 보존되도록 병합에 사용한다.
func (a *App) priorUndo() []envdelta.Change {
	token := a.getenv(shell.VarUndo)
	if token == "" {
		return nil
	}
	prior, err := envdelta.Decode(token)
	if err != nil {
		zlog.Warn("ignoring unreadable undo record", zap.Error(err))
		return nil
	}
	return prior
}

func (a *App) record(st *state.State, res *session.Result) {
	st.Record(res.Package, state.Entry{
		Identity:    res.Identity,
		ProjectDir:  res.ProjectDir,
		ActivatedAt: a.now().UTC().Format(time.RFC3339),
		SetupOK:     res.SetupOK(),
		Changes:     len(res.Changes),
	})
	if err := st.Save(a.statePath()); err != nil {
		zlog.Warn("failed to save state", zap.Error(err))
	}
}

// writeDryRun은 변경 내용을 사람이 읽는 형태로 출력한다. 비밀 값은 마스킹한다.
func writeDryRun(w io.Writer, res *session.Result) {
	fmt.Fprintf(w, "%s\n", labelStyle.Render(res.Summary()))
	fmt.Fprintf(w, "  setup:  %s\n", strings.Join(res.SetupArgs, " "))
	fmt.Fprintf(w, "  dir:    %s\n", res.ProjectDir)
	for _, c := range res.Changes {
		if c.Op == envdelta.OpUnset {
			fmt.Fprintf(w, "  %s %s\n", removedStyle.Render("-"), c.Name)
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", addedStyle.Render("+"), MaskSecrets(c.Name+"="+c.Value))
	}
	fmt.Fprintf(w, "  prompt: %q\n", res.Prompt)
}
