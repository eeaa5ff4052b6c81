package cli

import (
	"fmt"
	"io"

	"github.com/lsst-cfht/cfhtenv/internal/envdelta"
	"github.com/lsst-cfht/cfhtenv/internal/shell"
	"github.com/lsst-cfht/cfhtenv/internal/state"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *App) newDeactivateCmd() *cobra.Command {
	var shellType string

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "activate가 바꾼 환경과 프롬프트를 되돌리는 명령을 출력한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDeactivate(cmd.OutOrStdout(), cmd.ErrOrStderr(), shellType)
		},
	}
	cmd.Flags().StringVar(&shellType, "shell", defaultShell(), "셸 유형 (bash, zsh, sh, fish)")
	return cmd
}

func (a *App) runDeactivate(stdout, stderr io.Writer, shellType string) error {
	if !shell.Supported(shellType) {
		return fmt.Errorf("cli.deactivate: %w: %q", ErrUnsupportedShell, shellType)
	}

	token := a.getenv(shell.VarUndo)
	if token == "" && a.getenv(shell.VarActive) == "" {
		fmt.Fprintln(stderr, "활성화된 cfhtenv 세션이 없습니다.")
		return nil
	}

	undo, err := envdelta.Decode(token)
	if err != nil {
		// 기록이 손상되어도 마커와 프롬프트는 정리한다
		fmt.Fprintf(stderr, "경고: 되돌리기 기록을 읽을 수 없습니다: %v\n", err)
		undo = nil
	}
	fmt.Fprint(stdout, shell.Deactivate(shellType, undo))
	a.forget(a.getenv(shell.VarActive))
	return nil
}

// forget은 비활성화된 패키지의 활성화 기록을 지운다.
func (a *App) forget(pkg string) {
	if pkg == "" {
		return
	}
	st, err := state.Load(a.statePath())
	if err != nil {
		zlog.Warn("state unreadable, nothing to forget", zap.Error(err))
		return
	}
	if _, ok := st.Lookup(pkg); !ok {
		return
	}
	st.Forget(pkg)
	if err := st.Save(a.statePath()); err != nil {
		zlog.Warn("failed to save state", zap.Error(err))
	}
}
