package cli

import (
	"fmt"
	"io"

	"github.com/lsst-cfht/cfhtenv/internal/setup"
	"github.com/lsst-cfht/cfhtenv/internal/shell"
	"github.com/spf13/cobra"
)

func (a *App) newHookCmd() *cobra.Command {
	var shellType string

	cmd := &cobra.Command{
		Use:   "hook",
		Short: "cfht_setup / cfht_unsetup 래퍼 함수를 출력한다",
		Long: `hook은 셸 설정 파일에 넣거나 eval할 래퍼 함수를 출력한다.

  eval "$(cfhtenv hook --shell bash)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !shell.Supported(shellType) {
				return fmt.Errorf("cli.hook: %w: %q", ErrUnsupportedShell, shellType)
			}
			fmt.Fprint(cmd.OutOrStdout(), shell.HookSnippet(shellType))
			return nil
		},
	}
	cmd.Flags().StringVar(&shellType, "shell", defaultShell(), "셸 유형 (bash, zsh, sh, fish)")
	return cmd
}

func (a *App) newInstallCmd() *cobra.Command {
	var shellType, rcPath string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "셸 설정 파일에 래퍼 함수를 설치한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInstall(cmd.OutOrStdout(), shellType, rcPath)
		},
	}
	cmd.Flags().StringVar(&shellType, "shell", defaultShell(), "셸 유형 (bash, zsh, sh, fish)")
	cmd.Flags().StringVar(&rcPath, "rc", "", "설치할 파일 경로 (기본: 셸별 설정 파일)")
	return cmd
}

func (a *App) runInstall(out io.Writer, shellType, rcPath string) error {
	if !shell.Supported(shellType) {
		return fmt.Errorf("cli.install: %w: %q", ErrUnsupportedShell, shellType)
	}
	if rcPath == "" {
		rcPath = setup.ShellRCPath(shellType)
	}
	if setup.HookInstalled(rcPath) {
		fmt.Fprintf(out, "이미 설치되어 있습니다: %s\n", rcPath)
		return nil
	}
	if err := setup.InstallShellHook(shellType, rcPath); err != nil {
		return fmt.Errorf("cli.install: %w", err)
	}
	fmt.Fprintf(out, "%s 래퍼 함수를 설치했습니다: %s\n", okStyle.Render("✓"), rcPath)
	fmt.Fprintln(out, "새 셸을 열거나 설정 파일을 다시 읽은 뒤 cfht_setup을 실행하세요.")
	return nil
}
