package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/lsst-cfht/cfhtenv/internal/setup"
	"github.com/spf13/cobra"
)

// configTemplate는 config init이 생성하는 기본 config.toml 내용이다.
const configTemplate = `# cfhtenv configuration file

version = 1

# obs_cfht 체크아웃 경로. setup은 이 디렉토리 안에서 실행된다.
project_dir = "~/lsst/obs_cfht"
package = "obs_cfht"

# EUPS 부트스트랩. 비워두면 $EUPS_DIR/bin/setups.sh를 사용한다.
# setups_script = "/opt/lsst/software/stack/eups/bin/setups.sh"
# setup_command = "setup"
# setup_flag = "-t"
# shell_binary = "bash"

# setup 태그. 비워두면 로그인 사용자 이름을 사용한다.
# identity = ""

prompt_label = "lsst-cfht"
prompt_color = 2     # tput setaf 색상 번호 (0-7)
color = "auto"       # auto, always, never

# true면 chdir/setup 실패 시 즉시 중단한다.
fail_fast = false

# [profiles.megacam]
# project_dir = "~/lsst/obs_cfht_megacam"
# prompt_label = "lsst-megacam"
# prompt_color = 4
`

func (a *App) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "설정 파일을 생성하거나 확인한다",
	}
	cmd.AddCommand(a.newConfigInitCmd(), a.newConfigShowCmd(), a.newConfigPathCmd())
	return cmd
}

func (a *App) newConfigInitCmd() *cobra.Command {
	var force, interactive bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "기본 설정 파일을 생성한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return a.runConfigInteractive(cmd)
			}
			return a.runConfigInit(cmd.OutOrStdout(), force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "기존 설정 파일을 덮어쓴다")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "대화형 폼으로 설정한다")
	return cmd
}

// runConfigInit은 설정 파일 템플릿을 생성한다.
func (a *App) runConfigInit(out io.Writer, force bool) error {
	if _, err := os.Stat(a.CfgPath); err == nil && !force {
		return fmt.Errorf("cli.config: 설정 파일이 이미 존재합니다: %s (--force로 덮어쓰기)", a.CfgPath)
	}

	if err := os.MkdirAll(filepath.Dir(a.CfgPath), 0700); err != nil {
		return fmt.Errorf("cli.config: 디렉토리 생성 실패: %w", err)
	}
	if err := os.WriteFile(a.CfgPath, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("cli.config: 설정 파일 생성 실패: %w", err)
	}

	fmt.Fprintf(out, "설정 파일이 생성되었습니다: %s\n", a.CfgPath)
	fmt.Fprintln(out, "project_dir을 확인한 후 cfhtenv doctor로 환경을 점검하세요.")
	return nil
}

func (a *App) runConfigInteractive(cmd *cobra.Command) error {
	forms := a.FormRunner
	if forms == nil {
		forms = &setup.HuhFormRunner{}
	}
	r := &setup.Runner{
		CfgPath:    a.CfgPath,
		Commander:  a.Commander,
		FormRunner: forms,
		Out:        cmd.OutOrStdout(),
	}
	return r.Run(cmd.Context())
}

func (a *App) newConfigShowCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "기본값과 프로필이 적용된 유효 설정을 TOML로 출력한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(profile)
			if err != nil {
				return err
			}
			if err := toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg); err != nil {
				return fmt.Errorf("cli.config: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "적용할 프로필 이름")
	return cmd
}

func (a *App) newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "사용 중인 설정 파일 경로를 출력한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.CfgPath)
			return nil
		},
	}
}
