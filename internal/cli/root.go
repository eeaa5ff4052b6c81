package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lsst-cfht/cfhtenv/internal/cmdexec"
	"github.com/lsst-cfht/cfhtenv/internal/config"
	"github.com/lsst-cfht/cfhtenv/internal/resolver"
	"github.com/lsst-cfht/cfhtenv/internal/setup"
	"github.com/lsst-cfht/cfhtenv/internal/shell"
	"github.com/spf13/cobra"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

var zlog, _ = logging.PackageLogger("cli", "github.com/lsst-cfht/cfhtenv/internal/cli")

// App은 CLI 명령들이 공유하는 의존성을 담는다.
type App struct {
	Commander cmdexec.Commander
	CfgPath   string
	StatePath string
	// FormRunner는 config init --interactive에서 사용한다. nil이면 huh 폼을 띄운다.
	FormRunner setup.FormRunner
	// Getenv는 현재 셸의 환경 변수를 읽는다. nil이면 os.Getenv.
	Getenv func(string) string
	// Now는 상태 기록 시각을 결정한다. nil이면 time.Now.
	Now func() time.Time

	verbose bool
	color   string
}

// NewApp은 실제 명령 실행기를 사용하는 App을 생성한다.
func NewApp() *App {
	return &App{
		Commander: &cmdexec.RealCommander{Stderr: os.Stderr},
		CfgPath:   filepath.Join(configDir(), "config.toml"),
		StatePath: filepath.Join(configDir(), "state.json"),
	}
}

// NewRootCmd는 cfhtenv CLI의 루트 명령을 생성한다.
func (a *App) NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cfhtenv",
		Short:        "LSST obs_cfht 세션 환경 초기화 도구",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(a.verbose)
			if a.color != "" {
				switch a.color {
				case config.ColorAuto, config.ColorAlways, config.ColorNever:
				default:
					return fmt.Errorf("cli: %w: --color는 auto, always, never 중 하나여야 합니다: %q", ErrConfig, a.color)
				}
			}
			return nil
		},
	}

	if a.CfgPath == "" {
		a.CfgPath = filepath.Join(configDir(), "config.toml")
	}
	cmd.PersistentFlags().StringVar(&a.CfgPath, "config", a.CfgPath, "설정 파일 경로")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "상세 로그를 stderr에 출력")
	cmd.PersistentFlags().StringVar(&a.color, "color", "", "색상 모드 (auto, always, never)")

	cmd.AddCommand(
		a.newActivateCmd(),
		a.newDeactivateCmd(),
		a.newHookCmd(),
		a.newInstallCmd(),
		a.newStatusCmd(),
		a.newDoctorCmd(),
		a.newConfigCmd(),
	)
	return cmd
}

// loadConfig는 설정 파일을 읽고 판정된 프로필과 --color 덮어쓰기를 적용한다.
func (a *App) loadConfig(profile string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(a.CfgPath)
	if err != nil {
		return nil, err
	}
	cwd, _ := os.Getwd() // 실패하면 디렉토리 기반 판정만 건너뛴다
	picked, err := resolver.New(cfg, a.getenv).Resolve(cwd, profile)
	if err != nil {
		return nil, err
	}
	zlog.Debug("profile resolved", zap.String("profile", picked.Profile), zap.String("reason", picked.Reason))

	cfg, err = cfg.WithProfile(picked.Profile)
	if err != nil {
		return nil, err
	}
	if a.color != "" {
		cfg.Color = a.color
	}
	return cfg, nil
}

func (a *App) getenv(key string) string {
	if a.Getenv != nil {
		return a.Getenv(key)
	}
	return os.Getenv(key)
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) statePath() string {
	if a.StatePath != "" {
		return a.StatePath
	}
	return filepath.Join(filepath.Dir(a.CfgPath), "state.json")
}

// setupLogging은 패키지 로거를 초기화한다. 기본은 조용하고 --verbose일 때 debug.
func setupLogging(verbose bool) {
	level := zap.DPanicLevel
	if verbose {
		level = zap.DebugLevel
	}
	logging.InstantiateLoggers(logging.WithDefaultLevel(level))
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "경고: 홈 디렉토리 확인 실패: %v\n", err)
		home = "."
	}
	return filepath.Join(home, ".config", "cfhtenv")
}

// defaultShell은 $SHELL이 지원되는 셸이면 그것을, 아니면 bash를 반환한다.
func defaultShell() string {
	if sh := setup.DetectShell(); shell.Supported(sh) {
		return sh
	}
	return "bash"
}
