package setup

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lsst-cfht/cfhtenv/internal/cmdexec"
	"github.com/lsst-cfht/cfhtenv/internal/config"
	"github.com/lsst-cfht/cfhtenv/internal/doctor"
	"github.com/lsst-cfht/cfhtenv/internal/shell"
)

// Runner는 interactive 설정의 진입점이다.
type Runner struct {
	CfgPath    string
	Commander  cmdexec.Commander
	FormRunner FormRunner
	Out        io.Writer
	RCPath     string // 테스트용. 비어있으면 셸별 기본 경로.
}

// Run은 설정 플로우를 실행한다.
func (r *Runner) Run(ctx context.Context) error {
	_, statErr := os.Stat(r.CfgPath)
	exists := statErr == nil

	cfg, err := config.LoadOrDefault(r.CfgPath)
	if err != nil {
		return err
	}
	// 저장은 파일에 적힌 값 위에서만 한다. 기본값과 $EUPS_DIR에서 유도한 값은 남기지 않는다.
	file, err := config.LoadFile(r.CfgPath)
	if err != nil {
		return err
	}

	if exists {
		ok, err := r.FormRunner.RunConfirm(fmt.Sprintf("%s 설정을 수정할까요?", r.CfgPath))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(r.out(), "변경 없이 종료합니다.")
			return nil
		}
	} else {
		fmt.Fprintln(r.out(), "cfhtenv 초기 설정을 시작합니다.")
	}

	input, err := r.FormRunner.RunConfigForm(inputFromConfig(cfg))
	if err != nil {
		return err
	}
	applyInput(file, input)

	if err := config.Save(r.CfgPath, file); err != nil {
		return err
	}
	fmt.Fprintf(r.out(), "설정 파일이 저장되었습니다: %s\n", r.CfgPath)

	if cfg, err = config.Load(r.CfgPath); err != nil {
		return err
	}

	if err := r.installHook(); err != nil {
		fmt.Fprintf(os.Stderr, "경고: 셸 hook 설치 실패: %v\n", err)
	}

	r.runDoctor(ctx, cfg)
	return nil
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

func (r *Runner) installHook() error {
	shellType, err := r.FormRunner.RunShellSelect(DetectShell())
	if err != nil {
		return err
	}
	if shellType == "" {
		return nil
	}
	rcPath := r.RCPath
	if rcPath == "" {
		rcPath = ShellRCPath(shellType)
	}
	if err := InstallShellHook(shellType, rcPath); err != nil {
		return err
	}
	fmt.Fprintf(r.out(), "셸 hook이 설치되었습니다: %s (새 셸에서 cfht_setup 실행)\n", rcPath)
	return nil
}

// runDoctor는 설정 완료 후 환경 진단을 실행한다.
func (r *Runner) runDoctor(ctx context.Context, cfg *config.Config) {
	fmt.Fprintln(r.out(), "\n환경 진단 실행 중...")
	for _, res := range doctor.RunAll(ctx, r.Commander, cfg, shell.VarActive) {
		icon := "✓"
		if res.Status == doctor.StatusFail {
			icon = "✗"
		} else if res.Status == doctor.StatusWarn {
			icon = "!"
		}
		fmt.Fprintf(r.out(), "  [%s] %s: %s\n", icon, res.Name, res.Message)
		if res.Fix != "" {
			fmt.Fprintf(r.out(), "      Fix: %s\n", res.Fix)
		}
	}
}

func inputFromConfig(cfg *config.Config) *ConfigInput {
	return &ConfigInput{
		ProjectDir:   config.CollapseHome(cfg.ProjectDir),
		Package:      cfg.Package,
		SetupsScript: config.CollapseHome(cfg.SetupsScript),
		Identity:     cfg.Identity,
		PromptLabel:  cfg.PromptLabel,
		PromptColor:  cfg.ColorIndex(),
	}
}

// applyInput은 폼 입력을 파일 설정에 반영한다. 기본값과 같은 필드는 비워서
// 나중에 기본값이 바뀌거나 $EUPS_DIR이 달라져도 따라가게 한다.
func applyInput(cfg *config.Config, in *ConfigInput) {
	cfg.ProjectDir = unlessDefault(persistPath(in.ProjectDir), persistPath(config.DefaultProjectDir()))
	cfg.Package = unlessDefault(in.Package, config.DefaultPackage)
	cfg.SetupsScript = unlessDefault(persistPath(in.SetupsScript), persistPath(config.DefaultSetupsScript()))
	cfg.Identity = in.Identity
	cfg.PromptLabel = unlessDefault(in.PromptLabel, config.DefaultLabel)
	cfg.PromptColor = nil
	if in.PromptColor != config.DefaultColor {
		color := in.PromptColor
		cfg.PromptColor = &color
	}
}

func persistPath(path string) string {
	return config.CollapseHome(config.ExpandHome(path))
}

func unlessDefault(v, def string) string {
	if v == def {
		return ""
	}
	return v
}
