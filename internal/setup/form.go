package setup

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/charmbracelet/huh"
)

// HuhFormRunner는 charmbracelet/huh 기반의 FormRunner 구현이다.
type HuhFormRunner struct{}

var _ FormRunner = (*HuhFormRunner)(nil)

var packageNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_]*$`)

var colorNames = []string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}

// RunConfigForm은 설정 입력 폼을 실행한다.
func (h *HuhFormRunner) RunConfigForm(defaults *ConfigInput) (*ConfigInput, error) {
	input := &ConfigInput{}
	if defaults != nil {
		*input = *defaults
	}

	packageValidate := func(s string) error {
		if !packageNameRegex.MatchString(s) {
			return fmt.Errorf("영문, 숫자, 밑줄만 사용 가능합니다")
		}
		return nil
	}

	colorOptions := make([]huh.Option[int], len(colorNames))
	for i, name := range colorNames {
		colorOptions[i] = huh.NewOption(strconv.Itoa(i)+" "+name, i)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("프로젝트 디렉토리").
				Description("setup 실행 전에 이동할 obs 패키지 checkout 경로").
				Value(&input.ProjectDir).
				Validate(huh.ValidateNotEmpty()),
			huh.NewInput().Title("패키지").Value(&input.Package).Validate(packageValidate),
			huh.NewInput().Title("EUPS setups.sh 경로").
				Description("비워두면 $EUPS_DIR/bin/setups.sh").
				Value(&input.SetupsScript),
			huh.NewInput().Title("identity (setup -t 태그)").
				Description("비워두면 로그인 사용자명").
				Value(&input.Identity),
		),
		huh.NewGroup(
			huh.NewInput().Title("프롬프트 라벨").Value(&input.PromptLabel).Validate(huh.ValidateNotEmpty()),
			huh.NewSelect[int]().Title("프롬프트 색상").Options(colorOptions...).Value(&input.PromptColor),
		),
	)
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("setup.RunConfigForm: %w", err)
	}
	return input, nil
}

// RunShellSelect는 hook을 설치할 셸 선택 UI를 표시한다.
func (h *HuhFormRunner) RunShellSelect(detected string) (string, error) {
	selected := detected
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("cfht_setup 함수를 설치할 셸을 선택하세요").
			Options(
				huh.NewOption("bash", "bash"),
				huh.NewOption("zsh", "zsh"),
				huh.NewOption("fish", "fish"),
				huh.NewOption("설치하지 않음", ""),
			).
			Value(&selected),
	))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("setup.RunShellSelect: %w", err)
	}
	return selected, nil
}

// RunConfirm은 확인 프롬프트를 표시한다.
func (h *HuhFormRunner) RunConfirm(message string) (bool, error) {
	var confirm bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(message).Value(&confirm),
	))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("setup.RunConfirm: %w", err)
	}
	return confirm, nil
}
