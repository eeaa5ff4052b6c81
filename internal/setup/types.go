package setup

// ConfigInput은 설정 생성/수정 시 사용자 입력 값이다.
type ConfigInput struct {
	ProjectDir   string
	Package      string
	SetupsScript string
	Identity     string
	PromptLabel  string
	PromptColor  int
}

// FormRunner는 TUI 폼 실행을 추상화하는 interface다.
// 프로덕션에서는 huh 기반 구현, 테스트에서는 mock을 사용한다.
type FormRunner interface {
	// RunConfigForm은 설정 입력 폼을 실행한다. defaults는 폼의 초기값이다.
	RunConfigForm(defaults *ConfigInput) (*ConfigInput, error)

	// RunShellSelect는 hook을 설치할 셸 선택 UI를 표시한다.
	// 빈 문자열을 반환하면 hook 설치를 건너뛴다.
	RunShellSelect(detected string) (string, error)

	// RunConfirm은 확인 프롬프트를 표시한다.
	RunConfirm(message string) (bool, error)
}
