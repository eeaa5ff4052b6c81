package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lsst-cfht/cfhtenv/internal/cmdexec"
	"github.com/lsst-cfht/cfhtenv/internal/config"
	"github.com/lsst-cfht/cfhtenv/internal/identity"
)

// Status는 진단 결과 상태다.
type Status string

const (
	// StatusOK는 정상 상태다.
	StatusOK Status = "OK"
	// StatusWarn는 경고 상태다.
	StatusWarn Status = "WARN"
	// StatusFail는 실패 상태다.
	StatusFail Status = "FAIL"
)

// DiagResult는 하나의 진단 결과다.
type DiagResult struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

// CheckBinaries는 필수 바이너리(셸, tput) 존재 여부를 확인한다.
func CheckBinaries(ctx context.Context, cmd cmdexec.Commander, shellBinary string) []DiagResult {
	binaries := []struct {
		name    string
		args    []string
		install string
		status  Status
	}{
		{shellBinary, []string{"--version"}, "bash 4 이상을 설치하세요", StatusFail},
		// tput이 없으면 ANSI 기본 시퀀스를 쓰므로 경고만 한다
		{"tput", []string{"-V"}, "ncurses 패키지를 설치하세요", StatusWarn},
	}

	var results []DiagResult
	for _, b := range binaries {
		out, err := cmd.Run(ctx, b.name, b.args...)
		if err != nil {
			results = append(results, DiagResult{
				Name:    b.name,
				Status:  b.status,
				Message: fmt.Sprintf("%s 없음", b.name),
				Fix:     b.install,
			})
			continue
		}
		results = append(results, DiagResult{
			Name:    b.name,
			Status:  StatusOK,
			Message: firstLine(string(out)),
		})
	}
	return results
}

// CheckProjectDir는 파이프라인 프로젝트 디렉토리가 존재하는지 확인한다.
func CheckProjectDir(path string) DiagResult {
	info, err := os.Stat(path)
	if err != nil {
		return DiagResult{
			Name:    "project_dir",
			Status:  StatusFail,
			Message: fmt.Sprintf("%s 접근 불가: %v", path, err),
			Fix:     "config.toml의 project_dir을 확인하세요",
		}
	}
	if !info.IsDir() {
		return DiagResult{
			Name:    "project_dir",
			Status:  StatusFail,
			Message: fmt.Sprintf("%s는 디렉토리가 아닙니다", path),
			Fix:     "config.toml의 project_dir을 확인하세요",
		}
	}
	return DiagResult{
		Name:    "project_dir",
		Status:  StatusOK,
		Message: path,
	}
}

// CheckSetupsScript는 EUPS 부트스트랩 스크립트를 확인한다.
func CheckSetupsScript(path string) DiagResult {
	if path == "" {
		return DiagResult{
			Name:    "setups_script",
			Status:  StatusWarn,
			Message: "EUPS 부트스트랩 미설정, setup 함수가 export되어 있어야 합니다",
			Fix:     "EUPS_DIR을 설정하거나 config.toml에 setups_script를 지정하세요",
		}
	}
	if _, err := os.Stat(path); err != nil {
		return DiagResult{
			Name:    "setups_script",
			Status:  StatusFail,
			Message: fmt.Sprintf("%s 없음", path),
			Fix:     "LSST 스택 설치 경로를 확인하세요",
		}
	}
	return DiagResult{
		Name:    "setups_script",
		Status:  StatusOK,
		Message: path,
	}
}

// CheckSetupCommand는 부트스트랩 이후 setup 명령을 찾을 수 있는지 확인한다.
func CheckSetupCommand(ctx context.Context, cmd cmdexec.Commander, cfg *config.Config) DiagResult {
	script := `if [ -n "$1" ]; then . "$1" >/dev/null 2>&1; fi; type "$2"`
	_, err := cmd.Run(ctx, cfg.ShellBinary, "-c", script, "cfhtenv", cfg.SetupsScript, cfg.SetupCommand)
	if err != nil {
		return DiagResult{
			Name:    "setup_command",
			Status:  StatusFail,
			Message: fmt.Sprintf("%s 명령을 찾을 수 없음", cfg.SetupCommand),
			Fix:     "EUPS 설치 및 setups_script 경로를 확인하세요",
		}
	}
	return DiagResult{
		Name:    "setup_command",
		Status:  StatusOK,
		Message: fmt.Sprintf("%s 사용 가능", cfg.SetupCommand),
	}
}

// CheckIdentity는 setup 태그로 쓰일 사용자 식별자를 확인한다.
func CheckIdentity(override string) DiagResult {
	id, err := identity.Resolve(override)
	if err != nil {
		return DiagResult{
			Name:    "identity",
			Status:  StatusFail,
			Message: err.Error(),
			Fix:     "config.toml에 identity를 지정하세요",
		}
	}
	return DiagResult{
		Name:    "identity",
		Status:  StatusOK,
		Message: id,
	}
}

// CheckActive는 현재 셸에 이미 활성화된 세션이 있는지 알려준다.
func CheckActive(activeVar string) DiagResult {
	if pkg := os.Getenv(activeVar); pkg != "" {
		return DiagResult{
			Name:    "session",
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s 세션이 이미 활성화되어 있음", pkg),
			Fix:     "cfht_unsetup으로 비활성화할 수 있습니다",
		}
	}
	return DiagResult{
		Name:    "session",
		Status:  StatusOK,
		Message: "활성화된 세션 없음",
	}
}

// RunAll은 모든 진단을 실행한다.
func RunAll(ctx context.Context, cmd cmdexec.Commander, cfg *config.Config, activeVar string) []DiagResult {
	var results []DiagResult
	results = append(results, CheckBinaries(ctx, cmd, cfg.ShellBinary)...)
	results = append(results, CheckProjectDir(cfg.ProjectDir))
	results = append(results, CheckSetupsScript(cfg.SetupsScript))
	results = append(results, CheckSetupCommand(ctx, cmd, cfg))
	results = append(results, CheckIdentity(cfg.Identity))
	results = append(results, CheckActive(activeVar))
	return results
}

// Failed는 FAIL 상태의 결과가 하나라도 있으면 true다.
func Failed(results []DiagResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
