package cli

import (
	"errors"
)

// ExitCode는 cfhtenv의 종료 코드다.
type ExitCode int

const (
	// ExitSuccess는 정상 종료다.
	ExitSuccess ExitCode = 0
	// ExitGeneral는 일반 에러다.
	ExitGeneral ExitCode = 1
	// ExitSetupFailed는 setup 호출 실패다 (fail-fast).
	ExitSetupFailed ExitCode = 2
	// ExitProjectDir는 프로젝트 디렉토리 진입 실패다 (fail-fast).
	ExitProjectDir ExitCode = 3
	// ExitIdentity는 사용자 이름 확인 실패다.
	ExitIdentity ExitCode = 4
	// ExitConfigError는 설정 파일 오류 또는 모호한 프로필 판정이다.
	ExitConfigError ExitCode = 5
)

// MapExitCode는 sentinel error를 기반으로 적절한 종료 코드를 반환한다.
func MapExitCode(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	switch {
	case errors.Is(err, ErrSetupFailed):
		return ExitSetupFailed
	case errors.Is(err, ErrProjectDir):
		return ExitProjectDir
	case errors.Is(err, ErrIdentity):
		return ExitIdentity
	case errors.Is(err, ErrConfig), errors.Is(err, ErrAmbiguous):
		return ExitConfigError
	default:
		return ExitGeneral
	}
}
