package cli

import (
	"errors"

	"github.com/lsst-cfht/cfhtenv/internal/config"
	"github.com/lsst-cfht/cfhtenv/internal/identity"
	"github.com/lsst-cfht/cfhtenv/internal/resolver"
	"github.com/lsst-cfht/cfhtenv/internal/session"
)

// 각 도메인 패키지의 sentinel error를 CLI 레이어에서 편의상 re-export한다.
var (
	// ErrConfig는 설정 파일 오류를 나타내는 sentinel error다.
	ErrConfig = config.ErrConfig
	// ErrSetupFailed는 fail-fast 모드에서 setup 호출이 실패했을 때의 sentinel error다.
	ErrSetupFailed = session.ErrSetupFailed
	// ErrProjectDir는 fail-fast 모드에서 프로젝트 디렉토리로 이동하지 못했을 때의 sentinel error다.
	ErrProjectDir = session.ErrProjectDir
	// ErrIdentity는 setup 태그로 쓸 사용자 이름을 결정하지 못했을 때의 sentinel error다.
	ErrIdentity = identity.ErrUnresolved
	// ErrAmbiguous는 현재 디렉토리가 여러 프로필에 매칭될 때의 sentinel error다.
	ErrAmbiguous = resolver.ErrAmbiguous
)

// ErrUnsupportedShell는 --shell 값이 지원 목록에 없을 때의 sentinel error다.
var ErrUnsupportedShell = errors.New("unsupported shell")

// ErrDoctorFailed는 doctor 진단 중 FAIL 항목이 있을 때의 sentinel error다.
var ErrDoctorFailed = errors.New("doctor found failing checks")
