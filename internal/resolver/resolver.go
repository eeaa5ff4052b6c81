package resolver

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lsst-cfht/cfhtenv/internal/config"
)

// ErrAmbiguous는 복수 프로필이 매칭되어 자동 판정이 불가능할 때 반환된다.
var ErrAmbiguous = errors.New("모호한 판정, --profile 플래그 필요")

// EnvProfile은 셸에서 기본 프로필을 지정하는 환경 변수다.
const EnvProfile = "CFHTENV_PROFILE"

// 판정 사유.
const (
	ReasonExplicit  = "explicit"
	ReasonEnv       = "env"
	ReasonDirectory = "directory"
	ReasonDefault   = "default"
)

// Result는 Resolver의 판정 결과다. Profile이 비어있으면 최상위 설정을 쓴다.
type Result struct {
	Profile string
	Reason  string
}

// Resolver는 4단계 프로필 판정 파이프라인이다.
type Resolver struct {
	config *config.Config
	getenv func(string) string
}

// New는 새 Resolver를 생성한다.
func New(cfg *config.Config, getenv func(string) string) *Resolver {
	return &Resolver{config: cfg, getenv: getenv}
}

// Resolve는 명시 플래그 > 환경 변수 > 현재 디렉토리 > 기본 설정 순서로 프로필을 판정한다.
func (r *Resolver) Resolve(cwd, explicitProfile string) (*Result, error) {
	// Step 1: 명시 플래그
	if explicitProfile != "" {
		if err := r.check(explicitProfile); err != nil {
			return nil, fmt.Errorf("resolver.Resolve: %w", err)
		}
		return &Result{Profile: explicitProfile, Reason: ReasonExplicit}, nil
	}

	// Step 2: 환경 변수
	if name := r.getenv(EnvProfile); name != "" {
		if err := r.check(name); err != nil {
			return nil, fmt.Errorf("resolver.Resolve: %s: %w", EnvProfile, err)
		}
		return &Result{Profile: name, Reason: ReasonEnv}, nil
	}

	// Step 3: 현재 디렉토리가 프로필의 project_dir 안에 있으면 그 프로필
	matches := r.matchDir(cwd)
	if len(matches) == 1 {
		return &Result{Profile: matches[0], Reason: ReasonDirectory}, nil
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("resolver.Resolve: %w (%s)", ErrAmbiguous, strings.Join(matches, ", "))
	}

	// Step 4: 최상위 설정
	return &Result{Reason: ReasonDefault}, nil
}

func (r *Resolver) check(name string) error {
	_, err := r.config.WithProfile(name)
	return err
}

// matchDir는 cwd를 포함하는 project_dir 중 가장 깊은 것을 가진 프로필들을 반환한다.
// 최상위 project_dir이 더 깊거나 같으면 프로필을 고르지 않는다.
func (r *Resolver) matchDir(cwd string) []string {
	if cwd == "" {
		return nil
	}
	best := depthIfWithin(cwd, r.config.ProjectDir)
	var matches []string
	for _, name := range r.config.ProfileNames() {
		dir := r.config.Profiles[name].ProjectDir
		if dir == "" {
			continue
		}
		d := depthIfWithin(cwd, config.ExpandHome(dir))
		switch {
		case d > best:
			best = d
			matches = []string{name}
		case d == best && d >= 0 && matches != nil:
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches
}

// depthIfWithin은 path가 dir 안(또는 dir 자체)이면 dir의 경로 깊이를, 아니면 -1을 반환한다.
func depthIfWithin(path, dir string) int {
	if dir == "" {
		return -1
	}
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return -1
	}
	return strings.Count(filepath.Clean(dir), string(filepath.Separator))
}
