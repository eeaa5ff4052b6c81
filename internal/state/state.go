package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State는 패키지별 마지막 활성화 기록이다.
type State struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// Entry는 하나의 활성화 기록이다.
type Entry struct {
	Identity    string `json:"identity"`
	ProjectDir  string `json:"project_dir"`
	ActivatedAt string `json:"activated_at"`
	SetupOK     bool   `json:"setup_ok"`
	Changes     int    `json:"changes"`
}

// New는 빈 상태를 생성한다.
func New() *State {
	return &State{Version: 1, Entries: make(map[string]Entry)}
}

// Load는 상태 파일을 파싱한다. 파일 없음/파싱 실패 시 빈 상태 반환 (graceful).
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("state.Load: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return New(), nil
	}
	if s.Entries == nil {
		s.Entries = make(map[string]Entry)
	}
	return &s, nil
}

// Lookup은 패키지의 기록을 조회한다.
func (s *State) Lookup(pkg string) (*Entry, bool) {
	e, ok := s.Entries[pkg]
	if !ok {
		return nil, false
	}
	return &e, true
}

// Recent는 maxAge 이내에 같은 identity로 성공한 활성화 기록이 있으면 true다.
func (s *State) Recent(pkg, identity string, maxAge time.Duration, now time.Time) bool {
	e, ok := s.Entries[pkg]
	if !ok || !e.SetupOK || e.Identity != identity {
		return false
	}
	at, err := time.Parse(time.RFC3339, e.ActivatedAt)
	if err != nil {
		return false
	}
	return now.Sub(at) <= maxAge
}

// Record는 활성화 기록을 추가하거나 갱신한다.
func (s *State) Record(pkg string, entry Entry) {
	s.Entries[pkg] = entry
}

// Forget은 패키지의 기록을 제거한다.
func (s *State) Forget(pkg string) {
	delete(s.Entries, pkg)
}

// Save는 상태를 JSON 파일로 저장한다 (0600 권한).
func (s *State) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("state.Save: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("state.Save: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
