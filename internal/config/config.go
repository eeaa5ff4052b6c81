package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrConfig는 설정 파일 오류를 나타내는 sentinel error다.
var ErrConfig = errors.New("config error")

// 기본값 상수.
const (
	DefaultPackage     = "obs_cfht"
	DefaultSetupFlag   = "-t"
	DefaultSetupCmd    = "setup"
	DefaultShellBinary = "bash"
	DefaultLabel       = "lsst-cfht"
	DefaultColor       = 2
)

// 색상 출력 모드.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config는 cfhtenv 설정 파일의 최상위 구조체다.
type Config struct {
	Version      int                `toml:"version"`
	ProjectDir   string             `toml:"project_dir,omitempty"`
	Package      string             `toml:"package,omitempty"`
	SetupFlag    string             `toml:"setup_flag,omitempty"`
	SetupCommand string             `toml:"setup_command,omitempty"`
	SetupsScript string             `toml:"setups_script,omitempty"`
	ShellBinary  string             `toml:"shell_binary,omitempty"`
	Identity     string             `toml:"identity,omitempty"`
	PromptLabel  string             `toml:"prompt_label,omitempty"`
	PromptColor  *int               `toml:"prompt_color,omitempty"`
	Color        string             `toml:"color,omitempty"`
	FailFast     bool               `toml:"fail_fast,omitempty"`
	Profiles     map[string]Profile `toml:"profiles,omitempty"`
}

// Profile은 다른 obs 패키지용 설정 덮어쓰기다. 비어있는 필드는 상위 값을 따른다.
type Profile struct {
	Package     string `toml:"package,omitempty"`
	ProjectDir  string `toml:"project_dir,omitempty"`
	PromptLabel string `toml:"prompt_label,omitempty"`
	PromptColor *int   `toml:"prompt_color,omitempty"`
}

// Default는 설정 파일이 없을 때 사용하는 기본 설정을 반환한다.
func Default() *Config {
	cfg := &Config{Version: 1}
	cfg.applyDefaults()
	return cfg
}

// Load는 config.toml을 파싱하여 Config를 반환한다.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w: %w", ErrConfig, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault는 파일이 없으면 기본 설정을, 있으면 Load 결과를 반환한다.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// LoadFile은 기본값을 채우지 않고 파일에 적힌 값만 읽는다.
// 파일이 없으면 version만 있는 빈 설정을 반환한다. 다시 저장할 설정을 편집할 때 쓴다.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{Version: 1}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config.LoadFile: %w: %w", ErrConfig, err)
	}
	return cfg, nil
}

// Save는 Config를 TOML로 저장한다 (0600 권한).
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	return nil
}

// WithProfile은 이름이 주어진 프로필을 적용한 설정 사본을 반환한다.
// 이름이 비어있으면 그대로 사본을 반환한다.
func (c *Config) WithProfile(name string) (*Config, error) {
	out := *c
	if name == "" {
		return &out, nil
	}
	p, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("config.WithProfile: %w: 알 수 없는 프로필 %q (사용 가능: %s)",
			ErrConfig, name, strings.Join(c.ProfileNames(), ", "))
	}
	if p.Package != "" {
		out.Package = p.Package
	}
	if p.ProjectDir != "" {
		out.ProjectDir = ExpandHome(p.ProjectDir)
	}
	if p.PromptLabel != "" {
		out.PromptLabel = p.PromptLabel
	}
	if p.PromptColor != nil {
		out.PromptColor = p.PromptColor
	}
	return &out, nil
}

// ProfileNames는 정렬된 프로필 이름 목록을 반환한다.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColorIndex는 prompt_color 설정값을 반환한다.
func (c *Config) ColorIndex() int {
	if c.PromptColor == nil {
		return DefaultColor
	}
	return *c.PromptColor
}

// DefaultProjectDir는 기본 파이프라인 프로젝트 경로다.
func DefaultProjectDir() string {
	return filepath.Join(homeDir(), "lsst", DefaultPackage)
}

// DefaultSetupsScript는 EUPS_DIR이 설정되어 있으면 EUPS 부트스트랩 경로를 반환한다.
func DefaultSetupsScript() string {
	if dir := os.Getenv("EUPS_DIR"); dir != "" {
		return filepath.Join(dir, "bin", "setups.sh")
	}
	return ""
}

// ExpandHome은 선행 "~/"를 홈 디렉토리로 치환한다.
func ExpandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// CollapseHome은 홈 디렉토리 아래 경로를 "~/" 형태로 되돌린다.
func CollapseHome(path string) string {
	home := homeDir()
	if home == "." || path == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(path, home+string(filepath.Separator)); ok {
		return "~/" + rest
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.ProjectDir == "" {
		c.ProjectDir = DefaultProjectDir()
	}
	c.ProjectDir = ExpandHome(c.ProjectDir)
	if c.Package == "" {
		c.Package = DefaultPackage
	}
	if c.SetupFlag == "" {
		c.SetupFlag = DefaultSetupFlag
	}
	if c.SetupCommand == "" {
		c.SetupCommand = DefaultSetupCmd
	}
	if c.SetupsScript == "" {
		c.SetupsScript = DefaultSetupsScript()
	}
	c.SetupsScript = ExpandHome(c.SetupsScript)
	if c.ShellBinary == "" {
		c.ShellBinary = DefaultShellBinary
	}
	if c.PromptLabel == "" {
		c.PromptLabel = DefaultLabel
	}
	if c.PromptColor == nil {
		n := DefaultColor
		c.PromptColor = &n
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
}

func (c *Config) validate() error {
	if c.Version != 1 {
		return fmt.Errorf("config.Load: %w: 지원하지 않는 version %d", ErrConfig, c.Version)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("config.Load: %w: color는 auto, always, never 중 하나여야 합니다: %q", ErrConfig, c.Color)
	}
	if err := validColor("prompt_color", c.PromptColor); err != nil {
		return err
	}
	if strings.ContainsAny(c.Package, " \t\n") {
		return fmt.Errorf("config.Load: %w: package에 공백을 포함할 수 없습니다: %q", ErrConfig, c.Package)
	}
	for name, p := range c.Profiles {
		if err := validColor("profiles."+name+".prompt_color", p.PromptColor); err != nil {
			return err
		}
		if strings.ContainsAny(p.Package, " \t\n") {
			return fmt.Errorf("config.Load: %w: profiles.%s.package에 공백을 포함할 수 없습니다", ErrConfig, name)
		}
	}
	return nil
}

func validColor(field string, n *int) error {
	if n != nil && (*n < 0 || *n > 7) {
		return fmt.Errorf("config.Load: %w: %s는 0-7 범위여야 합니다: %d", ErrConfig, field, *n)
	}
	return nil
}
