package shell

import (
	"fmt"
	"strings"

	"github.com/lsst-cfht/cfhtenv/internal/envdelta"
	"github.com/lsst-cfht/cfhtenv/internal/session"
)

// 활성화 상태를 나타내는 변수 이름.
const (
	VarActive    = "CFHTENV_ACTIVE"
	VarTag       = "CFHTENV_TAG"
	VarUndo      = "_CFHTENV_UNDO"
	VarOldPrompt = "_CFHTENV_OLD_PS1"

	fishOldPrompt = "_cfhtenv_old_fish_prompt"
)

// Supported는 지원하는 셸 유형인지 확인한다.
func Supported(shellType string) bool {
	switch shellType {
	case "bash", "zsh", "sh", "fish":
		return true
	default:
		return false
	}
}

// Activate는 세션 결과를 셸 명령으로 변환한다.
// undo는 deactivate 시 되돌릴 변경 목록이다.
func Activate(res *session.Result, shellType string, undo []envdelta.Change) (string, error) {
	token, err := envdelta.Encode(undo)
	if err != nil {
		return "", fmt.Errorf("shell.Activate: %w", err)
	}

	var b strings.Builder
	for _, c := range res.Changes {
		writeChange(&b, shellType, c)
	}
	writeSet(&b, shellType, VarActive, res.Package)
	writeSet(&b, shellType, VarTag, res.Identity)
	writeSet(&b, shellType, VarUndo, token)
	writePrompt(&b, shellType, res.Prompt)
	return b.String(), nil
}

// Deactivate는 활성화를 되돌리는 셸 명령을 생성한다.
func Deactivate(shellType string, undo []envdelta.Change) string {
	var b strings.Builder
	for _, c := range undo {
		writeChange(&b, shellType, c)
	}
	for _, name := range []string{VarActive, VarTag, VarUndo} {
		writeUnset(&b, shellType, name)
	}
	switch shellType {
	case "fish":
		fmt.Fprintf(&b, "if functions -q %s\n  functions -e fish_prompt\n  functions -c %s fish_prompt\n  functions -e %s\nend\n",
			fishOldPrompt, fishOldPrompt, fishOldPrompt)
	default:
		fmt.Fprintf(&b, "if [ -n \"${%s+x}\" ]; then PS1=$%s; unset %s; fi\n", VarOldPrompt, VarOldPrompt, VarOldPrompt)
	}
	return b.String()
}

// HookSnippet는 cfht_setup / cfht_unsetup 래퍼 함수 스니펫을 반환한다.
func HookSnippet(shellType string) string {
	switch shellType {
	case "bash", "zsh", "sh":
		return fmt.Sprintf(`# cfhtenv shell integration (%s)
cfht_setup() {
  eval "$(command cfhtenv activate --shell %s "$@")"
}
cfht_unsetup() {
  eval "$(command cfhtenv deactivate --shell %s)"
}
`, shellType, shellType, shellType)
	case "fish":
		return `# cfhtenv shell integration (fish)
function cfht_setup
  command cfhtenv activate --shell fish $argv | source
end
function cfht_unsetup
  command cfhtenv deactivate --shell fish | source
end
`
	default:
		return ""
	}
}

func writeChange(b *strings.Builder, shellType string, c envdelta.Change) {
	if c.Op == envdelta.OpUnset {
		writeUnset(b, shellType, c.Name)
		return
	}
	writeSet(b, shellType, c.Name, c.Value)
}

func writeSet(b *strings.Builder, shellType, name, value string) {
	switch shellType {
	case "fish":
		fmt.Fprintf(b, "set -gx %s", name)
		for _, part := range fishValues(name, value) {
			b.WriteString(" ")
			b.WriteString(QuoteFish(part))
		}
		b.WriteString("\n")
	default: // bash, zsh, sh
		fmt.Fprintf(b, "export %s=%s\n", name, Quote(value))
	}
}

func writeUnset(b *strings.Builder, shellType, name string) {
	switch shellType {
	case "fish":
		fmt.Fprintf(b, "set -e %s\n", name)
	default:
		fmt.Fprintf(b, "unset %s\n", name)
	}
}

func writePrompt(b *strings.Builder, shellType, prompt string) {
	switch shellType {
	case "fish":
		fmt.Fprintf(b, "functions -q %s; or functions -c fish_prompt %s\n", fishOldPrompt, fishOldPrompt)
		fmt.Fprintf(b, "function fish_prompt; printf '%%s' %s; end\n", QuoteFish(prompt))
	default:
		// 이전 프롬프트는 최초 활성화 시에만 저장한다
		fmt.Fprintf(b, "%s=${%s-$PS1}\n", VarOldPrompt, VarOldPrompt)
		fmt.Fprintf(b, "export PS1=%s\n", Quote(prompt))
	}
}

// fishValues는 *PATH 변수를 fish 리스트로 분리한다.
func fishValues(name, value string) []string {
	if strings.HasSuffix(name, "PATH") && value != "" {
		return strings.Split(value, ":")
	}
	return []string{value}
}

// Quote는 POSIX 셸 single-quote 규칙으로 값을 감싼다.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// QuoteFish는 fish single-quote 규칙으로 값을 감싼다.
func QuoteFish(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}
