package shell_test

import (
	"testing"

	"github.com/lsst-cfht/cfhtenv/internal/envdelta"
	"github.com/lsst-cfht/cfhtenv/internal/session"
	"github.com/lsst-cfht/cfhtenv/internal/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResult() *session.Result {
	return &session.Result{
		Package:  "obs_cfht",
		Identity: "alice",
		Prompt:   "(\\[\x1b[32m\\]lsst-cfht\\[\x1b[0m\\]) > ",
		Changes: []envdelta.Change{
			{Name: "OBS_CFHT_DIR", Op: envdelta.OpSet, Value: "/opt/obs_cfht"},
			{Name: "PATH", Op: envdelta.OpSet, Value: "/opt/obs_cfht/bin:/usr/bin"},
			{Name: "SETUP_OLD", Op: envdelta.OpUnset},
		},
	}
}

func testUndo() []envdelta.Change {
	return []envdelta.Change{
		{Name: "OBS_CFHT_DIR", Op: envdelta.OpUnset},
		{Name: "PATH", Op: envdelta.OpSet, Value: "/usr/bin"},
	}
}

func TestActivate_PosixShell(t *testing.T) {
	output, err := shell.Activate(testResult(), "bash", testUndo())
	require.NoError(t, err)

	assert.Contains(t, output, "export OBS_CFHT_DIR='/opt/obs_cfht'\n")
	assert.Contains(t, output, "export PATH='/opt/obs_cfht/bin:/usr/bin'\n")
	assert.Contains(t, output, "unset SETUP_OLD\n")
	assert.Contains(t, output, "export CFHTENV_ACTIVE='obs_cfht'\n")
	assert.Contains(t, output, "export CFHTENV_TAG='alice'\n")
	assert.Contains(t, output, "_CFHTENV_OLD_PS1=${_CFHTENV_OLD_PS1-$PS1}\n")
	assert.Contains(t, output, "export PS1='(\\[\x1b[32m\\]lsst-cfht\\[\x1b[0m\\]) > '\n")
	assert.Contains(t, output, "export _CFHTENV_UNDO='")
}

func TestActivate_UndoRoundTrip(t *testing.T) {
	output, err := shell.Activate(testResult(), "zsh", testUndo())
	require.NoError(t, err)

	token, err := envdelta.Encode(testUndo())
	require.NoError(t, err)
	assert.Contains(t, output, "export _CFHTENV_UNDO='"+token+"'\n")

	decoded, err := envdelta.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, testUndo(), decoded)
}

func TestActivate_Fish(t *testing.T) {
	res := testResult()
	res.Prompt = "(\x1b[32mlsst-cfht\x1b[0m) > "
	output, err := shell.Activate(res, "fish", testUndo())
	require.NoError(t, err)

	assert.Contains(t, output, "set -gx OBS_CFHT_DIR '/opt/obs_cfht'\n")
	assert.Contains(t, output, "set -gx PATH '/opt/obs_cfht/bin' '/usr/bin'\n")
	assert.Contains(t, output, "set -e SETUP_OLD\n")
	assert.Contains(t, output, "set -gx CFHTENV_ACTIVE 'obs_cfht'\n")
	assert.Contains(t, output, "functions -c fish_prompt _cfhtenv_old_fish_prompt")
	assert.Contains(t, output, "function fish_prompt; printf '%s' '(\x1b[32mlsst-cfht\x1b[0m) > '; end\n")
}

func TestDeactivate_PosixShell(t *testing.T) {
	output := shell.Deactivate("zsh", testUndo())
	assert.Contains(t, output, "unset OBS_CFHT_DIR\n")
	assert.Contains(t, output, "export PATH='/usr/bin'\n")
	assert.Contains(t, output, "unset CFHTENV_ACTIVE\n")
	assert.Contains(t, output, "unset CFHTENV_TAG\n")
	assert.Contains(t, output, "unset _CFHTENV_UNDO\n")
	assert.Contains(t, output, "PS1=$_CFHTENV_OLD_PS1")
}

func TestDeactivate_Fish(t *testing.T) {
	output := shell.Deactivate("fish", testUndo())
	assert.Contains(t, output, "set -e OBS_CFHT_DIR\n")
	assert.Contains(t, output, "set -gx PATH '/usr/bin'\n")
	assert.Contains(t, output, "set -e CFHTENV_ACTIVE\n")
	assert.Contains(t, output, "functions -c _cfhtenv_old_fish_prompt fish_prompt")
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, shell.Quote("plain"))
	assert.Equal(t, `'it'\''s'`, shell.Quote("it's"))
	assert.Equal(t, `'$HOME "x"'`, shell.Quote(`$HOME "x"`))
	assert.Equal(t, `''`, shell.Quote(""))
}

func TestQuoteFish(t *testing.T) {
	assert.Equal(t, `'it\'s'`, shell.QuoteFish("it's"))
	assert.Equal(t, `'a\\b'`, shell.QuoteFish(`a\b`))
}

func TestSupported(t *testing.T) {
	for _, sh := range []string{"bash", "zsh", "sh", "fish"} {
		assert.True(t, shell.Supported(sh), sh)
	}
	assert.False(t, shell.Supported("tcsh"))
}

func TestHookSnippet_Zsh(t *testing.T) {
	snippet := shell.HookSnippet("zsh")
	assert.Contains(t, snippet, "cfhtenv shell integration (zsh)")
	assert.Contains(t, snippet, `eval "$(command cfhtenv activate --shell zsh "$@")"`)
	assert.Contains(t, snippet, "cfht_unsetup()")
}

func TestHookSnippet_Bash(t *testing.T) {
	snippet := shell.HookSnippet("bash")
	assert.Contains(t, snippet, "cfht_setup()")
	assert.Contains(t, snippet, "cfhtenv deactivate --shell bash")
}

func TestHookSnippet_Fish(t *testing.T) {
	snippet := shell.HookSnippet("fish")
	assert.Contains(t, snippet, "function cfht_setup")
	assert.Contains(t, snippet, "| source")
}

func TestHookSnippet_Unknown(t *testing.T) {
	snippet := shell.HookSnippet("unknown")
	assert.Empty(t, snippet)
}
