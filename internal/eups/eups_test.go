package eups_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/lsst-cfht/cfhtenv/internal/envdelta"
	"github.com/lsst-cfht/cfhtenv/internal/eups"
	"github.com/lsst-cfht/cfhtenv/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invocation() eups.Invocation {
	return eups.Invocation{
		Shell:        "bash",
		SetupsScript: "/opt/eups/bin/setups.sh",
		Command:      "setup",
		Package:      "obs_cfht",
		Flag:         "-t",
		Tag:          "alice",
	}
}

func output(before, after string) string {
	return "\x00__CFHTENV_BEFORE__\x00" + before + "\x00__CFHTENV_AFTER__\x00" + after
}

func TestInvocation_Args(t *testing.T) {
	assert.Equal(t, []string{"obs_cfht", "-t", "alice"}, invocation().Args())
}

func TestSetup_PassesArguments(t *testing.T) {
	fake := testutil.NewFakeCommander()
	fake.Register("bash -c", output("", ""), nil)

	_, err := eups.Setup(context.Background(), fake, invocation())
	require.NoError(t, err)

	argv := fake.LastArgv("bash")
	require.Len(t, argv, 8)
	assert.Equal(t, "-c", argv[1])
	assert.Contains(t, argv[2], "compgen -e")
	assert.Equal(t, []string{"cfhtenv", "setup", "obs_cfht", "-t", "alice"}, argv[3:])
	assert.Equal(t, "/opt/eups/bin/setups.sh", fake.EnvCalls[0]["CFHTENV_SETUPS"])
}

func TestSetup_ComputesChanges(t *testing.T) {
	before := testutil.EnvDump(map[string]string{
		"PATH":           "/usr/bin",
		"CFHTENV_SETUPS": "/opt/eups/bin/setups.sh",
	}, "PATH", "CFHTENV_SETUPS")
	after := testutil.EnvDump(map[string]string{
		"PATH":         "/opt/obs_cfht/bin:/usr/bin",
		"OBS_CFHT_DIR": "/opt/obs_cfht",
	}, "PATH", "OBS_CFHT_DIR")

	fake := testutil.NewFakeCommander()
	fake.Register("bash -c", output(before, after), nil)

	res, err := eups.Setup(context.Background(), fake, invocation())
	require.NoError(t, err)

	assert.Equal(t, []envdelta.Change{
		{Name: "OBS_CFHT_DIR", Op: envdelta.OpSet, Value: "/opt/obs_cfht"},
		{Name: "PATH", Op: envdelta.OpSet, Value: "/opt/obs_cfht/bin:/usr/bin"},
	}, res.Changes)
	assert.Equal(t, "/usr/bin", res.Before["PATH"])
}

func TestSetup_FailureKeepsPartialResult(t *testing.T) {
	before := testutil.EnvDump(map[string]string{"A": "1"}, "A")
	after := testutil.EnvDump(map[string]string{"A": "1", "B": "2"}, "A", "B")

	fake := testutil.NewFakeCommander()
	fake.Register("bash -c", output(before, after), fmt.Errorf("exit status 1"))

	res, err := eups.Setup(context.Background(), fake, invocation())

	assert.ErrorIs(t, err, eups.ErrSetup)
	require.NotNil(t, res)
	assert.Equal(t, []envdelta.Change{{Name: "B", Op: envdelta.OpSet, Value: "2"}}, res.Changes)
}

func TestSetup_ShellMissing(t *testing.T) {
	fake := testutil.NewFakeCommander()
	fake.Register("bash", "", fmt.Errorf(`exec: "bash": executable file not found in $PATH`))

	res, err := eups.Setup(context.Background(), fake, invocation())

	assert.ErrorIs(t, err, eups.ErrSetup)
	assert.Nil(t, res)
}

func TestSetup_GarbledOutput(t *testing.T) {
	fake := testutil.NewFakeCommander()
	fake.Register("bash -c", "no markers here", nil)

	_, err := eups.Setup(context.Background(), fake, invocation())
	assert.ErrorIs(t, err, eups.ErrSetup)
}
