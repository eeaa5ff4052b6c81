// Package cmdexec abstracts external command execution for testability.
// Production code uses Commander interface; tests inject FakeCommander from testutil.
package cmdexec

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
)

// Commander abstracts external command execution.
type Commander interface {
	// Run executes an external command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// Output executes an external command and returns only its standard output.
	// Standard error is forwarded to the commander's diagnostic writer.
	Output(ctx context.Context, env map[string]string, name string, args ...string) ([]byte, error)
}

// RealCommander executes actual external commands via os/exec.
type RealCommander struct {
	// Stderr receives the standard error of commands started with Output.
	// If nil, standard error is discarded.
	Stderr io.Writer
}

// Run executes the command using os/exec.CommandContext.
func (c *RealCommander) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Output executes the command and captures its standard output only.
// A non-nil env is merged on top of the current process environment.
// The returned output is valid even when err is non-nil.
func (c *RealCommander) Output(ctx context.Context, env map[string]string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if env != nil {
		cmd.Env = append(os.Environ(), mapToEnvSlice(env)...)
	}
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}
	return cmd.Output()
}

// mapToEnvSlice converts a map of environment variables to a slice of "KEY=VALUE" strings.
func mapToEnvSlice(env map[string]string) []string {
	if env == nil {
		return nil
	}
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(result)
	return result
}
