package testutil

import (
	"context"
	"fmt"
	"testing"
)

func TestFakeCommander_ExactMatch(t *testing.T) {
	t.Parallel()

	fc := NewFakeCommander()
	fc.Register("tput sgr0", "\x1b(B\x1b[m", nil)

	out, err := fc.Run(context.Background(), "tput", "sgr0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "\x1b(B\x1b[m" {
		t.Errorf("got %q, want %q", string(out), "\x1b(B\x1b[m")
	}
}

func TestFakeCommander_PrefixMatch(t *testing.T) {
	t.Parallel()

	fc := NewFakeCommander()
	fc.Register("tput setaf", "\x1b[32m", nil)

	out, err := fc.Run(context.Background(), "tput", "setaf", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "\x1b[32m" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestFakeCommander_NoMatch(t *testing.T) {
	t.Parallel()

	fc := NewFakeCommander()

	_, err := fc.Run(context.Background(), "unknown", "command")
	if err == nil {
		t.Fatal("expected error for unregistered command")
	}
}

func TestFakeCommander_DefaultResponse(t *testing.T) {
	t.Parallel()

	fc := NewFakeCommander()
	fc.DefaultResponse = &Response{Output: []byte("default"), Err: nil}

	out, err := fc.Run(context.Background(), "any", "command")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "default" {
		t.Errorf("got %q, want %q", string(out), "default")
	}
}

func TestFakeCommander_RecordsCalls(t *testing.T) {
	t.Parallel()

	fc := NewFakeCommander()
	fc.DefaultResponse = &Response{Output: nil, Err: nil}

	fc.Run(context.Background(), "tput", "sgr0")
	fc.Run(context.Background(), "bash", "-c", "setup \"$@\"", "cfhtenv", "obs_cfht", "-t", "alice")

	if len(fc.Calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(fc.Calls))
	}
	if !fc.Called("tput") {
		t.Error("expected tput to be called")
	}
	if fc.CallCount("bash") != 1 {
		t.Errorf("expected 1 bash call, got %d", fc.CallCount("bash"))
	}

	argv := fc.LastArgv("bash")
	if len(argv) != 7 || argv[2] != "setup \"$@\"" || argv[6] != "alice" {
		t.Errorf("unexpected argv: %q", argv)
	}
	if fc.LastArgv("missing") != nil {
		t.Error("expected nil argv for a command that never ran")
	}
}

func TestFakeCommander_ErrorResponse(t *testing.T) {
	t.Parallel()

	fc := NewFakeCommander()
	fc.Register("tput setaf", "tput: unknown terminal \"dumb\"\n", fmt.Errorf("exit status 3"))

	out, err := fc.Run(context.Background(), "tput", "setaf", "2")
	if err == nil {
		t.Fatal("expected error")
	}
	if string(out) != "tput: unknown terminal \"dumb\"\n" {
		t.Errorf("got %q", string(out))
	}
}

func TestFakeCommander_OnCall(t *testing.T) {
	t.Parallel()

	fc := NewFakeCommander()
	fc.DefaultResponse = &Response{}

	var seen []string
	fc.OnCall = func(name string, args []string) {
		seen = append(seen, name)
	}

	fc.Run(context.Background(), "tput", "sgr0")
	fc.Output(context.Background(), nil, "bash", "-c", "true")

	if len(seen) != 2 || seen[0] != "tput" || seen[1] != "bash" {
		t.Errorf("unexpected OnCall sequence: %v", seen)
	}
}

func TestFakeCommander_Output(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		env        map[string]string
		cmd        string
		args       []string
		register   string
		output     string
		wantOutput string
		wantErr    bool
	}{
		{
			name:       "delegates to Run lookup with env recorded",
			env:        map[string]string{"EUPS_DIR": "/opt/lsst/eups"},
			cmd:        "bash",
			args:       []string{"-c", "setup obs_cfht"},
			register:   "bash -c",
			output:     "ok",
			wantOutput: "ok",
		},
		{
			name:       "records env with nil map",
			env:        nil,
			cmd:        "tput",
			args:       []string{"sgr0"},
			register:   "tput sgr0",
			output:     "\x1b[m",
			wantOutput: "\x1b[m",
		},
		{
			name:       "records env with empty map",
			env:        map[string]string{},
			cmd:        "tput",
			args:       []string{"colors"},
			register:   "tput colors",
			output:     "256\n",
			wantOutput: "256\n",
		},
		{
			name:    "returns error for unregistered command",
			env:     map[string]string{"FOO": "bar"},
			cmd:     "unknown",
			args:    []string{"cmd"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fc := NewFakeCommander()
			if tt.register != "" {
				fc.Register(tt.register, tt.output, nil)
			}

			out, err := fc.Output(context.Background(), tt.env, tt.cmd, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(out) != tt.wantOutput {
				t.Errorf("output: got %q, want %q", string(out), tt.wantOutput)
			}
		})
	}
}

func TestFakeCommander_Output_RecordsEnvCalls(t *testing.T) {
	t.Parallel()

	fc := NewFakeCommander()
	fc.DefaultResponse = &Response{Output: nil, Err: nil}

	env1 := map[string]string{"EUPS_DIR": "/opt/one"}
	env2 := map[string]string{"EUPS_DIR": "/opt/two", "EXTRA": "val"}

	fc.Output(context.Background(), env1, "bash", "-c", "true")
	fc.Output(context.Background(), env2, "tput", "sgr0")

	if len(fc.EnvCalls) != 2 {
		t.Fatalf("expected 2 EnvCalls, got %d", len(fc.EnvCalls))
	}
	if fc.EnvCalls[0]["EUPS_DIR"] != "/opt/one" {
		t.Errorf("EnvCalls[0] EUPS_DIR: got %q", fc.EnvCalls[0]["EUPS_DIR"])
	}
	if fc.EnvCalls[1]["EXTRA"] != "val" {
		t.Errorf("EnvCalls[1] EXTRA: got %q", fc.EnvCalls[1]["EXTRA"])
	}
	if len(fc.Calls) != 2 {
		t.Fatalf("expected 2 Calls, got %d", len(fc.Calls))
	}
}
