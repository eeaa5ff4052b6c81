package cli_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lsst-cfht/cfhtenv/internal/cli"
	"github.com/stretchr/testify/assert"
)

func TestMapExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want cli.ExitCode
	}{
		{"nil", nil, cli.ExitSuccess},
		{"setup failed", fmt.Errorf("session.Run: %w", cli.ErrSetupFailed), cli.ExitSetupFailed},
		{"project dir", fmt.Errorf("session.Run: %w", cli.ErrProjectDir), cli.ExitProjectDir},
		{"identity", fmt.Errorf("session.Run: %w", cli.ErrIdentity), cli.ExitIdentity},
		{"config", fmt.Errorf("config.Load: %w", cli.ErrConfig), cli.ExitConfigError},
		{"ambiguous profile", fmt.Errorf("resolver.Resolve: %w", cli.ErrAmbiguous), cli.ExitConfigError},
		{"doctor failed", fmt.Errorf("cli.doctor: %w", cli.ErrDoctorFailed), cli.ExitGeneral},
		{"unsupported shell", cli.ErrUnsupportedShell, cli.ExitGeneral},
		{"other", errors.New("boom"), cli.ExitGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cli.MapExitCode(tt.err))
		})
	}
}
