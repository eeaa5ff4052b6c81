package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/lsst-cfht/cfhtenv/internal/config"
	"github.com/lsst-cfht/cfhtenv/internal/doctor"
	"github.com/lsst-cfht/cfhtenv/internal/shell"
	"github.com/spf13/cobra"
)

func (a *App) newDoctorCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "EUPS, 프로젝트 디렉토리, 터미널 환경을 진단한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDoctor(cmd.Context(), cmd.OutOrStdout(), profile)
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "진단할 프로필 이름")
	return cmd
}

func (a *App) runDoctor(ctx context.Context, out io.Writer, profile string) error {
	cfg, err := a.loadConfig(profile)
	if err != nil {
		fmt.Fprintf(out, "  [%s] config: %v\n", statusIcon(doctor.StatusFail), err)
		fmt.Fprintln(out, "      Fix: cfhtenv config init 실행 또는 설정 파일 확인")
		// 설정 없이도 바이너리는 확인한다
		printDiagResults(out, doctor.CheckBinaries(ctx, a.Commander, config.DefaultShellBinary))
		return fmt.Errorf("cli.doctor: %w", err)
	}

	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("package:"), cfg.Package)
	results := doctor.RunAll(ctx, a.Commander, cfg, shell.VarActive)
	printDiagResults(out, results)
	if doctor.Failed(results) {
		return fmt.Errorf("cli.doctor: %w", ErrDoctorFailed)
	}
	return nil
}

// printDiagResults는 진단 결과 목록을 출력한다.
func printDiagResults(out io.Writer, results []doctor.DiagResult) {
	for _, r := range results {
		fmt.Fprintf(out, "  [%s] %s: %s\n", statusIcon(r.Status), r.Name, r.Message)
		if r.Fix != "" {
			fmt.Fprintf(out, "      Fix: %s\n", r.Fix)
		}
	}
}

func statusIcon(s doctor.Status) string {
	switch s {
	case doctor.StatusOK:
		return okStyle.Render("OK")
	case doctor.StatusWarn:
		return warnStyle.Render("!!")
	case doctor.StatusFail:
		return failStyle.Render("FAIL")
	default:
		return "??"
	}
}
