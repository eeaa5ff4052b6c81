package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lsst-cfht/cfhtenv/internal/shell"
	"github.com/lsst-cfht/cfhtenv/internal/state"
	"github.com/spf13/cobra"
)

// StatusReport는 status 명령의 출력이다.
type StatusReport struct {
	Active     bool         `json:"active"`
	Package    string       `json:"package,omitempty"`
	Identity   string       `json:"identity,omitempty"`
	Configured string       `json:"configured_package"`
	ProjectDir string       `json:"project_dir"`
	Last       *state.Entry `json:"last_activation,omitempty"`
}

func (a *App) newStatusCmd() *cobra.Command {
	var asJSON bool
	var profile string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "현재 셸의 cfhtenv 세션 상태를 표시한다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.status(profile)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return fmt.Errorf("cli.status: %w", err)
				}
				return nil
			}
			printStatus(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "JSON으로 출력")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "조회할 프로필 이름")
	return cmd
}

func (a *App) status(profile string) (*StatusReport, error) {
	cfg, err := a.loadConfig(profile)
	if err != nil {
		return nil, err
	}
	report := &StatusReport{
		Package:    a.getenv(shell.VarActive),
		Identity:   a.getenv(shell.VarTag),
		Configured: cfg.Package,
		ProjectDir: cfg.ProjectDir,
	}
	report.Active = report.Package != ""

	st, err := state.Load(a.statePath())
	if err != nil {
		return nil, fmt.Errorf("cli.status: %w", err)
	}
	if e, ok := st.Lookup(cfg.Package); ok {
		report.Last = e
	}
	return report, nil
}

func printStatus(w io.Writer, r *StatusReport) {
	if r.Active {
		fmt.Fprintf(w, "%s %s (tag %s)\n", okStyle.Render("●"), labelStyle.Render(r.Package), r.Identity)
	} else {
		fmt.Fprintf(w, "%s 활성화된 세션 없음. 'cfht_setup'으로 시작하세요.\n", dimStyle.Render("○"))
	}
	fmt.Fprintf(w, "  package:     %s\n", r.Configured)
	fmt.Fprintf(w, "  project_dir: %s\n", r.ProjectDir)
	if r.Last == nil {
		return
	}
	setupState := okStyle.Render("ok")
	if !r.Last.SetupOK {
		setupState = failStyle.Render("failed")
	}
	fmt.Fprintf(w, "  last:        %s by %s, setup %s, %d variable(s)\n",
		r.Last.ActivatedAt, r.Last.Identity, setupState, r.Last.Changes)
}
