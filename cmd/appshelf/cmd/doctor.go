package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
	"github.com/Aman-CERP/appshelf/internal/preflight"
)

// doctorReport is the JSON shape of doctor --json.
type doctorReport struct {
	Status   string                  `json:"status"`
	Checks   []preflight.CheckResult `json:"checks"`
	Warnings []string                `json:"warnings,omitempty"`
	Errors   []string                `json:"errors,omitempty"`
}

func newDoctorCmd(s *rootState) *cobra.Command {
	var verbose, jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that appshelf can read this system",
		Long: `Run host diagnostics for appshelf.

Checks:
  - Appstream collection files matched by appstream.paths
  - Icon directories
  - flatpak executable and dpkg status database
  - At least one usable package backend
  - Log directory write permissions
  - File descriptor limit

Only a missing backend or an unwritable log directory fails the check.`,
		Example: `  appshelf doctor
  appshelf doctor --verbose
  appshelf doctor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			checker := preflight.New(
				preflight.WithVerbose(verbose),
				preflight.WithOutput(cmd.OutOrStdout()),
			)
			results := checker.RunAll(cmd.Context(), s.cfg)

			if jsonOutput {
				if err := writeDoctorJSON(cmd, checker, results); err != nil {
					return err
				}
			} else {
				checker.PrintResults(results)
			}

			if checker.HasCriticalFailures(results) {
				return apperrors.New(apperrors.ErrCodeBackendUnavailable, "system check failed", nil).
					WithSuggestion("Run 'appshelf doctor --verbose' for details")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func writeDoctorJSON(cmd *cobra.Command, checker *preflight.Checker, results []preflight.CheckResult) error {
	report := doctorReport{
		Status: checker.SummaryStatus(results),
		Checks: results,
	}
	for _, r := range results {
		switch {
		case r.IsCritical():
			report.Errors = append(report.Errors, r.Name+": "+r.Message)
		case r.Status != preflight.StatusPass:
			report.Warnings = append(report.Warnings, r.Name+": "+r.Message)
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
