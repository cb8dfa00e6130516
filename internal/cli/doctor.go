// Package cli — doctor.go implements the "botctl doctor" command.
//
// Doctor evaluates every preflight check in internal/doctor and prints
// the findings. It exits non-zero when any fail-level finding is present,
// so CI and scripts can gate on it.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planilhador/botctl/internal/doctor"
	"github.com/planilhador/botctl/internal/model"
)

// NewDoctorCommand creates the "doctor" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check everything the bot needs to run",
		Long: `Run preflight checks: interpreter, virtual environment, manifest,
entrypoint, dotenv file, and credentials file.

Failures (interpreter, venv, manifest, entrypoint) block the bot from
starting and make doctor exit non-zero. Warnings (.env, credentials.json)
are surfaced but the bot handles those itself at startup.

Examples:
  botctl doctor
  botctl doctor --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context())
		},
	}

	return cmd
}

// runDoctor is the main logic function for the doctor command.
func runDoctor(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	results := doctor.New(cfg).Run(ctx)
	printDoctorResults(results)

	if doctor.HasFailures(results) {
		return model.NewCLIError(model.ExitGeneralError, "preflight checks failed")
	}
	return nil
}

// printDoctorResults outputs the check results in text or JSON format.
func printDoctorResults(results []doctor.Result) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(data))
		return
	}

	for _, r := range results {
		fmt.Printf("%-6s %-13s %s\n", severityTag(r.Severity), r.Name, r.Detail)
	}
}

// severityTag renders a severity as a fixed-width bracketed tag for the
// text report.
func severityTag(s doctor.Severity) string {
	switch s {
	case doctor.SeverityOK:
		return "[ok]"
	case doctor.SeverityWarn:
		return "[warn]"
	default:
		return "[fail]"
	}
}
