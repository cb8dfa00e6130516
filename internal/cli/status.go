// Package cli — status.go implements the "botctl status" command.
//
// Status reports the environment state without changing anything: whether
// the virtual environment exists, which Python version it carries, whether
// the manifest and entrypoint are present, and which packages pip has
// installed. Output is a text summary or JSON, per the --json flag.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planilhador/botctl/internal/config"
	"github.com/planilhador/botctl/internal/model"
	"github.com/planilhador/botctl/internal/venv"
)

// statusFlags holds the flag values for the status command.
type statusFlags struct {
	// packages includes the full installed package list in the output.
	// Off by default because pip list spawns an interpreter and the
	// list can be long.
	packages bool
}

// statusReport aggregates everything the status command collects.
// It doubles as the JSON output shape.
type statusReport struct {
	State         model.EnvState      `json:"state"`
	VenvPath      string              `json:"venvPath"`
	PythonVersion string              `json:"pythonVersion,omitempty"`
	Manifest      bool                `json:"manifestPresent"`
	Entrypoint    bool                `json:"entrypointPresent"`
	PackageCount  int                 `json:"packageCount,omitempty"`
	Packages      []model.PackageInfo `json:"packages,omitempty"`
}

// NewStatusCommand creates the "status" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStatusCommand() *cobra.Command {
	flags := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the bot's environment",
		Long: `Show whether the virtual environment exists and what it contains.

Examples:
  botctl status
  botctl status --packages
  botctl status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.packages, "packages", false, "List installed packages")

	return cmd
}

// runStatus is the main logic function for the status command.
func runStatus(ctx context.Context, flags *statusFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	vm := venv.NewManager(cfg)
	report := collectStatus(ctx, cfg, vm, flags.packages)

	printStatusReport(report)
	return nil
}

// collectStatus gathers the report fields. Probes against the venv
// interpreter are best-effort: a venv that exists but is broken still
// yields a report (with the probe details missing) rather than an error,
// because status is a diagnostic command.
func collectStatus(ctx context.Context, cfg *config.Config, vm *venv.Manager, withPackages bool) *statusReport {
	report := &statusReport{
		State:    vm.State(),
		VenvPath: cfg.VenvPath(),
	}

	if _, err := os.Stat(cfg.RequirementsPath()); err == nil {
		report.Manifest = true
	}
	if _, err := os.Stat(cfg.EntrypointPath()); err == nil {
		report.Entrypoint = true
	}

	if report.State != model.StateReady {
		return report
	}

	version, err := vm.PythonVersion(ctx)
	if err != nil {
		VerboseLog("Could not probe venv interpreter: %v", err)
	} else {
		report.PythonVersion = version
	}

	packages, err := vm.InstalledPackages(ctx)
	if err != nil {
		VerboseLog("Could not list installed packages: %v", err)
	} else {
		report.PackageCount = len(packages)
		if withPackages {
			report.Packages = packages
		}
	}

	return report
}

// printStatusReport outputs the report in text or JSON format.
func printStatusReport(report *statusReport) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Environment: %s (%s)\n", report.State, report.VenvPath)
	if report.PythonVersion != "" {
		fmt.Printf("  Python:        %s\n", report.PythonVersion)
	}
	fmt.Printf("  Manifest:      %s\n", presence(report.Manifest))
	fmt.Printf("  Entrypoint:    %s\n", presence(report.Entrypoint))
	if report.PackageCount > 0 {
		fmt.Printf("  Packages:      %d installed\n", report.PackageCount)
	}

	if len(report.Packages) > 0 {
		fmt.Println()
		for _, p := range report.Packages {
			fmt.Printf("    %-30s %s\n", p.Name, p.Version)
		}
	}

	if report.State == model.StateMissing {
		fmt.Println()
		fmt.Println("Run `botctl setup` to create the environment.")
	}
}

// presence renders a boolean as present/missing for the text report.
func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
