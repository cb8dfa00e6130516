// Package cli implements the cobra-based CLI commands for botctl.
//
// Each subcommand (setup, run, status, doctor, clean) is defined in its
// own file within this package. This file defines the root command that
// serves as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planilhador/botctl/internal/config"
	"github.com/planilhador/botctl/internal/model"
	"github.com/planilhador/botctl/internal/term"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, all output uses structured JSON format for machine consumption.
	// When false (default), output uses human-readable text format.
	jsonOutput bool

	// verbose enables detailed logging output for debugging.
	// When true, additional information about operations is printed to stderr.
	verbose bool

	// nonInteractive suppresses all pauses and confirmation prompts.
	// The same suppression happens automatically when stdin is not a terminal.
	nonInteractive bool

	// projectDir is the bot project directory all paths resolve against.
	// Defaults to the current working directory.
	projectDir string

	// configPath optionally points at an explicit botctl.yaml. When empty,
	// the file is looked up in the project directory and may be absent.
	configPath string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action — it only provides
// help text and global flags. Actual functionality is provided by
// subcommands (setup, run, status, doctor, clean).
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "botctl",
		Short: "Provision and launch the bot's Python environment",
		Long: `botctl bootstraps an isolated Python environment for the bot and runs it.

setup creates (or reuses) the virtual environment, upgrades pip, and
installs the pinned dependencies from the requirements manifest. run
launches the bot inside that environment and passes its exit code
through. status and doctor inspect the environment without changing it.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	// PersistentFlags are inherited by all subcommands. This is the cobra
	// mechanism for global flags — any flag defined here is automatically
	// available in every subcommand without re-declaration.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never pause or prompt")
	rootCmd.PersistentFlags().StringVar(&projectDir, "dir", "", "Bot project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to botctl.yaml (default: <dir>/botctl.yaml)")

	// Register subcommands. Each subcommand is defined in its own file
	// (setup.go, run.go, etc.) and returns a *cobra.Command.
	rootCmd.AddCommand(NewSetupCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewDoctorCommand())
	rootCmd.AddCommand(NewCleanCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them
// into appropriate OS exit codes. CLIError types carry their own
// exit codes; other errors default to exit code 1.
//
// Failures pause for acknowledgment in interactive sessions, so a user
// who double-clicked the binary can read the diagnostic before the
// console window closes.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		// Check if the error is a CLIError with a specific exit code.
		// errors.As would also work here, but a type assertion is simpler
		// for this single-level check.
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			prompter().Pause("")
			os.Exit(int(cliErr.Code))
		}

		// Generic error — exit with code 1.
		printError(err.Error(), nil)
		prompter().Pause("")
		os.Exit(int(model.ExitGeneralError))
	}
}

// loadConfig builds the effective configuration from the persistent
// flags. Shared by every subcommand.
func loadConfig() (*config.Config, error) {
	dir := projectDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
		}
		dir = cwd
	}
	return config.Load(dir, configPath)
}

// prompter returns the interactive boundary for the current invocation,
// honoring both the --non-interactive flag and actual TTY presence.
func prompter() term.Prompter {
	return term.ForMode(nonInteractive)
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// json.MarshalIndent produces human-readable JSON with indentation.
		// We write to stderr for errors, even in JSON mode, because stdout
		// is reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		// Text format: "Error: <message>" on stderr.
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
// This is used throughout the CLI for debug/trace output that helps
// users understand what operations are being performed.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
