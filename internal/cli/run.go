// Package cli — run.go implements the "botctl run" command.
//
// Run is the launch entry point. It verifies the virtual environment
// exists (failing fast with a pointer to setup when it does not), loads
// the dotenv file, and executes the bot synchronously with the terminal
// streams attached.
//
// The bot's real exit code becomes botctl's exit code. The original
// workflow always exited zero after the bot finished, which made failed
// runs indistinguishable from clean ones in scripts; propagating the
// code is an intentional behavior change (see DESIGN.md).
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planilhador/botctl/internal/launch"
	"github.com/planilhador/botctl/internal/model"
	"github.com/planilhador/botctl/internal/venv"
)

// NewRunCommand creates the "run" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bot inside the virtual environment",
		Long: `Launch the bot's entrypoint inside the provisioned virtual environment.

The environment must have been created with "botctl setup" first.
Variables from the dotenv file are loaded into the bot's environment
(without overriding variables already set in the shell), and the bot's
exit code is passed through as botctl's own exit code.

Examples:
  botctl run
  botctl run --dir ~/bots/planilhador
  botctl run --non-interactive`,

		// No positional arguments; the entrypoint and its arguments come
		// from the configuration.
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context())
		},
	}

	return cmd
}

// runRun is the main logic function for the run command.
func runRun(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	vm := venv.NewManager(cfg)
	launcher := launch.NewLauncher(cfg, vm)

	// Step 1: Preconditions. A missing environment aborts with exit
	// code 7 before the bot is ever invoked.
	if err := launcher.Preflight(); err != nil {
		return err
	}
	VerboseLog("Virtual environment: %s", cfg.VenvPath())
	VerboseLog("Launching %s...", cfg.EntrypointPath())

	// Step 2: Execute the bot. Run blocks until the bot exits; its
	// stdout/stderr go straight to the console.
	code, err := launcher.Run(ctx)

	// Step 3: The closing message is unconditional — it prints whether
	// the bot exited cleanly, crashed, or failed to start at all.
	fmt.Println()
	fmt.Println("Bot stopped.")

	if err != nil {
		return err
	}
	if code != 0 {
		// Propagate the bot's own exit status. The CLIError carries the
		// verbatim code so Execute hands it to the OS unchanged.
		return model.NewCLIError(model.ExitCode(code),
			fmt.Sprintf("bot exited with status %d", code))
	}

	prompter().Pause("")
	return nil
}
