// Package cli — setup.go implements the "botctl setup" command.
//
// Setup is the provisioning entry point. It runs the full bootstrap
// sequence with no retries — every failure is terminal for the run and
// the user re-invokes after fixing the cause:
//
//  1. Discover a Python 3 interpreter (ordered candidate chain)
//  2. Create the virtual environment if its marker is absent
//  3. Upgrade pip inside the environment
//  4. Install dependencies from the requirements manifest
//  5. Print a completion summary with a usage hint
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planilhador/botctl/internal/model"
	"github.com/planilhador/botctl/internal/python"
	"github.com/planilhador/botctl/internal/venv"
)

// NewSetupCommand creates the "setup" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewSetupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision the bot's virtual environment",
		Long: `Create the virtual environment, upgrade pip, and install dependencies.

Setup is idempotent: if the environment already exists it is reused
unchanged, and only pip and the dependency installation run again.

Examples:
  botctl setup
  botctl setup --dir ~/bots/planilhador
  botctl setup --json --non-interactive`,

		// No positional arguments are required for the setup command.
		Args: cobra.NoArgs,

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context())
		},
	}

	return cmd
}

// runSetup is the main orchestration function for the setup command.
func runSetup(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	VerboseLog("Project directory: %s", cfg.ProjectDir)

	// Step 1: Interpreter discovery. The resolver walks the candidate
	// chain and fails with exit code 2 and a remediation message when
	// nothing usable answers.
	resolver := python.NewResolver(cfg.PythonCandidates)
	interp, err := resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	VerboseLog("Resolved interpreter: %s", interp)

	// Step 2: Environment materialization. An existing marker means the
	// venv is reused as-is — the directory is never recreated or touched.
	vm := venv.NewManager(cfg)
	created, err := vm.Ensure(ctx, interp)
	if err != nil {
		return err
	}
	if created {
		VerboseLog("Created virtual environment at %s", cfg.VenvPath())
	} else {
		VerboseLog("Reusing existing virtual environment at %s", cfg.VenvPath())
	}

	// Step 3: pip self-upgrade inside the environment.
	VerboseLog("Upgrading pip...")
	if err := vm.UpgradePip(ctx); err != nil {
		return err
	}

	// Step 4: Dependency installation. The manifest existence check and
	// its distinct exit code live in InstallRequirements.
	VerboseLog("Installing dependencies from %s...", cfg.Requirements)
	if err := vm.InstallRequirements(ctx); err != nil {
		return err
	}

	// Step 5: Completion summary and acknowledgment pause.
	printSetupResult(interp, cfg.VenvPath(), created)
	prompter().Pause("")
	return nil
}

// printSetupResult outputs the setup result in text or JSON format.
func printSetupResult(interp *model.Interpreter, venvPath string, created bool) {
	if IsJSONOutput() {
		printSetupResultJSON(interp, venvPath, created)
	} else {
		printSetupResultText(interp, venvPath, created)
	}
}

// printSetupResultJSON outputs the setup result as structured JSON.
func printSetupResultJSON(interp *model.Interpreter, venvPath string, created bool) {
	result := map[string]interface{}{
		"action":      "setup",
		"interpreter": interp,
		"venvPath":    venvPath,
		"created":     created,
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// printSetupResultText outputs the setup result as human-readable text,
// ending with the usage hint the original completion message carried.
func printSetupResultText(interp *model.Interpreter, venvPath string, created bool) {
	action := "reused"
	if created {
		action = "created"
	}

	fmt.Println("Setup complete.")
	fmt.Printf("  Interpreter:  %s\n", interp)
	fmt.Printf("  Environment:  %s (%s)\n", venvPath, action)
	fmt.Println()
	fmt.Println("Run `botctl run` to start the bot.")
}
