// Package cli — clean.go implements the "botctl clean" command.
//
// Clean deletes the virtual environment directory so the next setup
// starts from scratch. It refuses to delete anything outside the project
// directory, and prompts for confirmation unless --force is given (in
// non-interactive sessions the prompt always answers no, so --force is
// required there).
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planilhador/botctl/internal/model"
	"github.com/planilhador/botctl/internal/venv"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	// force skips the interactive confirmation prompt when true.
	force bool
}

// NewCleanCommand creates the "clean" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete the virtual environment",
		Long: `Delete the virtual environment directory.

Dependencies are removed with it; run "botctl setup" to provision a
fresh environment afterwards. Nothing outside the venv directory is
touched.

Examples:
  botctl clean
  botctl clean --force`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Skip the confirmation prompt")

	return cmd
}

// runClean is the main logic function for the clean command.
func runClean(flags *cleanFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	vm := venv.NewManager(cfg)

	if !vm.Exists() {
		return model.NewCLIError(model.ExitEnvMissing,
			fmt.Sprintf("no virtual environment at %s", cfg.VenvPath()))
	}

	// Containment check before anything destructive: a misconfigured
	// venv path (absolute, or "..") must never delete an unrelated tree.
	if !vm.ContainedInProject() {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("refusing to delete %s: outside the project directory", cfg.VenvPath()))
	}

	if !flags.force {
		question := fmt.Sprintf("Delete the virtual environment at %s?", cfg.VenvPath())
		if !prompter().Confirm(question) {
			return model.NewCLIError(model.ExitUserCancelled, "clean cancelled")
		}
	}

	VerboseLog("Removing %s...", cfg.VenvPath())
	if err := vm.Remove(); err != nil {
		return err
	}

	printCleanResult(cfg.VenvPath())
	return nil
}

// printCleanResult outputs the clean result in text or JSON format.
func printCleanResult(venvPath string) {
	if IsJSONOutput() {
		result := map[string]interface{}{
			"action":   "clean",
			"venvPath": venvPath,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Removed virtual environment at %s\n", venvPath)
	fmt.Println("Run `botctl setup` to provision a fresh one.")
}
