package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/planilhador/botctl/internal/config"
	"github.com/planilhador/botctl/internal/model"
	"github.com/planilhador/botctl/internal/venv"
)

// execFunc runs the bot process and returns its exit code. Injected so
// tests can observe exactly one invocation and fabricate exit codes
// without spawning real interpreters.
type execFunc func(ctx context.Context, dir string, env []string, name string, args ...string) (int, error)

// Launcher starts the bot inside the activated virtual environment.
//
// It never supervises the child: the bot runs synchronously with the
// terminal's stdin/stdout/stderr attached, and whatever exit code it
// produces is handed back to the caller to propagate as the process
// exit code.
type Launcher struct {
	cfg *config.Config
	vm  *venv.Manager

	execChild execFunc
}

// NewLauncher creates a Launcher for the given configuration and
// virtual environment manager.
func NewLauncher(cfg *config.Config, vm *venv.Manager) *Launcher {
	return &Launcher{
		cfg:       cfg,
		vm:        vm,
		execChild: runAttached,
	}
}

// Preflight verifies the launch preconditions without side effects:
//
//   - the virtual environment's activation marker must exist (otherwise
//     the user is told to run setup first, and the bot is never invoked)
//   - the entrypoint file must exist
//
// Returning early here preserves the invariant that the launcher never
// attempts to run the bot against a missing environment.
func (l *Launcher) Preflight() error {
	if !l.vm.Exists() {
		return model.NewCLIError(model.ExitEnvMissing,
			fmt.Sprintf("virtual environment not found at %s — run `botctl setup` first", l.cfg.VenvPath()))
	}

	entrypoint := l.cfg.EntrypointPath()
	if _, err := os.Stat(entrypoint); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("entrypoint not found at %s", entrypoint), err)
	}
	return nil
}

// ChildEnv assembles the environment for the bot process:
//
//  1. Start from the current process environment.
//  2. Apply the venv activation transform (VIRTUAL_ENV, PATH, PYTHONHOME).
//  3. Merge variables from the dotenv file, without overriding variables
//     that are already set — the same precedence python-dotenv applies,
//     so exporting a variable in the shell still wins over .env.
//
// A missing dotenv file is tolerated; the original workflow never checked
// for it, and the bot reports missing settings itself.
func (l *Launcher) ChildEnv() ([]string, error) {
	env := l.vm.ActivationEnv(os.Environ())

	vars, err := godotenv.Read(l.cfg.EnvFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return env, nil
		}
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to load %s", l.cfg.EnvFile), err)
	}

	return mergeDotenv(env, vars), nil
}

// Run executes the bot exactly once and returns its exit code.
//
// The child inherits the terminal streams, so all bot output goes
// straight to the console. Run blocks until the bot exits; there is no
// restart, timeout, or supervision of any kind.
func (l *Launcher) Run(ctx context.Context) (int, error) {
	env, err := l.ChildEnv()
	if err != nil {
		return -1, err
	}

	args := append([]string{l.cfg.EntrypointPath()}, l.cfg.EntrypointArgs...)
	return l.execChild(ctx, l.cfg.ProjectDir, env, l.vm.PythonPath(), args...)
}

// mergeDotenv appends dotenv variables to env, skipping any key that is
// already present. Keys are matched case-sensitively, matching POSIX
// environment semantics and python-dotenv behavior.
func mergeDotenv(env []string, vars map[string]string) []string {
	existing := make(map[string]struct{}, len(env))
	for _, kv := range env {
		key, _, ok := strings.Cut(kv, "=")
		if ok {
			existing[key] = struct{}{}
		}
	}

	// Deterministic ordering is not required by exec, but it keeps the
	// assembled environment stable for logging and tests.
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, ok := existing[k]; ok {
			continue
		}
		env = append(env, k+"="+vars[k])
	}
	return env
}

// runAttached is the production execFunc. It runs the bot with the
// terminal streams attached and translates the process outcome into an
// exit code:
//
//   - clean exit → (0, nil)
//   - non-zero exit → (code, nil); the bot ran, its status is the result
//   - failure to start at all → (-1, CLIError)
func runAttached(ctx context.Context, dir string, env []string, name string, args ...string) (int, error) {
	// #nosec G204 — name and args come from configuration, not remote input
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, model.WrapCLIError(model.ExitGeneralError, "failed to start the bot", err)
}
