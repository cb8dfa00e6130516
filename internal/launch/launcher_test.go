package launch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planilhador/botctl/internal/config"
	"github.com/planilhador/botctl/internal/model"
	"github.com/planilhador/botctl/internal/venv"
)

// childCall captures one invocation of the stub exec function.
type childCall struct {
	dir  string
	env  []string
	name string
	args []string
}

// newTestLauncher builds a Launcher over a temp project with a stub
// execFunc that records calls and returns the given exit code.
func newTestLauncher(t *testing.T, calls *[]childCall, exitCode int, execErr error) (*Launcher, *config.Config) {
	t.Helper()

	cfg := config.Default(t.TempDir())
	vm := venv.NewManager(cfg)
	l := NewLauncher(cfg, vm)
	l.execChild = func(ctx context.Context, dir string, env []string, name string, args ...string) (int, error) {
		*calls = append(*calls, childCall{dir: dir, env: env, name: name, args: args})
		return exitCode, execErr
	}
	return l, cfg
}

// materializeVenv fabricates the activation marker so preflight passes.
func materializeVenv(t *testing.T, cfg *config.Config) {
	t.Helper()

	vm := venv.NewManager(cfg)
	marker := vm.MarkerPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(marker), 0755))
	require.NoError(t, os.WriteFile(marker, []byte("# activate\n"), 0644))
}

// materializeEntrypoint writes a placeholder bot.py.
func materializeEntrypoint(t *testing.T, cfg *config.Config) {
	t.Helper()
	require.NoError(t, os.WriteFile(cfg.EntrypointPath(), []byte("print('bot')\n"), 0644))
}

// TestPreflight_EnvMissing verifies the launcher fails fast with the
// environment exit code and a pointer to setup when no venv exists.
func TestPreflight_EnvMissing(t *testing.T) {
	var calls []childCall
	l, _ := newTestLauncher(t, &calls, 0, nil)

	err := l.Preflight()
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitEnvMissing, cliErr.Code)
	assert.Contains(t, cliErr.Message, "botctl setup")
	assert.Empty(t, calls, "the bot must never be invoked without a venv")
}

// TestPreflight_EntrypointMissing verifies a present venv is not enough
// when the bot's main program is gone.
func TestPreflight_EntrypointMissing(t *testing.T) {
	var calls []childCall
	l, cfg := newTestLauncher(t, &calls, 0, nil)
	materializeVenv(t, cfg)

	err := l.Preflight()
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
}

// TestPreflight_OK verifies the happy path.
func TestPreflight_OK(t *testing.T) {
	var calls []childCall
	l, cfg := newTestLauncher(t, &calls, 0, nil)
	materializeVenv(t, cfg)
	materializeEntrypoint(t, cfg)

	assert.NoError(t, l.Preflight())
}

// TestRun_InvokesChildExactlyOnce verifies the single synchronous
// invocation with the venv interpreter, the entrypoint path, and the
// configured extra arguments.
func TestRun_InvokesChildExactlyOnce(t *testing.T) {
	var calls []childCall
	l, cfg := newTestLauncher(t, &calls, 0, nil)
	cfg.EntrypointArgs = []string{"--debug"}
	materializeVenv(t, cfg)
	materializeEntrypoint(t, cfg)

	code, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	require.Len(t, calls, 1, "the bot must be invoked exactly once")
	call := calls[0]
	assert.Equal(t, cfg.ProjectDir, call.dir)
	assert.Equal(t, venv.NewManager(cfg).PythonPath(), call.name)
	assert.Equal(t, []string{cfg.EntrypointPath(), "--debug"}, call.args)
}

// TestRun_PropagatesExitCode verifies the bot's non-zero status comes
// back verbatim.
func TestRun_PropagatesExitCode(t *testing.T) {
	var calls []childCall
	l, cfg := newTestLauncher(t, &calls, 3, nil)
	materializeVenv(t, cfg)
	materializeEntrypoint(t, cfg)

	code, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

// TestChildEnv_ActivationApplied verifies the child environment carries
// the venv activation transform.
func TestChildEnv_ActivationApplied(t *testing.T) {
	var calls []childCall
	l, cfg := newTestLauncher(t, &calls, 0, nil)

	env, err := l.ChildEnv()
	require.NoError(t, err)

	joined := strings.Join(env, "\n")
	assert.Contains(t, joined, "VIRTUAL_ENV="+cfg.VenvPath())
	assert.NotContains(t, joined, "PYTHONHOME=")
}

// TestChildEnv_DotenvMerged verifies dotenv variables reach the child
// without overriding variables already set in the process environment.
func TestChildEnv_DotenvMerged(t *testing.T) {
	var calls []childCall
	l, cfg := newTestLauncher(t, &calls, 0, nil)

	dotenv := "TELEGRAM_BOT_TOKEN=from-dotenv\nGOOGLE_SHEET_ID=sheet-42\n"
	require.NoError(t, os.WriteFile(cfg.EnvFilePath(), []byte(dotenv), 0644))

	// A variable already exported in the shell must win over .env.
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-shell")

	env, err := l.ChildEnv()
	require.NoError(t, err)

	joined := strings.Join(env, "\n")
	assert.Contains(t, joined, "TELEGRAM_BOT_TOKEN=from-shell")
	assert.NotContains(t, joined, "TELEGRAM_BOT_TOKEN=from-dotenv")
	assert.Contains(t, joined, "GOOGLE_SHEET_ID=sheet-42")
}

// TestChildEnv_MissingDotenvTolerated verifies a project without .env
// still launches — the bot reports its own missing settings.
func TestChildEnv_MissingDotenvTolerated(t *testing.T) {
	var calls []childCall
	l, _ := newTestLauncher(t, &calls, 0, nil)

	_, err := l.ChildEnv()
	assert.NoError(t, err)
}

// TestMergeDotenv verifies precedence and ordering at the unit level.
func TestMergeDotenv(t *testing.T) {
	env := []string{"PATH=/usr/bin", "KEEP=original"}
	vars := map[string]string{
		"KEEP": "overridden",
		"B_NEW": "b",
		"A_NEW": "a",
	}

	merged := mergeDotenv(env, vars)

	assert.Contains(t, merged, "KEEP=original")
	assert.NotContains(t, merged, "KEEP=overridden")

	// New keys are appended in sorted order after the base environment.
	require.Len(t, merged, 4)
	assert.Equal(t, "A_NEW=a", merged[2])
	assert.Equal(t, "B_NEW=b", merged[3])
}
