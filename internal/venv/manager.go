package venv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/planilhador/botctl/internal/config"
	"github.com/planilhador/botctl/internal/model"
)

// runFunc executes a command in a directory and returns its stdout.
// Injected into Manager so tests can record invocations and fabricate
// results without a Python interpreter on the test machine.
type runFunc func(ctx context.Context, dir string, name string, args ...string) (string, error)

// Manager provides virtual environment operations by invoking the
// discovered interpreter and the venv's own pip.
//
// The activation script is treated as the environment's existence marker:
// `python -m venv` writes it last enough in practice that its presence is
// a reliable "setup completed at least once" signal, and it is the same
// marker the original workflow checked.
type Manager struct {
	cfg *config.Config
	run runFunc
}

// NewManager creates a Manager for the given configuration.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		cfg: cfg,
		run: runCommand,
	}
}

// markerRelPath returns the activation script path relative to the venv
// root for the given GOOS. The goos parameter keeps both branches
// testable on any platform.
func markerRelPath(goos string) string {
	if goos == "windows" {
		return filepath.Join("Scripts", "activate.bat")
	}
	return filepath.Join("bin", "activate")
}

// pythonRelPath returns the venv interpreter path relative to the venv
// root for the given GOOS.
func pythonRelPath(goos string) string {
	if goos == "windows" {
		return filepath.Join("Scripts", "python.exe")
	}
	return filepath.Join("bin", "python")
}

// binRelPath returns the venv's executable directory relative to the
// venv root for the given GOOS. This is the directory prepended to PATH
// during activation.
func binRelPath(goos string) string {
	if goos == "windows" {
		return "Scripts"
	}
	return "bin"
}

// MarkerPath returns the absolute path of the activation script.
func (m *Manager) MarkerPath() string {
	return filepath.Join(m.cfg.VenvPath(), markerRelPath(runtime.GOOS))
}

// PythonPath returns the absolute path of the interpreter inside the venv.
func (m *Manager) PythonPath() string {
	return filepath.Join(m.cfg.VenvPath(), pythonRelPath(runtime.GOOS))
}

// binDir returns the absolute path of the venv's executable directory.
func (m *Manager) binDir() string {
	return filepath.Join(m.cfg.VenvPath(), binRelPath(runtime.GOOS))
}

// Exists reports whether the virtual environment has been materialized,
// i.e. whether the activation marker is present on disk.
func (m *Manager) Exists() bool {
	info, err := os.Stat(m.MarkerPath())
	return err == nil && !info.IsDir()
}

// State returns the environment lifecycle state derived from the marker.
func (m *Manager) State() model.EnvState {
	if m.Exists() {
		return model.StateReady
	}
	return model.StateMissing
}

// Ensure materializes the virtual environment if it does not exist yet.
//
// When the marker is already present, Ensure returns (false, nil) without
// touching the venv directory at all — re-running setup must not recreate
// or modify an existing environment. Otherwise it runs
// `<interpreter> -m venv <dir>` and returns (true, nil) on success.
func (m *Manager) Ensure(ctx context.Context, interp *model.Interpreter) (created bool, err error) {
	if m.Exists() {
		return false, nil
	}

	args := append(append([]string{}, interp.Command[1:]...), "-m", "venv", m.cfg.VenvPath())
	if _, err := m.run(ctx, m.cfg.ProjectDir, interp.Command[0], args...); err != nil {
		return false, model.WrapCLIError(model.ExitVenvCreateFailed,
			"failed to create the virtual environment", err)
	}
	return true, nil
}

// UpgradePip upgrades pip inside the virtual environment.
//
// The upgrade runs through `<venv python> -m pip` rather than a pip
// binary path: on Windows, pip.exe cannot replace itself while running,
// and `-m pip` sidesteps that.
func (m *Manager) UpgradePip(ctx context.Context) error {
	_, err := m.run(ctx, m.cfg.ProjectDir, m.PythonPath(),
		"-m", "pip", "install", "--upgrade", "pip")
	if err != nil {
		return model.WrapCLIError(model.ExitPipUpgradeFailed, "failed to upgrade pip", err)
	}
	return nil
}

// InstallRequirements installs every dependency listed in the manifest.
//
// The manifest is checked before pip is invoked so a missing file gets
// its own exit code and remediation message instead of a generic pip
// failure. Installation failures themselves are deliberately generic:
// network problems, permission errors and resolver conflicts all surface
// through pip's own output, which the wrapped error carries.
func (m *Manager) InstallRequirements(ctx context.Context) error {
	manifest := m.cfg.RequirementsPath()
	if _, err := os.Stat(manifest); err != nil {
		return model.WrapCLIError(model.ExitManifestMissing,
			fmt.Sprintf("requirements manifest not found at %s", manifest), err)
	}

	_, err := m.run(ctx, m.cfg.ProjectDir, m.PythonPath(),
		"-m", "pip", "install", "-r", manifest)
	if err != nil {
		return model.WrapCLIError(model.ExitInstallFailed,
			"failed to install dependencies (check network access and the manifest contents)", err)
	}
	return nil
}

// ActivationEnv transforms a base environment (usually os.Environ) into
// the environment an activated venv shell would have:
//
//   - VIRTUAL_ENV is set to the venv root
//   - the venv's executable directory is prepended to PATH
//   - PYTHONHOME is dropped, since it would override the venv's interpreter
//
// Any pre-existing VIRTUAL_ENV entry is replaced. PATH matching is
// case-insensitive because Windows environments commonly spell it "Path".
func (m *Manager) ActivationEnv(base []string) []string {
	binDir := m.binDir()
	out := make([]string, 0, len(base)+2)

	pathSeen := false
	for _, kv := range base {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			out = append(out, kv)
			continue
		}
		switch {
		case strings.EqualFold(key, "PATH"):
			out = append(out, key+"="+binDir+string(os.PathListSeparator)+val)
			pathSeen = true
		case strings.EqualFold(key, "VIRTUAL_ENV"), strings.EqualFold(key, "PYTHONHOME"):
			// Dropped — the venv's own values must win.
		default:
			out = append(out, kv)
		}
	}

	if !pathSeen {
		out = append(out, "PATH="+binDir)
	}
	out = append(out, "VIRTUAL_ENV="+m.cfg.VenvPath())
	return out
}

// ContainedInProject reports whether the venv directory resolves to a
// location inside the project directory. The clean command refuses to
// delete anything that fails this check, so a configuration mistake
// (or an absolute venv path pointing elsewhere) can never wipe an
// unrelated directory tree.
func (m *Manager) ContainedInProject() bool {
	rel, err := filepath.Rel(m.cfg.ProjectDir, m.cfg.VenvPath())
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Remove deletes the virtual environment directory tree.
// Callers are expected to have checked ContainedInProject first.
func (m *Manager) Remove() error {
	if err := os.RemoveAll(m.cfg.VenvPath()); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			"failed to remove the virtual environment", err)
	}
	return nil
}

// runCommand executes a command with the given arguments in the specified
// directory.
//
// It captures stdout and stderr separately. On success (exit code 0), it
// returns the stdout output. On failure, the returned error includes the
// trimmed stderr output, which for interpreter and pip invocations is
// where the actionable diagnostic lives.
func runCommand(ctx context.Context, dir string, name string, args ...string) (string, error) {
	// #nosec G204 — name and args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("%s %s failed", name, strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}

	return stdout.String(), nil
}
