// inspect.go provides read-only queries against an existing virtual
// environment: the interpreter version it carries and the packages pip
// has installed into it. The status command is the main consumer.
package venv

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/planilhador/botctl/internal/model"
	"github.com/planilhador/botctl/internal/python"
)

// PythonVersion probes the venv's own interpreter and returns its
// version string (e.g., "3.11.4"). This can differ from the system
// interpreter that originally created the venv if the user upgraded
// Python since.
func (m *Manager) PythonVersion(ctx context.Context) (string, error) {
	out, err := m.run(ctx, m.cfg.ProjectDir, m.PythonPath(), "--version")
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError,
			"failed to probe the venv interpreter", err)
	}

	version, _, _, err := python.ParseBanner(out)
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError,
			"failed to parse the venv interpreter version", err)
	}
	return version, nil
}

// InstalledPackages lists every package installed in the venv, sorted by
// name. It uses `pip list --format=json`, which is pip's stable
// machine-readable surface — parsing the human-readable table would
// break across pip versions.
func (m *Manager) InstalledPackages(ctx context.Context) ([]model.PackageInfo, error) {
	out, err := m.run(ctx, m.cfg.ProjectDir, m.PythonPath(),
		"-m", "pip", "list", "--format=json")
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			"failed to list installed packages", err)
	}

	var packages []model.PackageInfo
	if err := json.Unmarshal([]byte(out), &packages); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			"failed to parse pip list output", err)
	}

	sort.Slice(packages, func(i, j int) bool {
		return packages[i].Name < packages[j].Name
	})
	return packages, nil
}
