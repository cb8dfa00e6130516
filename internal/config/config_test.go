package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault verifies the historical default layout: venv, requirements.txt,
// bot.py, .env and credentials.json side by side in the project directory.
func TestDefault(t *testing.T) {
	cfg := Default("/srv/bot")

	assert.Equal(t, "/srv/bot", cfg.ProjectDir)
	assert.Equal(t, "venv", cfg.VenvDir)
	assert.Equal(t, "requirements.txt", cfg.Requirements)
	assert.Equal(t, "bot.py", cfg.Entrypoint)
	assert.Equal(t, ".env", cfg.EnvFile)
	assert.Equal(t, "credentials.json", cfg.CredentialsFile)
	assert.NotEmpty(t, cfg.PythonCandidates)
}

// TestDefaultPythonCandidates verifies the per-platform discovery order.
// Both branches are exercised explicitly so the test is meaningful on
// any host platform.
func TestDefaultPythonCandidates(t *testing.T) {
	assert.Equal(t, []string{"py -3", "python"}, defaultPythonCandidates("windows"))
	assert.Equal(t, []string{"python3", "python"}, defaultPythonCandidates("linux"))
	assert.Equal(t, []string{"python3", "python"}, defaultPythonCandidates("darwin"))
}

// TestLoad_NoConfigFile verifies that a project without botctl.yaml gets
// pure defaults, with ProjectDir resolved to an absolute path.
func TestLoad_NoConfigFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.ProjectDir))
	assert.Equal(t, "venv", cfg.VenvDir)
	assert.Equal(t, "bot.py", cfg.Entrypoint)
}

// TestLoad_WithConfigFile verifies that botctl.yaml overrides only the
// fields it names, leaving the rest at their defaults.
func TestLoad_WithConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
venv: .venv
entrypoint: main.py
python:
  - python3.12
  - python3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(yaml), 0644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, ".venv", cfg.VenvDir)
	assert.Equal(t, "main.py", cfg.Entrypoint)
	assert.Equal(t, []string{"python3.12", "python3"}, cfg.PythonCandidates)

	// Unnamed fields keep their defaults.
	assert.Equal(t, "requirements.txt", cfg.Requirements)
	assert.Equal(t, ".env", cfg.EnvFile)
}

// TestLoad_UnknownField verifies that typos in the config file are
// rejected rather than silently ignored.
func TestLoad_UnknownField(t *testing.T) {
	dir := t.TempDir()
	yaml := "entrypint: main.py\n" // deliberate typo
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(yaml), 0644))

	_, err := Load(dir, "")
	assert.Error(t, err)
}

// TestLoad_InvalidYAML verifies parse failures surface as errors.
func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(":\n  - ["), 0644))

	_, err := Load(dir, "")
	assert.Error(t, err)
}

// TestLoad_ExplicitPathMustExist verifies that --config pointing at a
// missing file is an error, unlike the optional default lookup.
func TestLoad_ExplicitPathMustExist(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir, filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

// TestValidate covers the rejection cases for hand-edited configs.
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty venv dir", func(c *Config) { c.VenvDir = "" }},
		{"empty requirements", func(c *Config) { c.Requirements = "" }},
		{"empty entrypoint", func(c *Config) { c.Entrypoint = "" }},
		{"no candidates", func(c *Config) { c.PythonCandidates = nil }},
		{"blank candidate", func(c *Config) { c.PythonCandidates = []string{"  "} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Default(t.TempDir()).Validate())
	})
}

// TestPathResolution verifies relative paths join onto ProjectDir while
// absolute paths pass through unchanged.
func TestPathResolution(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)

	assert.Equal(t, filepath.Join(dir, "venv"), cfg.VenvPath())
	assert.Equal(t, filepath.Join(dir, "requirements.txt"), cfg.RequirementsPath())
	assert.Equal(t, filepath.Join(dir, "bot.py"), cfg.EntrypointPath())
	assert.Equal(t, filepath.Join(dir, ".env"), cfg.EnvFilePath())
	assert.Equal(t, filepath.Join(dir, "credentials.json"), cfg.CredentialsPath())

	abs := filepath.Join(t.TempDir(), "elsewhere")
	cfg.VenvDir = abs
	assert.Equal(t, abs, cfg.VenvPath())
}
