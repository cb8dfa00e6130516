// Package config defines the explicit configuration object for botctl.
//
// The original workflow relied entirely on ambient state: the current
// working directory, a hard-coded venv directory name, and fixed file
// names for the manifest and entrypoint. This package replaces that with
// a Config struct whose fields default to the historical names but can be
// overridden by a botctl.yaml file in the project directory.
//
// All relative paths in the configuration resolve against ProjectDir, so
// commands behave identically regardless of the process working directory.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/planilhador/botctl/internal/model"
)

// DefaultFileName is the optional per-project configuration file,
// looked up in ProjectDir unless an explicit path is given.
const DefaultFileName = "botctl.yaml"

// Config holds every path and interpreter setting the provisioning and
// launch commands need. A zero Config is not usable — construct one with
// Default or Load.
type Config struct {
	// ProjectDir is the absolute path of the bot project. Every relative
	// path below resolves against it. Not settable from YAML; it comes
	// from the --dir flag (default: current directory).
	ProjectDir string `yaml:"-"`

	// PythonCandidates is the ordered list of interpreter invocations to
	// try during discovery. Each entry is a whitespace-separated argv
	// prefix ("py -3", "python3"). First success wins.
	PythonCandidates []string `yaml:"python"`

	// VenvDir is the virtual environment directory, relative to ProjectDir.
	VenvDir string `yaml:"venv"`

	// Requirements is the pip manifest file name.
	Requirements string `yaml:"requirements"`

	// Entrypoint is the main program the run command executes inside
	// the virtual environment.
	Entrypoint string `yaml:"entrypoint"`

	// EntrypointArgs are extra arguments appended after the entrypoint.
	EntrypointArgs []string `yaml:"args"`

	// EnvFile is the dotenv file loaded into the bot's environment
	// before launch. Missing files are tolerated.
	EnvFile string `yaml:"envFile"`

	// CredentialsFile is the service-account credentials file the bot
	// reads at startup. Only the doctor command inspects it.
	CredentialsFile string `yaml:"credentials"`
}

// Default returns a Config populated with the historical defaults:
// a "venv" directory, "requirements.txt", "bot.py", ".env" and
// "credentials.json" next to each other in projectDir.
func Default(projectDir string) *Config {
	return &Config{
		ProjectDir:       projectDir,
		PythonCandidates: defaultPythonCandidates(runtime.GOOS),
		VenvDir:          "venv",
		Requirements:     "requirements.txt",
		Entrypoint:       "bot.py",
		EnvFile:          ".env",
		CredentialsFile:  "credentials.json",
	}
}

// defaultPythonCandidates returns the interpreter discovery order for the
// given GOOS. On Windows the py launcher is preferred because a plain
// "python" frequently resolves to the Microsoft Store stub; elsewhere
// "python3" is the conventional name with "python" as fallback.
//
// The goos parameter exists so both branches are testable on any platform.
func defaultPythonCandidates(goos string) []string {
	if goos == "windows" {
		return []string{"py -3", "python"}
	}
	return []string{"python3", "python"}
}

// Load builds the effective configuration for projectDir.
//
// Resolution order:
//  1. Start from Default(projectDir).
//  2. If overridePath is non-empty, that file must exist and parse.
//  3. Otherwise, merge botctl.yaml from projectDir if present; a missing
//     file simply means pure defaults.
//
// YAML fields that are absent keep their default values, so a config file
// only needs to name what it changes.
func Load(projectDir, overridePath string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to resolve project directory", err)
	}

	cfg := Default(abs)

	path := overridePath
	required := overridePath != ""
	if path == "" {
		path = filepath.Join(abs, DefaultFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			// No config file — defaults apply unchanged.
			return cfg, nil
		}
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	// Strict decoding surfaces typos in field names instead of silently
	// ignoring them, which matters for a file users hand-edit.
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		// io.EOF means the file is empty — defaults apply unchanged.
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid config file %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid configuration in %s", path), err)
	}
	return cfg, nil
}

// Validate checks the configuration for values that would make the
// provisioning or launch commands misbehave.
func (c *Config) Validate() error {
	if c.ProjectDir == "" {
		return fmt.Errorf("project directory must not be empty")
	}
	if c.VenvDir == "" {
		return fmt.Errorf("venv directory must not be empty")
	}
	if c.Requirements == "" {
		return fmt.Errorf("requirements manifest must not be empty")
	}
	if c.Entrypoint == "" {
		return fmt.Errorf("entrypoint must not be empty")
	}
	if len(c.PythonCandidates) == 0 {
		return fmt.Errorf("at least one python candidate is required")
	}
	for _, cand := range c.PythonCandidates {
		if len(strings.Fields(cand)) == 0 {
			return fmt.Errorf("python candidate must not be blank")
		}
	}
	return nil
}

// VenvPath returns the absolute path of the virtual environment directory.
func (c *Config) VenvPath() string {
	return c.resolve(c.VenvDir)
}

// RequirementsPath returns the absolute path of the pip manifest.
func (c *Config) RequirementsPath() string {
	return c.resolve(c.Requirements)
}

// EntrypointPath returns the absolute path of the bot's main program.
func (c *Config) EntrypointPath() string {
	return c.resolve(c.Entrypoint)
}

// EnvFilePath returns the absolute path of the dotenv file.
func (c *Config) EnvFilePath() string {
	return c.resolve(c.EnvFile)
}

// CredentialsPath returns the absolute path of the credentials file.
func (c *Config) CredentialsPath() string {
	return c.resolve(c.CredentialsFile)
}

// resolve returns p unchanged when absolute, otherwise joined onto
// ProjectDir. This is what makes the configuration independent of the
// process working directory.
func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectDir, p)
}
