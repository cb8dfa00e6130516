// Package doctor evaluates preflight checks for everything the bot needs
// at runtime: a discoverable interpreter, the virtual environment, the
// dependency manifest, the entrypoint, and the ambient files the bot
// reads on startup (.env and credentials.json).
//
// Checks come in two severities. Fail-level findings block the bot from
// starting at all (the doctor command exits non-zero). Warn-level
// findings cover the ambient files: the bot validates those itself and
// degrades with its own log messages, so botctl only surfaces them as
// advance warning.
package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"

	"github.com/planilhador/botctl/internal/config"
	"github.com/planilhador/botctl/internal/python"
	"github.com/planilhador/botctl/internal/venv"
)

// Severity classifies a check result.
type Severity string

const (
	// SeverityOK means the check passed.
	SeverityOK Severity = "ok"

	// SeverityWarn means the bot can start but will likely complain
	// or degrade at runtime.
	SeverityWarn Severity = "warn"

	// SeverityFail means the bot cannot be provisioned or launched
	// until the finding is fixed.
	SeverityFail Severity = "fail"
)

// Result is the outcome of a single check.
type Result struct {
	// Name identifies the check (e.g., "interpreter", "venv").
	Name string `json:"name"`

	// Severity is ok, warn, or fail.
	Severity Severity `json:"severity"`

	// Detail is a human-readable explanation, including remediation
	// for non-ok results.
	Detail string `json:"detail"`
}

// CheckList runs the full set of preflight checks for a project.
type CheckList struct {
	cfg      *config.Config
	resolver *python.Resolver
	vm       *venv.Manager
}

// New creates a CheckList for the given configuration.
func New(cfg *config.Config) *CheckList {
	return &CheckList{
		cfg:      cfg,
		resolver: python.NewResolver(cfg.PythonCandidates),
		vm:       venv.NewManager(cfg),
	}
}

// Run evaluates every check in order and returns all results.
// Checks are independent: a failing check never short-circuits the rest,
// so the user sees the complete picture in one invocation.
func (c *CheckList) Run(ctx context.Context) []Result {
	return []Result{
		c.checkInterpreter(ctx),
		c.checkVenv(),
		c.checkManifest(),
		c.checkEntrypoint(),
		c.checkEnvFile(),
		c.checkCredentials(),
	}
}

// HasFailures reports whether any result is fail-level.
func HasFailures(results []Result) bool {
	for _, r := range results {
		if r.Severity == SeverityFail {
			return true
		}
	}
	return false
}

// checkInterpreter runs interpreter discovery across the configured
// candidates.
func (c *CheckList) checkInterpreter(ctx context.Context) Result {
	interp, err := c.resolver.Resolve(ctx)
	if err != nil {
		return Result{
			Name:     "interpreter",
			Severity: SeverityFail,
			Detail:   "no usable Python 3 found; install Python 3 and ensure it is on your PATH",
		}
	}
	return Result{
		Name:     "interpreter",
		Severity: SeverityOK,
		Detail:   interp.String(),
	}
}

// checkVenv verifies the activation marker exists.
func (c *CheckList) checkVenv() Result {
	if !c.vm.Exists() {
		return Result{
			Name:     "venv",
			Severity: SeverityFail,
			Detail:   fmt.Sprintf("virtual environment missing at %s — run `botctl setup`", c.cfg.VenvPath()),
		}
	}
	return Result{
		Name:     "venv",
		Severity: SeverityOK,
		Detail:   c.cfg.VenvPath(),
	}
}

// checkManifest verifies the requirements file exists.
func (c *CheckList) checkManifest() Result {
	path := c.cfg.RequirementsPath()
	if _, err := os.Stat(path); err != nil {
		return Result{
			Name:     "requirements",
			Severity: SeverityFail,
			Detail:   fmt.Sprintf("manifest not found at %s", path),
		}
	}
	return Result{Name: "requirements", Severity: SeverityOK, Detail: path}
}

// checkEntrypoint verifies the bot's main program exists.
func (c *CheckList) checkEntrypoint() Result {
	path := c.cfg.EntrypointPath()
	if _, err := os.Stat(path); err != nil {
		return Result{
			Name:     "entrypoint",
			Severity: SeverityFail,
			Detail:   fmt.Sprintf("entrypoint not found at %s", path),
		}
	}
	return Result{Name: "entrypoint", Severity: SeverityOK, Detail: path}
}

// checkEnvFile verifies the dotenv file exists and parses.
// Warn-level only: the bot loads .env itself and reports which settings
// are missing, so botctl just gives advance notice.
func (c *CheckList) checkEnvFile() Result {
	path := c.cfg.EnvFilePath()
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{
				Name:     "envfile",
				Severity: SeverityWarn,
				Detail:   fmt.Sprintf("%s not found; the bot will miss its settings", c.cfg.EnvFile),
			}
		}
		return Result{
			Name:     "envfile",
			Severity: SeverityWarn,
			Detail:   fmt.Sprintf("%s could not be parsed: %v", c.cfg.EnvFile, err),
		}
	}
	return Result{
		Name:     "envfile",
		Severity: SeverityOK,
		Detail:   fmt.Sprintf("%s (%d variables)", path, len(vars)),
	}
}

// checkCredentials verifies the service-account credentials file exists
// and contains a JSON object. Comments are stripped first (via jsonc) so
// a hand-annotated file still passes — the bot's own loader is the final
// authority on the contents.
func (c *CheckList) checkCredentials() Result {
	path := c.cfg.CredentialsPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{
			Name:     "credentials",
			Severity: SeverityWarn,
			Detail:   fmt.Sprintf("%s not found; spreadsheet access will fail", c.cfg.CredentialsFile),
		}
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &obj); err != nil {
		return Result{
			Name:     "credentials",
			Severity: SeverityWarn,
			Detail:   fmt.Sprintf("%s is not a valid JSON object: %v", c.cfg.CredentialsFile, err),
		}
	}
	return Result{Name: "credentials", Severity: SeverityOK, Detail: path}
}
