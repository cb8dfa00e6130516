package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planilhador/botctl/internal/config"
)

// newTestCheckList builds a CheckList over a fresh temp project.
// The interpreter candidate is pointed at a name that cannot exist so
// the interpreter check is deterministic on any test machine.
func newTestCheckList(t *testing.T) (*CheckList, *config.Config) {
	t.Helper()

	cfg := config.Default(t.TempDir())
	cfg.PythonCandidates = []string{"definitely-not-a-real-python-3xyz"}
	return New(cfg), cfg
}

// materializeVenvMarker fabricates the activation script.
func materializeVenvMarker(t *testing.T, c *CheckList) {
	t.Helper()

	marker := c.vm.MarkerPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(marker), 0755))
	require.NoError(t, os.WriteFile(marker, []byte("# activate\n"), 0644))
}

// TestRun_EmptyProject verifies a bare directory produces the full set
// of findings: fail for the provisioning prerequisites, warn for the
// ambient files the bot validates itself.
func TestRun_EmptyProject(t *testing.T) {
	c, _ := newTestCheckList(t)

	results := c.Run(context.Background())
	require.Len(t, results, 6)

	bySeverity := map[string]Severity{}
	for _, r := range results {
		bySeverity[r.Name] = r.Severity
	}

	assert.Equal(t, SeverityFail, bySeverity["interpreter"])
	assert.Equal(t, SeverityFail, bySeverity["venv"])
	assert.Equal(t, SeverityFail, bySeverity["requirements"])
	assert.Equal(t, SeverityFail, bySeverity["entrypoint"])
	assert.Equal(t, SeverityWarn, bySeverity["envfile"])
	assert.Equal(t, SeverityWarn, bySeverity["credentials"])

	assert.True(t, HasFailures(results))
}

// TestCheckVenv verifies the venv check flips once the marker exists and
// that the failing detail points at setup.
func TestCheckVenv(t *testing.T) {
	c, _ := newTestCheckList(t)

	result := c.checkVenv()
	assert.Equal(t, SeverityFail, result.Severity)
	assert.Contains(t, result.Detail, "botctl setup")

	materializeVenvMarker(t, c)
	assert.Equal(t, SeverityOK, c.checkVenv().Severity)
}

// TestCheckManifestAndEntrypoint verifies the presence checks.
func TestCheckManifestAndEntrypoint(t *testing.T) {
	c, cfg := newTestCheckList(t)

	assert.Equal(t, SeverityFail, c.checkManifest().Severity)
	assert.Equal(t, SeverityFail, c.checkEntrypoint().Severity)

	require.NoError(t, os.WriteFile(cfg.RequirementsPath(), []byte("python-dotenv==1.0.1\n"), 0644))
	require.NoError(t, os.WriteFile(cfg.EntrypointPath(), []byte("print('bot')\n"), 0644))

	assert.Equal(t, SeverityOK, c.checkManifest().Severity)
	assert.Equal(t, SeverityOK, c.checkEntrypoint().Severity)
}

// TestCheckEnvFile verifies the dotenv check reports variable counts and
// stays warn-level for missing files.
func TestCheckEnvFile(t *testing.T) {
	c, cfg := newTestCheckList(t)

	missing := c.checkEnvFile()
	assert.Equal(t, SeverityWarn, missing.Severity)

	dotenv := "TELEGRAM_BOT_TOKEN=abc\nGEMINI_API_KEY=def\n"
	require.NoError(t, os.WriteFile(cfg.EnvFilePath(), []byte(dotenv), 0644))

	ok := c.checkEnvFile()
	assert.Equal(t, SeverityOK, ok.Severity)
	assert.Contains(t, ok.Detail, "2 variables")
}

// TestCheckCredentials verifies JSON validation, including tolerance for
// comments in a hand-annotated credentials file.
func TestCheckCredentials(t *testing.T) {
	c, cfg := newTestCheckList(t)

	assert.Equal(t, SeverityWarn, c.checkCredentials().Severity)

	t.Run("valid json", func(t *testing.T) {
		creds := `{"type": "service_account", "project_id": "planilhador"}`
		require.NoError(t, os.WriteFile(cfg.CredentialsPath(), []byte(creds), 0644))
		assert.Equal(t, SeverityOK, c.checkCredentials().Severity)
	})

	t.Run("commented json", func(t *testing.T) {
		creds := "{\n  // downloaded from the cloud console\n  \"type\": \"service_account\"\n}"
		require.NoError(t, os.WriteFile(cfg.CredentialsPath(), []byte(creds), 0644))
		assert.Equal(t, SeverityOK, c.checkCredentials().Severity)
	})

	t.Run("malformed", func(t *testing.T) {
		require.NoError(t, os.WriteFile(cfg.CredentialsPath(), []byte("not json"), 0644))
		assert.Equal(t, SeverityWarn, c.checkCredentials().Severity)
	})
}

// TestHasFailures verifies warn-only results do not count as failures.
func TestHasFailures(t *testing.T) {
	assert.False(t, HasFailures(nil))
	assert.False(t, HasFailures([]Result{
		{Name: "envfile", Severity: SeverityWarn},
		{Name: "venv", Severity: SeverityOK},
	}))
	assert.True(t, HasFailures([]Result{
		{Name: "venv", Severity: SeverityFail},
	}))
}
