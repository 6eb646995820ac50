package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Analysis.MaxDifferentialResults)
	assert.Equal(t, 0, cfg.Analysis.MaxCriticalFindings)
	assert.Equal(t, 3, cfg.Analysis.MinTermLength)
	assert.Equal(t, 0.5, cfg.Analysis.NeutralConfidence)
	assert.Equal(t, 50000, cfg.Analysis.MaxTextLength)
	assert.Equal(t, "https://api.fda.gov/drug/label.json", cfg.Sources.OpenFDA.BaseURL)
	assert.Contains(t, cfg.Sources.RxNorm.Drugs, "aspirin")
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xnosis.yaml")
	body := []byte(`
server:
  port: 9090
analysis:
  maxDifferentialResults: 3
  rulesPath: /tmp/rules.yaml
redis:
  enabled: true
`)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Analysis.MaxDifferentialResults)
	assert.Equal(t, "/tmp/rules.yaml", cfg.Analysis.RulesPath)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("XNOSIS_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadFileMissingExplicitPath(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidAnalysisSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  neutralConfidence: 1.5\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neutralConfidence")
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
