package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/extraction"
	"github.com/AmartyaKumar11/X-NOSIS/internal/sources"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Corpus: config.CorpusConfig{SeedStatic: true, BatchSize: 100},
		Analysis: config.AnalysisConfig{
			MaxDifferentialResults: 5,
			MinTermLength:          3,
			NeutralConfidence:      0.5,
			MaxTextLength:          50000,
		},
	}
}

func TestOpenStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "terms.db")

	store, err := OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadCorpusSeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(filepath.Join(t.TempDir(), "terms.db"))
	require.NoError(t, err)
	defer store.Close()

	registry := terms.NewRegistry(nil)
	snap, err := LoadCorpus(ctx, store, registry, testConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Greater(t, snap.Len(), 0)

	current, err := registry.Current()
	require.NoError(t, err)
	assert.Equal(t, snap.Version(), current.Version())

	// A second load keeps the existing rows.
	again, err := LoadCorpus(ctx, store, registry, testConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, snap.Version(), again.Version())
}

func TestLoadCorpusWithoutSeeding(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "terms.db"))
	require.NoError(t, err)
	defer store.Close()

	cfg := testConfig()
	cfg.Corpus.SeedStatic = false

	snap, err := LoadCorpus(context.Background(), store, terms.NewRegistry(nil), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
}

func TestNewEngineAppliesRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
criticalFindings:
  Night Sweats:
    severity: HIGH
    reason: Possible systemic infection
`), 0o644))

	cfg := testConfig().Analysis
	cfg.RulesPath = path
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	snap := terms.NewSnapshot([]terms.TermRecord{
		terms.NewTermRecord("night sweats", terms.CategorySymptom, "HPO", "HP:0000989", 0.94),
	})
	agg := engine.Extract("Reports night sweats for a week.", snap)
	require.Len(t, agg.CriticalFindings, 1)
	assert.Equal(t, extraction.SeverityHigh, agg.CriticalFindings[0].Severity)

	cfg.RulesPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewEngine(cfg)
	assert.Error(t, err)
}

func TestConfiguredSources(t *testing.T) {
	cfg := testConfig()
	cfg.Corpus.LoincPath = "/data/Loinc.csv"
	cfg.Sources.RxNorm = config.RxNormConfig{Enabled: true, BaseURL: "http://rxnav", Drugs: []string{"aspirin"}}
	cfg.Sources.FHIR = config.FHIRConfig{Enabled: true}

	srcs := ConfiguredSources(cfg)

	names := make([]string, 0, len(srcs))
	for _, s := range srcs {
		names = append(names, s.Name())
	}
	assert.Len(t, srcs, len(sources.DefaultStaticSources())+2)
	assert.Contains(t, names, "LOINC")
	assert.Contains(t, names, "RxNorm-API")
	assert.NotContains(t, names, "FHIR")
	assert.NotContains(t, names, "OpenFDA")
}
