package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/extraction"
	"github.com/AmartyaKumar11/X-NOSIS/internal/sources"
	"github.com/AmartyaKumar11/X-NOSIS/internal/storage/sqlite"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/config"
)

// OpenStore opens the SQLite corpus store at path and applies the schema.
func OpenStore(path string) (*sqlite.Client, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := sqlite.NewClient(path)
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// NewEngine builds the extraction engine from the analysis settings. Rules
// from a configured file are merged over the built-in set.
func NewEngine(cfg config.AnalysisConfig) (*extraction.Engine, error) {
	ecfg := extraction.DefaultEngineConfig()
	ecfg.MinTermLength = cfg.MinTermLength
	ecfg.Aggregator = extraction.AggregatorConfig{
		MaxDifferential:     cfg.MaxDifferentialResults,
		MaxCriticalFindings: cfg.MaxCriticalFindings,
		NeutralConfidence:   cfg.NeutralConfidence,
	}

	rules, err := extraction.LoadRuleSet(cfg.RulesPath)
	if err != nil {
		return nil, err
	}
	ecfg.Rules = rules

	return extraction.NewEngine(ecfg)
}

// ConfiguredSources returns the loaders enabled in cfg, curated lists first.
func ConfiguredSources(cfg *config.Config) []sources.Source {
	var out []sources.Source
	if cfg.Corpus.SeedStatic {
		out = append(out, sources.DefaultStaticSources()...)
	}
	if cfg.Corpus.LoincPath != "" {
		out = append(out, sources.NewLOINCSource(cfg.Corpus.LoincPath, cfg.Corpus.BatchSize))
	}

	s := cfg.Sources
	if s.OpenFDA.Enabled {
		out = append(out, sources.NewOpenFDASource(sources.OpenFDAConfig{
			BaseURL:  s.OpenFDA.BaseURL,
			PageSize: s.OpenFDA.PageSize,
			MaxPages: s.OpenFDA.MaxPages,
			Timeout:  seconds(s.OpenFDA.TimeoutSec),
		}))
	}
	if s.RxNorm.Enabled {
		out = append(out, sources.NewRxNormSource(sources.RxNormConfig{
			BaseURL: s.RxNorm.BaseURL,
			Drugs:   s.RxNorm.Drugs,
			Timeout: seconds(s.RxNorm.TimeoutSec),
		}))
	}
	if s.FHIR.Enabled && s.FHIR.BaseURL != "" {
		out = append(out, sources.NewFHIRSource(sources.FHIRConfig{
			BaseURL:  s.FHIR.BaseURL,
			PageSize: s.FHIR.PageSize,
			MaxPages: s.FHIR.MaxPages,
			Timeout:  seconds(s.FHIR.TimeoutSec),
		}))
	}
	return out
}

// LoadCorpus publishes the stored corpus. An empty store is seeded from the
// curated lists first when seeding is enabled.
func LoadCorpus(ctx context.Context, store *sqlite.Client, registry *terms.Registry, cfg *config.Config, log *zap.Logger) (*terms.Snapshot, error) {
	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if stats.TotalTerms == 0 && cfg.Corpus.SeedStatic {
		log.Info("Corpus store is empty, seeding curated lists")
		if _, err := sources.NewPopulator(store, registry, log).Run(ctx, sources.DefaultStaticSources()); err != nil {
			return nil, err
		}
	}

	return registry.Reload(ctx, store)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
