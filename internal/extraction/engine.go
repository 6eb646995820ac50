package extraction

import (
	"golang.org/x/text/unicode/norm"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

type EngineConfig struct {
	PatternSets   []PatternSet
	Rules         RuleSet
	MinTermLength int
	Aggregator    AggregatorConfig
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PatternSets:   DefaultPatternSets(),
		Rules:         DefaultRuleSet(),
		MinTermLength: DefaultMinTermLength,
		Aggregator:    DefaultAggregatorConfig(),
	}
}

// Engine wires the matcher and aggregator together. Analyses share no
// mutable state, so one Engine serves concurrent callers.
type Engine struct {
	matcher    *Matcher
	aggregator *Aggregator
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	matcher, err := NewMatcher(cfg.PatternSets, cfg.MinTermLength)
	if err != nil {
		return nil, err
	}
	return &Engine{
		matcher:    matcher,
		aggregator: NewAggregator(cfg.Rules, cfg.Aggregator),
	}, nil
}

// Match, Extract and Analyze fold text to NFKC before matching, the same
// form the corpus is normalized to. Offsets and entity text refer to the
// folded string, which is unchanged for text already in NFKC.
func (e *Engine) Match(text string, view terms.View) []MatchedEntity {
	return e.matcher.Match(norm.NFKC.String(text), view)
}

func (e *Engine) Extract(text string, view terms.View) AggregatedResult {
	return e.extract(norm.NFKC.String(text), view)
}

func (e *Engine) Analyze(text string, view terms.View, meta ProcessingMetadata) *AnalysisResult {
	text = norm.NFKC.String(text)
	return Assemble(text, e.extract(text, view), meta)
}

func (e *Engine) extract(text string, view terms.View) AggregatedResult {
	return e.aggregator.Aggregate(text, e.matcher.Match(text, view))
}
