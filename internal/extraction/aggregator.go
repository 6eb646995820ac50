package extraction

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

const (
	DefaultMaxDifferential   = 5
	DefaultNeutralConfidence = 0.5
)

type AggregatorConfig struct {
	MaxDifferential     int
	MaxCriticalFindings int
	NeutralConfidence   float64
}

func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		MaxDifferential:   DefaultMaxDifferential,
		NeutralConfidence: DefaultNeutralConfidence,
	}
}

// Aggregator deduplicates and enriches matcher output. It is immutable after
// construction.
type Aggregator struct {
	rules RuleSet
	cfg   AggregatorConfig
}

func NewAggregator(rules RuleSet, cfg AggregatorConfig) *Aggregator {
	if cfg.MaxDifferential <= 0 {
		cfg.MaxDifferential = DefaultMaxDifferential
	}
	if cfg.MaxCriticalFindings < 0 {
		cfg.MaxCriticalFindings = 0
	}
	cfg.NeutralConfidence = clamp01(cfg.NeutralConfidence)
	if rules.QualifierWindow <= 0 {
		rules.QualifierWindow = DefaultQualifierWindow
	}
	return &Aggregator{rules: rules, cfg: cfg}
}

type survivor struct {
	entity  MatchedEntity
	order   int
	maxConf float64
}

func (a *Aggregator) Aggregate(text string, matches []MatchedEntity) AggregatedResult {
	runes := []rune(text)
	textLen := len(runes)

	byKey := make(map[string]*survivor)
	var survivors []*survivor
	for i, m := range matches {
		if !validMatch(m, textLen) {
			continue
		}
		m.Confidence = clamp01(m.Confidence)
		key := dedupKey(m)
		s, ok := byKey[key]
		if !ok {
			s = &survivor{entity: m, order: i, maxConf: m.Confidence}
			byKey[key] = s
			survivors = append(survivors, s)
			continue
		}
		if m.Confidence > s.maxConf {
			s.maxConf = m.Confidence
		}
		if m.StartPos < s.entity.StartPos || (m.StartPos == s.entity.StartPos && m.Confidence > s.entity.Confidence) {
			s.entity = m
			s.order = i
		}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		if survivors[i].entity.StartPos != survivors[j].entity.StartPos {
			return survivors[i].entity.StartPos < survivors[j].entity.StartPos
		}
		return survivors[i].order < survivors[j].order
	})

	result := AggregatedResult{
		Entities:          make([]MatchedEntity, 0, len(survivors)),
		Categorized:       make(map[terms.Category][]MatchedEntity),
		Counts:            make(map[terms.Category]int),
		CriticalFindings:  []CriticalFinding{},
		Differential:      []DifferentialDiagnosis{},
		OverallConfidence: a.cfg.NeutralConfidence,
	}

	sum := 0.0
	for _, s := range survivors {
		e := s.entity
		e.Confidence = s.maxConf
		result.Entities = append(result.Entities, e)
		result.Categorized[e.Category] = append(result.Categorized[e.Category], e)
		result.Counts[e.Category]++
		sum += e.Confidence
	}
	if n := len(result.Entities); n > 0 {
		result.OverallConfidence = sum / float64(n)
	}

	result.CriticalFindings = a.criticalFindings(runes, result.Entities)
	result.Differential = a.differential(result.Entities)
	return result
}

func validMatch(m MatchedEntity, textLen int) bool {
	if strings.TrimSpace(m.Text) == "" || !m.Category.IsValid() {
		return false
	}
	if m.StartPos < 0 || m.EndPos <= m.StartPos || m.EndPos > textLen {
		return false
	}
	return utf8.RuneCountInString(m.Text) == m.EndPos-m.StartPos
}

func dedupKey(m MatchedEntity) string {
	return terms.Normalize(m.Text) + "\x00" + string(m.Category)
}

func (a *Aggregator) criticalFindings(runes []rune, entities []MatchedEntity) []CriticalFinding {
	findings := []CriticalFinding{}
	seen := make(map[string]bool)
	for _, e := range entities {
		term := terms.Normalize(e.Text)
		rule, ok := a.rules.CriticalFindings[term]
		if !ok || seen[term] {
			continue
		}
		if rule.RequiresQualifier && !a.hasQualifier(runes, e.EndPos) {
			continue
		}
		seen[term] = true
		findings = append(findings, CriticalFinding{
			Text:     e.Text,
			Category: e.Category,
			Severity: rule.Severity,
			Reason:   rule.Reason,
			StartPos: e.StartPos,
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity.rank() != findings[j].Severity.rank() {
			return findings[i].Severity.rank() > findings[j].Severity.rank()
		}
		return findings[i].StartPos < findings[j].StartPos
	})

	if a.cfg.MaxCriticalFindings > 0 && len(findings) > a.cfg.MaxCriticalFindings {
		findings = findings[:a.cfg.MaxCriticalFindings]
	}
	return findings
}

func (a *Aggregator) hasQualifier(runes []rune, end int) bool {
	stop := end + a.rules.QualifierWindow
	if stop > len(runes) {
		stop = len(runes)
	}
	if end >= stop {
		return false
	}
	return qualifierPattern.MatchString(terms.LowerRunes(string(runes[end:stop])))
}

func (a *Aggregator) differential(entities []MatchedEntity) []DifferentialDiagnosis {
	best := make(map[string]DifferentialDiagnosis)
	for _, e := range entities {
		if e.Category != terms.CategorySymptom {
			continue
		}
		for _, rule := range a.rules.Differentials[terms.Normalize(e.Text)] {
			key := strings.ToLower(strings.TrimSpace(rule.Condition))
			if key == "" {
				continue
			}
			conf := clamp01(rule.Confidence)
			if prev, ok := best[key]; ok && prev.Confidence >= conf {
				continue
			}
			best[key] = DifferentialDiagnosis{
				Condition:  rule.Condition,
				Confidence: conf,
				Reasoning:  rule.Reasoning,
			}
		}
	}

	out := make([]DifferentialDiagnosis, 0, len(best))
	for _, d := range best {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return strings.ToLower(out[i].Condition) < strings.ToLower(out[j].Condition)
	})

	if len(out) > a.cfg.MaxDifferential {
		out = out[:a.cfg.MaxDifferential]
	}
	return out
}
