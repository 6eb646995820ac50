package extraction

import "github.com/AmartyaKumar11/X-NOSIS/internal/terms"

type MatchedEntity struct {
	ID         int            `json:"id"`
	Text       string         `json:"text"`
	Category   terms.Category `json:"category"`
	StartPos   int            `json:"start_pos"`
	EndPos     int            `json:"end_pos"`
	Confidence float64        `json:"confidence"`
	Source     string         `json:"source"`
	ConceptID  string         `json:"concept_id,omitempty"`
}

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityModerate Severity = "MODERATE"
)

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityModerate:
		return 1
	default:
		return 0
	}
}

func (s Severity) IsValid() bool {
	return s.rank() > 0
}

type CriticalFinding struct {
	Text     string         `json:"text"`
	Category terms.Category `json:"category"`
	Severity Severity       `json:"severity"`
	Reason   string         `json:"reason"`
	StartPos int            `json:"start_pos"`
}

type DifferentialDiagnosis struct {
	Condition  string  `json:"condition"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type AggregatedResult struct {
	Entities          []MatchedEntity
	Categorized       map[terms.Category][]MatchedEntity
	Counts            map[terms.Category]int
	CriticalFindings  []CriticalFinding
	Differential      []DifferentialDiagnosis
	OverallConfidence float64
}

type EntitySummary struct {
	TotalEntities int `json:"total_entities"`
	Symptoms      int `json:"symptoms"`
	Conditions    int `json:"conditions"`
	Medications   int `json:"medications"`
	Other         int `json:"other"`
}

// ProcessingMetadata is measured by the caller; Assemble fills the derived
// fields.
type ProcessingMetadata struct {
	ProcessingTimeMs    float64  `json:"processing_time_ms"`
	TextLength          int      `json:"text_length"`
	WordCount           int      `json:"word_count"`
	SentenceCount       int      `json:"sentence_count"`
	Truncated           bool     `json:"truncated"`
	CorpusVersion       string   `json:"corpus_version"`
	CorpusSize          int      `json:"corpus_size"`
	EntitiesFound       int      `json:"entities_found"`
	CategoriesDetected  []string `json:"categories_detected"`
	HasCriticalFindings bool     `json:"has_critical_findings"`
}

type AnalysisResult struct {
	ExtractedText         string                             `json:"extracted_text"`
	MedicalEntities       []MatchedEntity                    `json:"medical_entities"`
	CategorizedEntities   map[terms.Category][]MatchedEntity `json:"categorized_entities"`
	EntityCounts          map[terms.Category]int             `json:"entity_counts"`
	EntitySummary         EntitySummary                      `json:"entity_summary"`
	Summary               string                             `json:"summary"`
	CriticalFindings      []CriticalFinding                  `json:"critical_findings"`
	DifferentialDiagnosis []DifferentialDiagnosis            `json:"differential_diagnosis"`
	ConfidenceScore       float64                            `json:"confidence_score"`
	ProcessingMetadata    ProcessingMetadata                 `json:"processing_metadata"`
}
