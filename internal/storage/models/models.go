package models

import (
	"encoding/json"
	"time"
)

type AnalysisRecord struct {
	ID               string          `json:"id"`
	PatientID        string          `json:"patient_id,omitempty"`
	TextFingerprint  string          `json:"text_fingerprint"`
	Summary          string          `json:"summary"`
	EntityCount      int             `json:"entity_count"`
	CriticalCount    int             `json:"critical_count"`
	Confidence       float64         `json:"confidence"`
	CorpusVersion    string          `json:"corpus_version"`
	ProcessingTimeMs float64         `json:"processing_time_ms"`
	Result           json.RawMessage `json:"result,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type SourceMetadata struct {
	Source      string    `json:"source"`
	TotalTerms  int       `json:"total_terms"`
	Version     string    `json:"version"`
	LastUpdated time.Time `json:"last_updated"`
}

type CorpusStats struct {
	TotalTerms int              `json:"total_terms"`
	ByCategory map[string]int   `json:"by_category"`
	BySource   map[string]int   `json:"by_source"`
	Sources    []SourceMetadata `json:"sources"`
}
