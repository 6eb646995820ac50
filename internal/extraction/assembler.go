package extraction

import (
	"strings"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

const (
	summaryLimit   = 3
	DefaultSummary = "No significant medical entities identified in the provided text."
)

// Assemble builds the final result. It performs no I/O and reads no clock;
// timing and text statistics arrive through meta.
func Assemble(text string, agg AggregatedResult, meta ProcessingMetadata) *AnalysisResult {
	entities := append([]MatchedEntity{}, agg.Entities...)

	categorized := make(map[terms.Category][]MatchedEntity, len(agg.Categorized))
	for c, list := range agg.Categorized {
		categorized[c] = append([]MatchedEntity{}, list...)
	}
	counts := make(map[terms.Category]int, len(agg.Counts))
	for c, n := range agg.Counts {
		counts[c] = n
	}

	summary := EntitySummary{
		TotalEntities: len(entities),
		Symptoms:      counts[terms.CategorySymptom],
		Conditions:    counts[terms.CategoryCondition],
		Medications:   counts[terms.CategoryMedication],
	}
	summary.Other = summary.TotalEntities - summary.Symptoms - summary.Conditions - summary.Medications
	if summary.Other < 0 {
		summary.Other = 0
	}

	meta.EntitiesFound = len(entities)
	meta.CategoriesDetected = []string{}
	for _, c := range terms.AllCategories() {
		if counts[c] > 0 {
			meta.CategoriesDetected = append(meta.CategoriesDetected, string(c))
		}
	}
	meta.HasCriticalFindings = len(agg.CriticalFindings) > 0

	return &AnalysisResult{
		ExtractedText:         text,
		MedicalEntities:       entities,
		CategorizedEntities:   categorized,
		EntityCounts:          counts,
		EntitySummary:         summary,
		Summary:               clinicalSummary(entities),
		CriticalFindings:      append([]CriticalFinding{}, agg.CriticalFindings...),
		DifferentialDiagnosis: append([]DifferentialDiagnosis{}, agg.Differential...),
		ConfidenceScore:       agg.OverallConfidence,
		ProcessingMetadata:    meta,
	}
}

func clinicalSummary(entities []MatchedEntity) string {
	var symptoms, conditions, medications []string
	for _, e := range entities {
		switch e.Category {
		case terms.CategorySymptom:
			symptoms = appendLimited(symptoms, e.Text)
		case terms.CategoryCondition:
			conditions = appendLimited(conditions, e.Text)
		case terms.CategoryMedication:
			medications = appendLimited(medications, e.Text)
		}
	}

	var parts []string
	if len(symptoms) > 0 {
		parts = append(parts, "Patient presents with "+strings.Join(symptoms, ", ")+".")
	}
	if len(conditions) > 0 {
		parts = append(parts, "Medical history includes "+strings.Join(conditions, ", ")+".")
	}
	if len(medications) > 0 {
		parts = append(parts, "Current medications: "+strings.Join(medications, ", ")+".")
	}
	if len(parts) == 0 {
		return DefaultSummary
	}
	return strings.Join(parts, " ")
}

func appendLimited(list []string, s string) []string {
	if len(list) >= summaryLimit {
		return list
	}
	return append(list, s)
}
