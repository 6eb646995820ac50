package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultEngineConfig())
	require.NoError(t, err)
	return e
}

var sampleNotes = []string{
	"Patient has chest pain and takes aspirin.",
	"58yo male with hypertension and type 2 diabetes. Troponin elevated at 2.3. Started heparin, aspirin and atorvastatin.",
	"Complains of headache, fever and cough for three days. Temperature 38.9. No chest pain.",
	"diabetes... diabetes",
	"Shortness of breath, palpitations, dizziness, fatigue, nausea. Heart rate 120. History of atrial fibrillation on warfarin.",
	"Catheter inserted. Allergic to cat dander. COVID-19 positive.",
	"",
}

func TestScenarioSymptomAndMedication(t *testing.T) {
	res := newTestEngine(t).Analyze("Patient has chest pain and takes aspirin.", testSnapshot(), ProcessingMetadata{})

	assert.NotEmpty(t, find(res.MedicalEntities, "chest pain", terms.CategorySymptom))
	assert.NotEmpty(t, find(res.MedicalEntities, "aspirin", terms.CategoryMedication))
	assert.Greater(t, res.ConfidenceScore, 0.5)
}

func TestScenarioEmptyInput(t *testing.T) {
	var res *AnalysisResult
	assert.NotPanics(t, func() {
		res = newTestEngine(t).Analyze("", testSnapshot(), ProcessingMetadata{})
	})
	assert.Empty(t, res.MedicalEntities)
	assert.Equal(t, 0.5, res.ConfidenceScore)
	assert.Equal(t, DefaultSummary, res.Summary)
}

func TestScenarioCriticalFinding(t *testing.T) {
	res := newTestEngine(t).Analyze("Troponin ordered; rule out myocardial infarction.", testSnapshot(), ProcessingMetadata{})

	var critical bool
	for _, f := range res.CriticalFindings {
		if f.Severity == SeverityCritical {
			critical = true
		}
	}
	assert.True(t, critical)
	assert.True(t, res.ProcessingMetadata.HasCriticalFindings)
}

func TestScenarioDifferentialForChestPain(t *testing.T) {
	res := newTestEngine(t).Analyze("chest pain", nil, ProcessingMetadata{})

	require.NotEmpty(t, res.DifferentialDiagnosis)
	assert.Equal(t, "Myocardial Infarction", res.DifferentialDiagnosis[0].Condition)
	for i := 1; i < len(res.DifferentialDiagnosis); i++ {
		assert.GreaterOrEqual(t, res.DifferentialDiagnosis[i-1].Confidence, res.DifferentialDiagnosis[i].Confidence)
	}
}

func TestScenarioLineWrappedNote(t *testing.T) {
	res := newTestEngine(t).Analyze("Patient reports chest\npain and shortness of\nbreath.", nil, ProcessingMetadata{})

	var findings []string
	for _, f := range res.CriticalFindings {
		findings = append(findings, terms.Normalize(f.Text))
	}
	assert.Contains(t, findings, "chest pain")
	assert.Contains(t, findings, "shortness of breath")
	require.NotEmpty(t, res.DifferentialDiagnosis)
}

func TestAnalyzeFoldsCompatibilityForms(t *testing.T) {
	e := newTestEngine(t)
	res := e.Analyze("Ｐａｔｉｅｎｔ ｈａｓ ｃｈｅｓｔ ｐａｉｎ", testSnapshot(), ProcessingMetadata{})

	hits := find(res.MedicalEntities, "chest pain", terms.CategorySymptom)
	require.Len(t, hits, 1)
	assert.Equal(t, 12, hits[0].StartPos)
	assert.Equal(t, 22, hits[0].EndPos)

	assert.Equal(t, e.Extract("ｃｈｅｓｔ ｐａｉｎ", nil), e.Extract("chest pain", nil))
}

func TestScenarioRepeatedTermDeduplicated(t *testing.T) {
	text := "Known diabetes. Family history notable for diabetes."
	res := newTestEngine(t).Analyze(text, nil, ProcessingMetadata{})

	var hits []MatchedEntity
	for _, e := range res.MedicalEntities {
		if strings.EqualFold(e.Text, "diabetes") && e.Category == terms.CategoryCondition {
			hits = append(hits, e)
		}
	}
	require.Len(t, hits, 1)
	assert.Equal(t, strings.Index(text, "diabetes"), hits[0].StartPos)
}

func TestSequentialCallsShareNoState(t *testing.T) {
	e := newTestEngine(t)
	snap := testSnapshot()

	first := e.Match("chest pain and fever", snap)
	second := e.Match("aspirin and metformin", snap)
	require.NotEmpty(t, first)
	require.NotEmpty(t, second)
	assert.Equal(t, 1, first[0].ID)
	assert.Equal(t, 1, second[0].ID)

	again := e.Match("chest pain and fever", snap)
	assert.Equal(t, first, again)
}

func TestExtractProperties(t *testing.T) {
	e := newTestEngine(t)
	snap := testSnapshot()

	for _, text := range sampleNotes {
		t.Run(text, func(t *testing.T) {
			a := e.Extract(text, snap)
			b := e.Extract(text, snap)
			assert.Equal(t, a, b, "idempotent")

			seen := map[string]bool{}
			runes := []rune(text)
			total := 0
			for i, ent := range a.Entities {
				key := terms.Normalize(ent.Text) + "|" + string(ent.Category)
				assert.False(t, seen[key], "duplicate %s", key)
				seen[key] = true

				if i > 0 {
					assert.LessOrEqual(t, a.Entities[i-1].StartPos, ent.StartPos)
				}
				assert.GreaterOrEqual(t, ent.Confidence, 0.0)
				assert.LessOrEqual(t, ent.Confidence, 1.0)
				assert.Equal(t, ent.Text, string(runes[ent.StartPos:ent.EndPos]))
			}
			for _, n := range a.Counts {
				total += n
			}
			assert.Equal(t, len(a.Entities), total)
			assert.GreaterOrEqual(t, a.OverallConfidence, 0.0)
			assert.LessOrEqual(t, a.OverallConfidence, 1.0)
			assert.LessOrEqual(t, len(a.Differential), DefaultMaxDifferential)

			res := Assemble(text, a, ProcessingMetadata{})
			s := res.EntitySummary
			assert.Equal(t, s.TotalEntities, s.Symptoms+s.Conditions+s.Medications+s.Other)
		})
	}
}

func TestEngineConcurrentUse(t *testing.T) {
	e := newTestEngine(t)
	snap := testSnapshot()
	want := e.Extract(sampleNotes[1], snap)

	done := make(chan AggregatedResult, 16)
	for i := 0; i < 16; i++ {
		go func() { done <- e.Extract(sampleNotes[1], snap) }()
	}
	for i := 0; i < 16; i++ {
		assert.Equal(t, want, <-done)
	}
}

func TestNewEngineRejectsInvalidRules(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Rules.CriticalFindings["x-ray"] = CriticalRule{Severity: "URGENT"}
	_, err := NewEngine(cfg)
	assert.Error(t, err)
}
