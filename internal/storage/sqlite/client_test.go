package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmartyaKumar11/X-NOSIS/internal/storage/models"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(filepath.Join(t.TempDir(), "terms.db"))
	require.NoError(t, err)
	require.NoError(t, c.InitSchema())
	t.Cleanup(func() { c.Close() })
	return c
}

func seedTerms() []terms.TermRecord {
	return []terms.TermRecord{
		{Term: "Chest Pain", Category: terms.CategorySymptom, Source: "HPO", ConceptID: "HP:0100749", Confidence: 0.94},
		{Term: "chest pain", Category: terms.CategorySymptom, Source: "HPO", Confidence: 0.94},
		{Term: "chest pain", Category: terms.CategorySymptom, Source: "Medical-Common", Confidence: 0.88},
		{Term: "chest x-ray", Category: terms.CategoryProcedure, Source: "SNOMED-CT", Confidence: 0.96},
		{Term: "aspirin", Category: terms.CategoryMedication, Source: "RxNorm", ConceptID: "1191", Confidence: 0.95},
		{Term: "", Category: terms.CategorySymptom, Source: "HPO", Confidence: 0.9},
		{Term: "bogus", Category: "NOPE", Source: "HPO", Confidence: 0.9},
	}
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	c := newTestClient(t)
	assert.NoError(t, c.InitSchema())
	assert.NoError(t, c.Ping(context.Background()))
}

func TestInsertTermsIgnoresDuplicatesAndInvalid(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	inserted, skipped, err := c.InsertTerms(ctx, seedTerms())
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)
	assert.Equal(t, 2, skipped)

	inserted, _, err = c.InsertTerms(ctx, seedTerms())
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	all, err := c.AllTerms(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSearchTermsByPrefix(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	_, _, err := c.InsertTerms(ctx, seedTerms())
	require.NoError(t, err)

	got, err := c.SearchTerms(ctx, "CHEST", "", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "chest pain", got[0].Term)
	assert.Equal(t, "chest x-ray", got[2].Term)

	got, err = c.SearchTerms(ctx, "chest", terms.CategoryProcedure, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = c.SearchTerms(ctx, "%", "", 10)
	require.NoError(t, err)
	assert.Empty(t, got, "wildcards are escaped")

	got, err = c.SearchTerms(ctx, "  ", "", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClearSourceAndStats(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	_, _, err := c.InsertTerms(ctx, seedTerms())
	require.NoError(t, err)

	require.NoError(t, c.UpsertSourceMetadata(ctx, models.SourceMetadata{
		Source: "HPO", TotalTerms: 1, Version: "static", LastUpdated: time.Now(),
	}))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalTerms)
	assert.Equal(t, 2, stats.ByCategory["SYMPTOM"])
	assert.Equal(t, 1, stats.BySource["RxNorm"])
	require.Len(t, stats.Sources, 1)
	assert.Equal(t, "static", stats.Sources[0].Version)

	n, _, _, err := c.ReplaceSource(ctx, "HPO", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err := c.CountSource(ctx, "HPO")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestReplaceSourceSwapsRowsAtomically(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	_, _, err := c.InsertTerms(ctx, seedTerms())
	require.NoError(t, err)

	deleted, inserted, skipped, err := c.ReplaceSource(ctx, "RxNorm", []terms.TermRecord{
		{Term: "ibuprofen", Category: terms.CategoryMedication, Source: "RxNorm", Confidence: 0.95},
		{Term: "metformin", Category: terms.CategoryMedication, Source: "RxNorm", Confidence: 0.95},
		{Term: "", Category: terms.CategoryMedication, Source: "RxNorm", Confidence: 0.95},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 1, skipped)

	count, err := c.CountSource(ctx, "RxNorm")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// A failing insert rolls back the delete.
	_, err = c.db.Exec(`
		CREATE TRIGGER reject_naproxen BEFORE INSERT ON medical_terms
		WHEN NEW.term = 'naproxen'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END;
	`)
	require.NoError(t, err)
	_, _, _, err = c.ReplaceSource(ctx, "RxNorm", []terms.TermRecord{
		{Term: "warfarin", Category: terms.CategoryMedication, Source: "RxNorm", Confidence: 0.95},
		{Term: "naproxen", Category: terms.CategoryMedication, Source: "RxNorm", Confidence: 0.95},
	})
	require.Error(t, err)

	count, err = c.CountSource(ctx, "RxNorm")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAnalysisRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a1", "a2", "a3"} {
		patient := "p1"
		if id == "a3" {
			patient = ""
		}
		require.NoError(t, c.InsertAnalysis(ctx, &models.AnalysisRecord{
			ID:              id,
			PatientID:       patient,
			TextFingerprint: "fp-" + id,
			Summary:         "Patient presents with fever.",
			EntityCount:     i + 1,
			Confidence:      0.8,
			CorpusVersion:   "v1",
			Result:          json.RawMessage(`{"summary":"Patient presents with fever."}`),
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := c.GetAnalysis(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.PatientID)
	assert.Equal(t, 2, got.EntityCount)
	assert.JSONEq(t, `{"summary":"Patient presents with fever."}`, string(got.Result))
	assert.True(t, base.Add(time.Minute).Equal(got.CreatedAt))

	_, err = c.GetAnalysis(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := c.ListAnalyses(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].ID)
	assert.Nil(t, list[0].Result)

	all, err := c.ListAnalyses(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "a3", all[0].ID)
}

func TestClientImplementsLoader(t *testing.T) {
	var _ terms.Loader = (*Client)(nil)

	c := newTestClient(t)
	_, _, err := c.InsertTerms(context.Background(), seedTerms())
	require.NoError(t, err)

	reg := terms.NewRegistry(nil)
	snap, err := reg.Reload(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Len())
}
