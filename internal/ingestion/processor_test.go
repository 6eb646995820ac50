package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmartyaKumar11/X-NOSIS/internal/extraction"
	"github.com/AmartyaKumar11/X-NOSIS/internal/storage/models"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

type fakeStore struct {
	mu      sync.Mutex
	records []*models.AnalysisRecord
	err     error
}

func (s *fakeStore) InsertAnalysis(_ context.Context, r *models.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, r)
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func (c *fakeCache) GetAnalysis(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *fakeCache) SetAnalysis(_ context.Context, key string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if c.data == nil {
		c.data = map[string][]byte{}
	}
	c.data[key] = b
	c.sets++
	return nil
}

type fakeGraph struct {
	ids []string
	err error
}

func (g *fakeGraph) PublishAnalysis(_ context.Context, id string, _ *extraction.AnalysisResult) error {
	g.ids = append(g.ids, id)
	return g.err
}

func newTestRegistry() *terms.Registry {
	r := terms.NewRegistry(nil)
	r.Publish(terms.NewSnapshot([]terms.TermRecord{
		terms.NewTermRecord("chest pain", terms.CategorySymptom, "HPO", "HP:0100749", 0.94),
		terms.NewTermRecord("shortness of breath", terms.CategorySymptom, "HPO", "HP:0002094", 0.94),
		terms.NewTermRecord("hypertension", terms.CategoryCondition, "ICD-10", "I10", 0.94),
		terms.NewTermRecord("aspirin", terms.CategoryMedication, "RxNorm", "1191", 0.95),
	}))
	return r
}

func newTestProcessor(t *testing.T, corpus Corpus, cfg Config, opts ...Option) *Processor {
	t.Helper()
	engine, err := extraction.NewEngine(extraction.DefaultEngineConfig())
	require.NoError(t, err)
	return NewProcessor(engine, corpus, cfg, opts...)
}

const note = "Patient presents with chest pain and shortness of breath. History of hypertension. Takes aspirin daily."

func TestAnalyzePersistsAndPublishes(t *testing.T) {
	store := &fakeStore{}
	graph := &fakeGraph{}
	p := newTestProcessor(t, newTestRegistry(), Config{PersistResults: true}, WithStore(store), WithGraph(graph))

	out, err := p.Analyze(context.Background(), Input{Text: note, PatientID: "p-1"})
	require.NoError(t, err)

	assert.NotEmpty(t, out.AnalysisID)
	assert.False(t, out.Cached)
	res := out.Result
	assert.Equal(t, note, res.ExtractedText)
	assert.NotEmpty(t, res.MedicalEntities)
	assert.NotEmpty(t, res.CriticalFindings)
	assert.Equal(t, len([]rune(note)), res.ProcessingMetadata.TextLength)
	assert.Equal(t, 3, res.ProcessingMetadata.SentenceCount)
	assert.Greater(t, res.ProcessingMetadata.WordCount, 10)
	assert.Equal(t, 4, res.ProcessingMetadata.CorpusSize)
	assert.NotEmpty(t, res.ProcessingMetadata.CorpusVersion)

	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, out.AnalysisID, rec.ID)
	assert.Equal(t, "p-1", rec.PatientID)
	assert.Equal(t, len(res.MedicalEntities), rec.EntityCount)

	var stored extraction.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Result, &stored))
	assert.Equal(t, res.Summary, stored.Summary)

	assert.Equal(t, []string{out.AnalysisID}, graph.ids)
}

func TestAnalyzeRejectsEmptyInput(t *testing.T) {
	p := newTestProcessor(t, newTestRegistry(), Config{})

	for _, text := range []string{"", "   \n\t ", "<html><body><script>x()</script></body></html>"} {
		ct := ContentTypePlain
		if strings.HasPrefix(text, "<html") {
			ct = ContentTypeHTML
		}
		_, err := p.Analyze(context.Background(), Input{Text: text, ContentType: ct})
		assert.ErrorIs(t, err, ErrEmptyInput, "%q", text)
	}
}

func TestAnalyzeWithoutCorpusFallsBackToPatterns(t *testing.T) {
	p := newTestProcessor(t, terms.NewRegistry(nil), Config{})

	out, err := p.Analyze(context.Background(), Input{Text: "Severe headache with fever."})
	require.NoError(t, err)
	assert.Empty(t, out.Result.ProcessingMetadata.CorpusVersion)
	for _, e := range out.Result.MedicalEntities {
		assert.Equal(t, "Pattern", e.Source)
	}
	assert.NotEmpty(t, out.Result.MedicalEntities)
}

func TestAnalyzeTruncatesLongInput(t *testing.T) {
	p := newTestProcessor(t, newTestRegistry(), Config{MaxTextLength: 20})

	out, err := p.Analyze(context.Background(), Input{Text: "chest pain " + strings.Repeat("é", 100)})
	require.NoError(t, err)
	assert.True(t, out.Result.ProcessingMetadata.Truncated)
	assert.Equal(t, 20, out.Result.ProcessingMetadata.TextLength)
	assert.Equal(t, 20, len([]rune(out.Result.ExtractedText)))
}

func TestAnalyzeDecodesHTML(t *testing.T) {
	p := newTestProcessor(t, newTestRegistry(), Config{})

	html := `<html><head><style>p{}</style></head><body><p>Chest pain</p><p>since morning</p></body></html>`
	out, err := p.Analyze(context.Background(), Input{Text: html, ContentType: ContentTypeHTML})
	require.NoError(t, err)
	assert.Equal(t, "Chest pain since morning", out.Result.ExtractedText)

	var found bool
	for _, e := range out.Result.MedicalEntities {
		if e.Text == "Chest pain" {
			found = true
			assert.Equal(t, 0, e.StartPos)
		}
	}
	assert.True(t, found)
}

func TestAnalyzeServesRepeatFromCache(t *testing.T) {
	cache := &fakeCache{}
	store := &fakeStore{}
	p := newTestProcessor(t, newTestRegistry(), Config{PersistResults: true}, WithCache(cache), WithStore(store))

	first, err := p.Analyze(context.Background(), Input{Text: note})
	require.NoError(t, err)
	second, err := p.Analyze(context.Background(), Input{Text: note})
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.AnalysisID, second.AnalysisID)
	assert.Equal(t, first.Result.MedicalEntities, second.Result.MedicalEntities)
	assert.Len(t, store.records, 1)
	assert.Equal(t, 1, cache.sets)

	other, err := p.Analyze(context.Background(), Input{Text: note, PatientID: "p-2"})
	require.NoError(t, err)
	assert.False(t, other.Cached)
}

func TestAnalyzeStoreFailureIsReturned(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	p := newTestProcessor(t, newTestRegistry(), Config{PersistResults: true}, WithStore(store))

	_, err := p.Analyze(context.Background(), Input{Text: note})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestAnalyzeGraphFailureIsBestEffort(t *testing.T) {
	graph := &fakeGraph{err: errors.New("neo4j down")}
	p := newTestProcessor(t, newTestRegistry(), Config{}, WithGraph(graph))

	out, err := p.Analyze(context.Background(), Input{Text: note})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AnalysisID)
}

func TestAnalyzeCanceledContext(t *testing.T) {
	p := newTestProcessor(t, newTestRegistry(), Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Analyze(ctx, Input{Text: note})
	assert.ErrorIs(t, err, context.Canceled)
}
