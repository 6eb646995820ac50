package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/extraction"
	"github.com/AmartyaKumar11/X-NOSIS/internal/metrics"
	"github.com/AmartyaKumar11/X-NOSIS/internal/storage/models"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/utils"
)

var ErrEmptyInput = errors.New("input text is empty")

const DefaultMaxTextLength = 50000

type Corpus interface {
	Current() (*terms.Snapshot, error)
}

type ResultStore interface {
	InsertAnalysis(ctx context.Context, record *models.AnalysisRecord) error
}

type ResultCache interface {
	GetAnalysis(ctx context.Context, key string, out any) (bool, error)
	SetAnalysis(ctx context.Context, key string, value any) error
}

type GraphPublisher interface {
	PublishAnalysis(ctx context.Context, analysisID string, result *extraction.AnalysisResult) error
}

type Config struct {
	MaxTextLength  int
	PersistResults bool
}

type Input struct {
	Text        string
	ContentType string
	PatientID   string
	// Channel labels the metrics, e.g. "text" or "websocket".
	Channel string
}

type Output struct {
	AnalysisID string                     `json:"analysis_id"`
	Result     *extraction.AnalysisResult `json:"results"`
	Cached     bool                       `json:"cached"`
}

// Processor is the boundary around the extraction engine. Store, cache and
// graph are optional; nil disables that side effect.
type Processor struct {
	engine *extraction.Engine
	corpus Corpus
	store  ResultStore
	cache  ResultCache
	graph  GraphPublisher
	cfg    Config
	now    func() time.Time
}

type Option func(*Processor)

func WithStore(s ResultStore) Option    { return func(p *Processor) { p.store = s } }
func WithCache(c ResultCache) Option    { return func(p *Processor) { p.cache = c } }
func WithGraph(g GraphPublisher) Option { return func(p *Processor) { p.graph = g } }

func NewProcessor(engine *extraction.Engine, corpus Corpus, cfg Config, opts ...Option) *Processor {
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = DefaultMaxTextLength
	}
	p := &Processor{engine: engine, corpus: corpus, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) Analyze(ctx context.Context, in Input) (*Output, error) {
	start := p.now()
	channel := in.Channel
	if channel == "" {
		channel = "text"
	}

	out, err := p.analyze(ctx, in, start)

	metrics.AnalysisDuration.WithLabelValues(channel).Observe(p.now().Sub(start).Seconds())
	switch {
	case errors.Is(err, ErrEmptyInput):
		metrics.AnalysisTotal.WithLabelValues("rejected").Inc()
	case err != nil:
		metrics.AnalysisTotal.WithLabelValues("error").Inc()
	case out.Cached:
		metrics.AnalysisTotal.WithLabelValues("cached").Inc()
	default:
		metrics.AnalysisTotal.WithLabelValues("success").Inc()
	}
	return out, err
}

func (p *Processor) analyze(ctx context.Context, in Input, start time.Time) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := Decode(in.Text, in.ContentType)
	text, truncated := truncateRunes(text, p.cfg.MaxTextLength)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if truncated {
		logger.Warn("Input truncated",
			zap.Int("max_text_length", p.cfg.MaxTextLength),
		)
	}

	var view terms.View
	var version string
	var size int
	snap, err := p.corpus.Current()
	switch {
	case errors.Is(err, terms.ErrCorpusUnavailable):
		logger.Warn("Corpus unavailable, using pattern matching only")
	case err != nil:
		return nil, fmt.Errorf("failed to load corpus snapshot: %w", err)
	default:
		view, version, size = snap, snap.Version(), snap.Len()
	}

	cacheKey := utils.Fingerprint(text, version, in.PatientID)
	if cached := p.cached(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	stats := computeStats(text)
	agg := p.engine.Extract(text, view)

	meta := extraction.ProcessingMetadata{
		ProcessingTimeMs: float64(p.now().Sub(start).Microseconds()) / 1000,
		TextLength:       utf8.RuneCountInString(text),
		WordCount:        stats.Words,
		SentenceCount:    stats.Sentences,
		Truncated:        truncated,
		CorpusVersion:    version,
		CorpusSize:       size,
	}
	result := extraction.Assemble(text, agg, meta)

	out := &Output{AnalysisID: uuid.New().String(), Result: result}

	if err := p.persist(ctx, out, in.PatientID, cacheKey); err != nil {
		return nil, err
	}
	p.publish(ctx, out)
	p.storeCache(ctx, cacheKey, out)
	recordResultMetrics(result)

	logger.Info("Analysis completed",
		zap.String("analysis_id", out.AnalysisID),
		zap.Int("entities", len(result.MedicalEntities)),
		zap.Int("critical_findings", len(result.CriticalFindings)),
		zap.Float64("confidence", result.ConfidenceScore),
		zap.Float64("processing_time_ms", meta.ProcessingTimeMs),
	)
	return out, nil
}

func (p *Processor) cached(ctx context.Context, key string) *Output {
	if p.cache == nil {
		return nil
	}
	var out Output
	hit, err := p.cache.GetAnalysis(ctx, key, &out)
	if err != nil {
		logger.Warn("Cache lookup failed", zap.Error(err))
		return nil
	}
	if !hit || out.Result == nil {
		metrics.CacheMisses.WithLabelValues("analysis").Inc()
		return nil
	}
	metrics.CacheHits.WithLabelValues("analysis").Inc()
	out.Cached = true
	return &out
}

func (p *Processor) persist(ctx context.Context, out *Output, patientID, fingerprint string) error {
	if p.store == nil || !p.cfg.PersistResults {
		return nil
	}

	body, err := json.Marshal(out.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	record := &models.AnalysisRecord{
		ID:               out.AnalysisID,
		PatientID:        patientID,
		TextFingerprint:  fingerprint,
		Summary:          out.Result.Summary,
		EntityCount:      len(out.Result.MedicalEntities),
		CriticalCount:    len(out.Result.CriticalFindings),
		Confidence:       out.Result.ConfidenceScore,
		CorpusVersion:    out.Result.ProcessingMetadata.CorpusVersion,
		ProcessingTimeMs: out.Result.ProcessingMetadata.ProcessingTimeMs,
		Result:           body,
		CreatedAt:        p.now(),
	}
	if err := p.store.InsertAnalysis(ctx, record); err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}
	return nil
}

func (p *Processor) publish(ctx context.Context, out *Output) {
	if p.graph == nil {
		return
	}
	if err := p.graph.PublishAnalysis(ctx, out.AnalysisID, out.Result); err != nil {
		metrics.GraphPublishes.WithLabelValues("error").Inc()
		logger.Warn("Failed to publish analysis to graph",
			zap.String("analysis_id", out.AnalysisID),
			zap.Error(err),
		)
		return
	}
	metrics.GraphPublishes.WithLabelValues("success").Inc()
}

func (p *Processor) storeCache(ctx context.Context, key string, out *Output) {
	if p.cache == nil {
		return
	}
	if err := p.cache.SetAnalysis(ctx, key, out); err != nil {
		logger.Warn("Failed to cache analysis", zap.Error(err))
	}
}

func recordResultMetrics(result *extraction.AnalysisResult) {
	for category, n := range result.EntityCounts {
		metrics.EntitiesExtracted.WithLabelValues(string(category)).Add(float64(n))
	}
	for _, f := range result.CriticalFindings {
		metrics.CriticalFindings.WithLabelValues(string(f.Severity)).Inc()
	}
	metrics.ConfidenceScore.Observe(result.ConfidenceScore)
}
