package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/metrics"
	"github.com/AmartyaKumar11/X-NOSIS/internal/storage/models"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

// TermStore is the write side of the corpus store.
type TermStore interface {
	terms.Loader
	InsertTerms(ctx context.Context, records []terms.TermRecord) (inserted, skipped int, err error)
	ReplaceSource(ctx context.Context, source string, records []terms.TermRecord) (deleted int64, inserted, skipped int, err error)
	CountSource(ctx context.Context, source string) (int, error)
	UpsertSourceMetadata(ctx context.Context, meta models.SourceMetadata) error
}

type SourceReport struct {
	Source   string        `json:"source"`
	Batches  int           `json:"batches"`
	Inserted int           `json:"inserted"`
	Skipped  int           `json:"skipped"`
	Deleted  int64         `json:"deleted"`
	Total    int           `json:"total"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

type Report struct {
	Sources       []SourceReport `json:"sources"`
	Inserted      int            `json:"inserted"`
	Failed        int            `json:"failed"`
	CorpusVersion string         `json:"corpus_version,omitempty"`
	CorpusSize    int            `json:"corpus_size"`
}

type Populator struct {
	store    TermStore
	registry *terms.Registry
	logger   *zap.Logger
	now      func() time.Time
}

// NewPopulator returns a populator writing to store. registry may be nil,
// in which case no snapshot is published after a run.
func NewPopulator(store TermStore, registry *terms.Registry, logger *zap.Logger) *Populator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Populator{store: store, registry: registry, logger: logger, now: time.Now}
}

// Run drains every source in order. A failing source is recorded in the
// report and the run moves on; only context cancellation aborts it.
func (p *Populator) Run(ctx context.Context, srcs []Source) (*Report, error) {
	report := &Report{}

	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		sr, err := p.runSource(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				report.Sources = append(report.Sources, sr)
				return report, ctx.Err()
			}
			sr.Error = err.Error()
			report.Failed++
			p.logger.Error("Source load failed",
				zap.String("source", src.Name()),
				zap.Error(err),
			)
		}
		report.Inserted += sr.Inserted
		report.Sources = append(report.Sources, sr)
	}

	if p.registry != nil {
		snap, err := p.registry.Reload(ctx, p.store)
		if err != nil {
			metrics.CorpusReloads.WithLabelValues("error").Inc()
			return report, fmt.Errorf("failed to reload corpus: %w", err)
		}
		metrics.CorpusReloads.WithLabelValues("success").Inc()
		metrics.CorpusTerms.Set(float64(snap.Len()))
		report.CorpusVersion = snap.Version()
		report.CorpusSize = snap.Len()
	}

	p.logger.Info("Corpus population finished",
		zap.Int("sources", len(srcs)),
		zap.Int("inserted", report.Inserted),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (p *Populator) runSource(ctx context.Context, src Source) (SourceReport, error) {
	start := p.now()
	sr := SourceReport{Source: src.Name()}

	// Replace-mode sources are buffered and swapped in one transaction. A
	// failed fetch leaves the previous rows in place.
	replace := replaces(src)
	var pending []terms.TermRecord

	for {
		batch, err := src.FetchNextBatch(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			sr.Duration = p.now().Sub(start)
			return sr, err
		}
		if len(batch) == 0 {
			continue
		}
		sr.Batches++

		if replace {
			pending = append(pending, batch...)
			continue
		}

		inserted, skipped, err := p.store.InsertTerms(ctx, batch)
		if err != nil {
			sr.Duration = p.now().Sub(start)
			return sr, err
		}
		sr.Inserted += inserted
		sr.Skipped += skipped
		metrics.TermsLoaded.WithLabelValues(src.Name()).Add(float64(inserted))
	}

	if replace {
		deleted, inserted, skipped, err := p.store.ReplaceSource(ctx, src.Name(), pending)
		if err != nil {
			sr.Duration = p.now().Sub(start)
			return sr, fmt.Errorf("failed to replace source: %w", err)
		}
		sr.Deleted = deleted
		sr.Inserted = inserted
		sr.Skipped = skipped
		metrics.TermsLoaded.WithLabelValues(src.Name()).Add(float64(inserted))
	}

	total, err := p.store.CountSource(ctx, src.Name())
	if err != nil {
		return sr, err
	}
	sr.Total = total

	meta := models.SourceMetadata{
		Source:      src.Name(),
		TotalTerms:  total,
		Version:     versionOf(src),
		LastUpdated: p.now(),
	}
	if err := p.store.UpsertSourceMetadata(ctx, meta); err != nil {
		return sr, err
	}

	sr.Duration = p.now().Sub(start)
	p.logger.Info("Source loaded",
		zap.String("source", sr.Source),
		zap.Int("inserted", sr.Inserted),
		zap.Int("skipped", sr.Skipped),
		zap.Int("total", sr.Total),
		zap.Duration("duration", sr.Duration),
	)
	return sr, nil
}
