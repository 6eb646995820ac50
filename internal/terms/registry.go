package terms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var ErrCorpusUnavailable = errors.New("term corpus unavailable")

type Loader interface {
	AllTerms(ctx context.Context) ([]TermRecord, error)
}

// Registry publishes corpus snapshots. Readers never block; reloads are
// serialized and swap in a fully built snapshot.
type Registry struct {
	current  atomic.Pointer[Snapshot]
	reloadMu sync.Mutex
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

func (r *Registry) Current() (*Snapshot, error) {
	s := r.current.Load()
	if s == nil {
		return nil, ErrCorpusUnavailable
	}
	return s, nil
}

func (r *Registry) Publish(s *Snapshot) {
	prev := r.current.Swap(s)
	fields := []zap.Field{
		zap.String("version", s.Version()),
		zap.Int("terms", s.Len()),
	}
	if prev != nil {
		fields = append(fields, zap.String("previous_version", prev.Version()))
	}
	r.logger.Info("Corpus snapshot published", fields...)
}

func (r *Registry) Reload(ctx context.Context, loader Loader) (*Snapshot, error) {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	start := time.Now()
	records, err := loader.AllTerms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load terms: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := NewSnapshot(records)
	r.Publish(s)

	r.logger.Info("Corpus reloaded",
		zap.Int("records", len(records)),
		zap.Int("skipped", s.Stats().Skipped),
		zap.Duration("duration", time.Since(start)),
	)
	return s, nil
}
