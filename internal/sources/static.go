package sources

import (
	"context"
	"io"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

type StaticEntry struct {
	Term      string
	Category  terms.Category
	ConceptID string
}

type StaticList struct {
	Source     string
	Confidence float64
	Entries    []StaticEntry
}

// StaticSource emits a curated list as one batch.
type StaticSource struct {
	list StaticList
	done bool
}

func NewStaticSource(list StaticList) *StaticSource {
	return &StaticSource{list: list}
}

func (s *StaticSource) Name() string    { return s.list.Source }
func (s *StaticSource) Version() string { return "static" }

func (s *StaticSource) FetchNextBatch(ctx context.Context) ([]terms.TermRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.done {
		return nil, io.EOF
	}
	s.done = true

	batch := make([]terms.TermRecord, 0, len(s.list.Entries))
	for _, e := range s.list.Entries {
		batch = append(batch, terms.NewTermRecord(e.Term, e.Category, s.list.Source, e.ConceptID, s.list.Confidence))
	}
	return batch, nil
}

// DefaultStaticSources returns fresh sources for every curated list.
func DefaultStaticSources() []Source {
	lists := CuratedLists()
	out := make([]Source, 0, len(lists))
	for _, l := range lists {
		out = append(out, NewStaticSource(l))
	}
	return out
}
