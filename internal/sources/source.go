package sources

import (
	"context"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

// Source yields term records in batches. FetchNextBatch returns io.EOF once
// the source is exhausted; a source is consumed by a single run.
type Source interface {
	Name() string
	FetchNextBatch(ctx context.Context) ([]terms.TermRecord, error)
}

// Replacing is implemented by sources whose previous rows are deleted before
// new ones are inserted.
type Replacing interface {
	Replace() bool
}

func replaces(s Source) bool {
	r, ok := s.(Replacing)
	return ok && r.Replace()
}

// Versioned sources report the version string stored in db_metadata.
type Versioned interface {
	Version() string
}

func versionOf(s Source) string {
	if v, ok := s.(Versioned); ok {
		return v.Version()
	}
	return ""
}
