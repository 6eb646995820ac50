package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
)

const (
	openFDASource     = "OpenFDA"
	openFDAConfidence = 0.92
)

type OpenFDAConfig struct {
	BaseURL  string
	PageSize int
	MaxPages int
	Timeout  time.Duration
}

type openFDAResponse struct {
	Results []struct {
		OpenFDA struct {
			BrandName     []string `json:"brand_name"`
			GenericName   []string `json:"generic_name"`
			SubstanceName []string `json:"substance_name"`
		} `json:"openfda"`
	} `json:"results"`
}

// OpenFDASource pages through drug labels with limit/skip.
type OpenFDASource struct {
	cfg   OpenFDAConfig
	fetch *fetcher
	page  int
	done  bool
}

func NewOpenFDASource(cfg OpenFDAConfig) *OpenFDASource {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}
	return &OpenFDASource{cfg: cfg, fetch: newFetcher("openfda", cfg.Timeout)}
}

func (s *OpenFDASource) Name() string    { return openFDASource }
func (s *OpenFDASource) Replace() bool   { return true }
func (s *OpenFDASource) Version() string { return "api" }

func (s *OpenFDASource) FetchNextBatch(ctx context.Context) ([]terms.TermRecord, error) {
	if s.done || s.page >= s.cfg.MaxPages {
		return nil, io.EOF
	}

	q := url.Values{}
	q.Set("limit", fmt.Sprint(s.cfg.PageSize))
	q.Set("skip", fmt.Sprint(s.page*s.cfg.PageSize))
	pageURL := s.cfg.BaseURL + "?" + q.Encode()

	var resp openFDAResponse
	if err := s.fetch.getJSON(ctx, pageURL, &resp); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			s.done = true
			return nil, io.EOF
		}
		return nil, fmt.Errorf("openfda page %d: %w", s.page, err)
	}
	s.page++

	if len(resp.Results) == 0 {
		s.done = true
		return nil, io.EOF
	}

	seen := make(map[string]bool)
	var batch []terms.TermRecord
	for _, r := range resp.Results {
		names := append(append(append([]string{}, r.OpenFDA.BrandName...), r.OpenFDA.GenericName...), r.OpenFDA.SubstanceName...)
		for _, name := range names {
			norm := terms.Normalize(name)
			if len(norm) <= 1 || seen[norm] {
				continue
			}
			seen[norm] = true
			batch = append(batch, terms.NewTermRecord(norm, terms.CategoryMedication, openFDASource, "", openFDAConfidence))
		}
	}

	logger.Debug("OpenFDA page fetched",
		zap.Int("page", s.page),
		zap.Int("labels", len(resp.Results)),
		zap.Int("names", len(batch)),
	)

	if len(resp.Results) < s.cfg.PageSize {
		s.done = true
	}
	return batch, nil
}
