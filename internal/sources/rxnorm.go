package sources

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
)

const (
	rxNormSource     = "RxNorm-API"
	rxNormConfidence = 0.95
)

type RxNormConfig struct {
	BaseURL string
	Drugs   []string
	Timeout time.Duration
}

type rxcuiResponse struct {
	IDGroup struct {
		Name     string   `json:"name"`
		RxNormID []string `json:"rxnormId"`
	} `json:"idGroup"`
}

// RxNormSource resolves each configured drug name to its RxCUI through
// RxNav, one drug per batch. Unknown names are skipped.
type RxNormSource struct {
	cfg   RxNormConfig
	fetch *fetcher
	next  int
}

func NewRxNormSource(cfg RxNormConfig) *RxNormSource {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &RxNormSource{cfg: cfg, fetch: newFetcher("rxnorm", cfg.Timeout)}
}

func (s *RxNormSource) Name() string    { return rxNormSource }
func (s *RxNormSource) Replace() bool   { return true }
func (s *RxNormSource) Version() string { return "rxnav" }

func (s *RxNormSource) FetchNextBatch(ctx context.Context) ([]terms.TermRecord, error) {
	for s.next < len(s.cfg.Drugs) {
		drug := strings.TrimSpace(s.cfg.Drugs[s.next])
		s.next++
		if drug == "" {
			continue
		}

		var resp rxcuiResponse
		endpoint := s.cfg.BaseURL + "/rxcui.json?name=" + url.QueryEscape(drug)
		if err := s.fetch.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, fmt.Errorf("rxnorm lookup %q: %w", drug, err)
		}

		if len(resp.IDGroup.RxNormID) == 0 {
			logger.Debug("RxNorm has no concept for drug", zap.String("drug", drug))
			continue
		}

		name := resp.IDGroup.Name
		if name == "" {
			name = drug
		}
		return []terms.TermRecord{
			terms.NewTermRecord(name, terms.CategoryMedication, rxNormSource, resp.IDGroup.RxNormID[0], rxNormConfidence),
		}, nil
	}
	return nil, io.EOF
}
