package sources

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

const (
	fhirSource     = "FHIR"
	fhirConfidence = 0.90

	SystemSNOMED  = "http://snomed.info/sct"
	SystemICD10   = "http://hl7.org/fhir/sid/icd-10"
	SystemICD10CM = "http://hl7.org/fhir/sid/icd-10-cm"
)

// Preferred coding systems when a Condition carries several codings.
var fhirSystemRank = map[string]int{
	SystemSNOMED:  3,
	SystemICD10CM: 2,
	SystemICD10:   2,
}

type FHIRConfig struct {
	BaseURL  string
	PageSize int
	MaxPages int
	Timeout  time.Duration
}

type fhirCoding struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display"`
}

type fhirBundle struct {
	ResourceType string `json:"resourceType"`
	Link         []struct {
		Relation string `json:"relation"`
		URL      string `json:"url"`
	} `json:"link"`
	Entry []struct {
		Resource struct {
			ResourceType string `json:"resourceType"`
			Code         struct {
				Text   string       `json:"text"`
				Coding []fhirCoding `json:"coding"`
			} `json:"code"`
		} `json:"resource"`
	} `json:"entry"`
}

// FHIRSource reads Condition search bundles, following next links.
type FHIRSource struct {
	cfg   FHIRConfig
	fetch *fetcher
	next  string
	pages int
}

func NewFHIRSource(cfg FHIRConfig) *FHIRSource {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	q := url.Values{}
	q.Set("_count", fmt.Sprint(cfg.PageSize))
	q.Set("_elements", "code")
	return &FHIRSource{
		cfg:   cfg,
		fetch: newFetcher("fhir", cfg.Timeout),
		next:  base + "/Condition?" + q.Encode(),
	}
}

func (s *FHIRSource) Name() string    { return fhirSource }
func (s *FHIRSource) Replace() bool   { return true }
func (s *FHIRSource) Version() string { return "r4" }

func (s *FHIRSource) FetchNextBatch(ctx context.Context) ([]terms.TermRecord, error) {
	if s.next == "" || s.pages >= s.cfg.MaxPages {
		return nil, io.EOF
	}

	var bundle fhirBundle
	if err := s.fetch.getJSON(ctx, s.next, &bundle); err != nil {
		return nil, fmt.Errorf("fhir page %d: %w", s.pages, err)
	}
	s.pages++

	s.next = ""
	for _, l := range bundle.Link {
		if l.Relation == "next" {
			s.next = l.URL
		}
	}

	batch := []terms.TermRecord{}
	for _, e := range bundle.Entry {
		if e.Resource.ResourceType != "Condition" {
			continue
		}
		code := preferredCoding(e.Resource.Code.Coding)

		names := []string{e.Resource.Code.Text}
		for _, c := range e.Resource.Code.Coding {
			names = append(names, c.Display)
		}
		seen := make(map[string]bool)
		for _, n := range names {
			norm := terms.Normalize(n)
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			batch = append(batch, terms.NewTermRecord(norm, terms.CategoryCondition, fhirSource, code.Code, fhirConfidence))
		}
	}
	return batch, nil
}

func preferredCoding(codings []fhirCoding) fhirCoding {
	var best fhirCoding
	bestRank := -1
	for _, c := range codings {
		if c.Code == "" {
			continue
		}
		if r := fhirSystemRank[c.System]; r > bestRank {
			best, bestRank = c, r
		}
	}
	return best
}
