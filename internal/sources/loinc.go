package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

const (
	loincSource = "LOINC"

	loincComponentConfidence = 0.95
	loincLongNameConfidence  = 0.93
	loincShortNameConfidence = 0.90
)

var vitalSignKeywords = []string{
	"blood pressure", "heart rate", "pulse", "temperature", "respiratory rate",
	"oxygen saturation", "body weight", "body height", "bmi", "body mass",
}

// LOINCSource streams Loinc.csv in batches. Columns are located by header
// name, so extra or reordered columns are tolerated.
type LOINCSource struct {
	path      string
	batchSize int
	version   string

	file   *os.File
	reader *csv.Reader
	cols   map[string]int
	done   bool
}

func NewLOINCSource(path string, batchSize int) *LOINCSource {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &LOINCSource{path: path, batchSize: batchSize, version: "csv"}
}

// NewLOINCReader reads from r instead of a file.
func NewLOINCReader(r io.Reader, batchSize int) *LOINCSource {
	s := NewLOINCSource("", batchSize)
	s.reader = newLOINCCSV(r)
	return s
}

func newLOINCCSV(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

func (s *LOINCSource) Name() string    { return loincSource }
func (s *LOINCSource) Replace() bool   { return true }
func (s *LOINCSource) Version() string { return s.version }

func (s *LOINCSource) open() error {
	if s.reader == nil {
		f, err := os.Open(s.path)
		if err != nil {
			return fmt.Errorf("failed to open LOINC file: %w", err)
		}
		s.file = f
		s.reader = newLOINCCSV(f)
	}

	header, err := s.reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read LOINC header: %w", err)
	}
	s.cols = make(map[string]int, len(header))
	for i, h := range header {
		name := strings.Trim(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), `"`)
		s.cols[strings.ToUpper(name)] = i
	}
	for _, required := range []string{"LOINC_NUM", "COMPONENT"} {
		if _, ok := s.cols[required]; !ok {
			return fmt.Errorf("LOINC header missing %s column", required)
		}
	}
	return nil
}

func (s *LOINCSource) close() {
	s.done = true
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
}

func (s *LOINCSource) FetchNextBatch(ctx context.Context) ([]terms.TermRecord, error) {
	if s.done {
		return nil, io.EOF
	}
	if s.cols == nil {
		if err := s.open(); err != nil {
			s.close()
			return nil, err
		}
	}

	batch := make([]terms.TermRecord, 0, s.batchSize)
	for len(batch) < s.batchSize {
		if err := ctx.Err(); err != nil {
			s.close()
			return nil, err
		}

		row, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			s.close()
			if len(batch) == 0 {
				return nil, io.EOF
			}
			return batch, nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			continue
		}
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to read LOINC row: %w", err)
		}

		batch = append(batch, s.rowRecords(row)...)
	}
	return batch, nil
}

func (s *LOINCSource) field(row []string, name string) string {
	i, ok := s.cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (s *LOINCSource) rowRecords(row []string) []terms.TermRecord {
	code := s.field(row, "LOINC_NUM")
	component := s.field(row, "COMPONENT")
	longName := s.field(row, "LONG_COMMON_NAME")
	shortName := s.field(row, "SHORTNAME")

	var out []terms.TermRecord
	seen := make(map[string]bool, 3)
	add := func(name string, confidence float64) {
		norm := terms.Normalize(name)
		if len([]rune(norm)) <= 2 || seen[norm] {
			return
		}
		seen[norm] = true
		category := categorizeLOINC(component, name)
		out = append(out, terms.NewTermRecord(norm, category, loincSource, code, confidence))
	}

	add(component, loincComponentConfidence)
	add(longName, loincLongNameConfidence)
	add(shortName, loincShortNameConfidence)
	return out
}

func categorizeLOINC(component, name string) terms.Category {
	c, n := strings.ToLower(component), strings.ToLower(name)
	for _, kw := range vitalSignKeywords {
		if strings.Contains(c, kw) || strings.Contains(n, kw) {
			return terms.CategoryVitalSigns
		}
	}
	return terms.CategoryLabValues
}
