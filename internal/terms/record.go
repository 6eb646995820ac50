package terms

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/AmartyaKumar11/X-NOSIS/pkg/utils"
)

var (
	ErrEmptyTerm         = errors.New("empty term")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrEmptySource       = errors.New("empty source")
	ErrInvalidConfidence = errors.New("confidence outside [0,1]")
)

type TermRecord struct {
	Term       string   `json:"term"`
	Category   Category `json:"category"`
	Source     string   `json:"source"`
	ConceptID  string   `json:"concept_id,omitempty"`
	Confidence float64  `json:"confidence"`
}

// Normalize applies NFKC, drops control characters, lowercases and
// collapses whitespace. Lowercasing must stay identical to LowerRunes so
// stored terms compare equal to lowered text.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return utils.CollapseWhitespace(LowerRunes(s))
}

// LowerRunes lowercases rune by rune. The rune count of the result always
// equals the rune count of s.
func LowerRunes(s string) string {
	return strings.Map(unicode.ToLower, s)
}

func NewTermRecord(term string, category Category, source, conceptID string, confidence float64) TermRecord {
	return TermRecord{
		Term:       Normalize(term),
		Category:   category,
		Source:     strings.TrimSpace(source),
		ConceptID:  strings.TrimSpace(conceptID),
		Confidence: confidence,
	}
}

func (r TermRecord) Validate() error {
	if r.Term == "" {
		return ErrEmptyTerm
	}
	if !r.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, r.Category)
	}
	if r.Source == "" {
		return ErrEmptySource
	}
	if r.Confidence < 0 || r.Confidence > 1 || r.Confidence != r.Confidence {
		return fmt.Errorf("%w: %v", ErrInvalidConfidence, r.Confidence)
	}
	return nil
}

func (r TermRecord) Key() string {
	return r.Term + "\x00" + string(r.Category) + "\x00" + r.Source
}

func FirstWord(term string) string {
	if i := strings.IndexByte(term, ' '); i >= 0 {
		return term[:i]
	}
	return term
}
