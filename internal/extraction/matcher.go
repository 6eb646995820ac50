package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

const DefaultMinTermLength = 3

// Matcher finds candidate entities through the pattern table and the corpus
// view. It holds no per-call state and is safe for concurrent use.
type Matcher struct {
	patterns      []compiledPattern
	minTermLength int
}

func NewMatcher(sets []PatternSet, minTermLength int) (*Matcher, error) {
	patterns, err := compilePatternSets(sets)
	if err != nil {
		return nil, err
	}
	if minTermLength <= 0 {
		minTermLength = DefaultMinTermLength
	}
	return &Matcher{patterns: patterns, minTermLength: minTermLength}, nil
}

// Match returns every pattern and corpus hit in discovery order. Overlapping
// and duplicate hits are all kept. A nil view means pattern-only matching.
func (m *Matcher) Match(text string, view terms.View) []MatchedEntity {
	matches := []MatchedEntity{}
	if strings.TrimSpace(text) == "" {
		return matches
	}

	lowered := terms.LowerRunes(text)
	sp := newSpanMapper(text, lowered)

	emit := func(startByte, endByte int, category terms.Category, source, conceptID string, confidence float64) {
		start, end := sp.runeOffset(startByte), sp.runeOffset(endByte)
		if start >= end {
			return
		}
		matches = append(matches, MatchedEntity{
			ID:         len(matches) + 1,
			Text:       sp.slice(start, end),
			Category:   category,
			StartPos:   start,
			EndPos:     end,
			Confidence: clamp01(confidence),
			Source:     source,
			ConceptID:  conceptID,
		})
	}

	for _, p := range m.patterns {
		for _, loc := range p.findAll(lowered) {
			emit(loc[0], loc[1], p.category, p.source, "", p.confidence)
		}
	}

	if view == nil || view.Len() == 0 {
		return matches
	}

	prevWord := false
	for i := 0; i < len(lowered); {
		r, size := utf8.DecodeRuneInString(lowered[i:])
		isWord := terms.IsWordRune(r)
		if isWord && !prevWord {
			for _, cand := range view.Candidates(terms.IndexKey(lowered[i:])) {
				if utf8.RuneCountInString(cand.Term) < m.minTermLength {
					continue
				}
				if end, ok := matchTermAt(lowered, i, cand.Term); ok {
					emit(i, end, cand.Category, cand.Source, cand.ConceptID, cand.Confidence)
				}
			}
		}
		prevWord = isWord
		i += size
	}

	return matches
}

// matchTermAt reports whether term occurs in text at byte offset pos and
// ends on a word boundary. A single space in term matches any run of
// whitespace in text.
func matchTermAt(text string, pos int, term string) (int, bool) {
	i, j := pos, 0
	for j < len(term) {
		if term[j] == ' ' {
			n := 0
			for i < len(text) {
				r, size := utf8.DecodeRuneInString(text[i:])
				if !unicode.IsSpace(r) {
					break
				}
				i += size
				n++
			}
			if n == 0 {
				return 0, false
			}
			j++
			continue
		}
		if i >= len(text) || text[i] != term[j] {
			return 0, false
		}
		i++
		j++
	}

	last, _ := utf8.DecodeLastRuneInString(term)
	if terms.IsWordRune(last) && i < len(text) {
		next, _ := utf8.DecodeRuneInString(text[i:])
		if terms.IsWordRune(next) {
			return 0, false
		}
	}
	return i, true
}

// spanMapper converts byte offsets in the lowered text to rune offsets that
// are valid in the original text. Both strings have the same rune count.
type spanMapper struct {
	runes   []rune
	byteToR []int
}

func newSpanMapper(original, lowered string) *spanMapper {
	byteToR := make([]int, len(lowered)+1)
	n := 0
	for i := range lowered {
		byteToR[i] = n
		n++
	}
	byteToR[len(lowered)] = n
	return &spanMapper{runes: []rune(original), byteToR: byteToR}
}

func (s *spanMapper) runeOffset(b int) int {
	return s.byteToR[b]
}

func (s *spanMapper) slice(start, end int) string {
	if end > len(s.runes) {
		end = len(s.runes)
	}
	if start > end {
		return ""
	}
	return string(s.runes[start:end])
}
