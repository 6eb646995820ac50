package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
)

// PatternSet is a group of regular expression fragments that all tag their
// matches with the same category, source and confidence. Fragments are
// matched against lowercased text. A space in a fragment matches any run of
// whitespace, and a match must start and end on a word boundary.
type PatternSet struct {
	Category   terms.Category
	Source     string
	Confidence float64
	Patterns   []string
}

const patternSource = "Pattern"

func DefaultPatternSets() []PatternSet {
	return []PatternSet{
		{
			Category:   terms.CategorySymptom,
			Source:     patternSource,
			Confidence: 0.85,
			Patterns: []string{
				`chest pain`, `pain`, `shortness of breath`, `dyspnea`, `headache`,
				`nausea`, `vomiting`, `fever`, `cough`, `fatigue`, `dizziness`,
				`palpitations`, `diaphoresis`, `abdominal pain`, `back pain`,
				`weakness`, `numbness`, `syncope`, `wheezing`, `chills`,
			},
		},
		{
			Category:   terms.CategoryCondition,
			Source:     patternSource,
			Confidence: 0.88,
			Patterns: []string{
				`myocardial infarction`, `heart attack`, `hypertension`,
				`diabetes(?: mellitus)?`, `type [12] diabetes`, `pneumonia`, `asthma`,
				`copd`, `sepsis`, `stroke`, `heart failure`, `atrial fibrillation`,
				`pulmonary embolism`, `angina`, `cancer`, `anemia`,
				`chronic kidney disease`, `hyperlipidemia`,
			},
		},
		{
			Category:   terms.CategoryMedication,
			Source:     patternSource,
			Confidence: 0.90,
			Patterns: []string{
				`aspirin`, `metformin`, `lisinopril`, `atorvastatin`, `amlodipine`,
				`metoprolol`, `warfarin`, `heparin`, `insulin`, `nitroglycerin`,
				`clopidogrel`, `furosemide`, `omeprazole`, `albuterol`, `prednisone`,
				`ibuprofen`, `acetaminophen`, `amoxicillin`,
			},
		},
		{
			Category:   terms.CategoryVitalSigns,
			Source:     patternSource,
			Confidence: 0.92,
			Patterns: []string{
				`blood pressure`, `bp \d{2,3}/\d{2,3}`, `\d{2,3}/\d{2,3} mmhg`,
				`heart rate`, `pulse`, `respiratory rate`, `temperature`,
				`oxygen saturation`, `spo2`, `o2 sat`, `bmi`,
			},
		},
		{
			Category:   terms.CategoryLabValues,
			Source:     patternSource,
			Confidence: 0.90,
			Patterns: []string{
				`troponin`, `hemoglobin`, `hba1c`, `glucose`, `creatinine`,
				`cholesterol`, `ldl`, `hdl`, `potassium`, `sodium`, `white blood cell count`,
				`wbc`, `platelet count`, `bnp`, `inr`, `lactate`, `d-dimer`,
			},
		},
		{
			Category:   terms.CategoryAnatomy,
			Source:     patternSource,
			Confidence: 0.80,
			Patterns: []string{
				`heart`, `lungs?`, `chest`, `abdomen`, `kidneys?`, `liver`, `brain`,
				`left arm`, `coronary arter(?:y|ies)`,
			},
		},
	}
}

type compiledPattern struct {
	re         *regexp.Regexp
	whole      *regexp.Regexp
	category   terms.Category
	source     string
	confidence float64
}

func compilePatternSets(sets []PatternSet) ([]compiledPattern, error) {
	var out []compiledPattern
	for _, set := range sets {
		if !set.Category.IsValid() {
			return nil, fmt.Errorf("pattern set has invalid category %q", set.Category)
		}
		for _, frag := range set.Patterns {
			expr := `(?:` + strings.ReplaceAll(frag, " ", `\s+`) + `)`
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("failed to compile pattern %q: %w", frag, err)
			}
			out = append(out, compiledPattern{
				re:         re,
				whole:      regexp.MustCompile(`^` + expr + `$`),
				category:   set.Category,
				source:     set.Source,
				confidence: clamp01(set.Confidence),
			})
		}
	}
	return out, nil
}

// findAll returns the byte spans of every non-overlapping match in text that
// starts and ends on a word boundary. When the longest match at a position
// runs into a word, shorter matches at the same start are tried.
func (p compiledPattern) findAll(text string) [][2]int {
	var out [][2]int
	for pos := 0; pos < len(text); {
		loc := p.re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end > start && isBoundary(text, start) {
			if e, ok := p.boundedEnd(text, start, end); ok {
				out = append(out, [2]int{start, e})
				pos = e
				continue
			}
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return out
}

func (p compiledPattern) boundedEnd(text string, start, end int) (int, bool) {
	if isBoundary(text, end) {
		return end, true
	}
	for e := end - 1; e > start; e-- {
		if !utf8.RuneStart(text[e]) || !isBoundary(text, e) {
			continue
		}
		if p.whole.MatchString(text[start:e]) {
			return e, true
		}
	}
	return 0, false
}

// isBoundary reports whether byte offset i sits between a word rune and a
// non-word rune, or at either end of text.
func isBoundary(text string, i int) bool {
	if i <= 0 || i >= len(text) {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:i])
	next, _ := utf8.DecodeRuneInString(text[i:])
	return terms.IsWordRune(prev) != terms.IsWordRune(next)
}

func clamp01(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
