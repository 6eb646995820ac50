package ingestion

import (
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

type textStats struct {
	Words     int
	Sentences int
}

// computeStats counts word tokens and sentences with prose's tokenizer and
// segmenter. Tagging and entity extraction stay off.
func computeStats(text string) textStats {
	if strings.TrimSpace(text) == "" {
		return textStats{}
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return textStats{Words: len(strings.Fields(text)), Sentences: 1}
	}

	var stats textStats
	for _, tok := range doc.Tokens() {
		if strings.IndexFunc(tok.Text, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) >= 0 {
			stats.Words++
		}
	}
	stats.Sentences = len(doc.Sentences())
	if stats.Sentences == 0 {
		stats.Sentences = 1
	}
	return stats
}
