package ingestion

import (
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

const (
	ContentTypePlain = "text/plain"
	ContentTypeHTML  = "text/html"
)

var whitespaceRun = regexp.MustCompile(`[ \t\f\v\r\n]+`)

// DetectContentType resolves an upload's declared type, falling back to the
// file extension. Anything unrecognised is treated as plain text.
func DetectContentType(declared, filename string) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		switch mt {
		case ContentTypeHTML, "application/xhtml+xml":
			return ContentTypeHTML
		case ContentTypePlain:
			return ContentTypePlain
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm", ".xhtml":
		return ContentTypeHTML
	}
	return ContentTypePlain
}

// SupportedContentType reports whether the declared upload type can be decoded.
func SupportedContentType(declared string) bool {
	if declared == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return false
	}
	switch mt {
	case ContentTypePlain, ContentTypeHTML, "application/xhtml+xml", "application/octet-stream":
		return true
	}
	return false
}

// Decode turns raw input into the text handed to the extraction engine.
// Offsets in the result refer to the returned string.
func Decode(raw, contentType string) string {
	text := raw
	if contentType == ContentTypeHTML {
		text = cleanHTML(raw)
	}
	return norm.NFKC.String(text)
}

func cleanHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("script, style, nav, footer, header, aside, noscript").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	// Block elements would otherwise run their words together.
	doc.Find("p, div, br, li, tr, h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	text := doc.Find("body").Text()
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// truncateRunes cuts text to at most limit runes.
func truncateRunes(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i], true
		}
		n++
	}
	return text, false
}
