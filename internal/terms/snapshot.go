package terms

import (
	"sort"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/AmartyaKumar11/X-NOSIS/pkg/utils"
)

// View is the read-only corpus surface the matcher depends on.
type View interface {
	Candidates(key string) []TermRecord
	Len() int
	Version() string
}

type Stats struct {
	Total      int              `json:"total"`
	Skipped    int              `json:"skipped"`
	ByCategory map[Category]int `json:"by_category"`
	BySource   map[string]int   `json:"by_source"`
	Version    string           `json:"version"`
	BuiltAt    time.Time        `json:"built_at"`
}

// Snapshot is an immutable index of term records keyed by IndexKey.
type Snapshot struct {
	index   map[string][]TermRecord
	stats   Stats
	version string
	builtAt time.Time
}

var _ View = (*Snapshot)(nil)

func NewSnapshot(records []TermRecord) *Snapshot {
	return newSnapshotAt(records, time.Now().UTC())
}

func newSnapshotAt(records []TermRecord, builtAt time.Time) *Snapshot {
	unique := make(map[string]TermRecord, len(records))
	skipped := 0
	for _, r := range records {
		r = NewTermRecord(r.Term, r.Category, r.Source, r.ConceptID, r.Confidence)
		if r.Validate() != nil || IndexKey(r.Term) == "" {
			skipped++
			continue
		}
		if prev, ok := unique[r.Key()]; ok && prev.Confidence >= r.Confidence {
			continue
		}
		unique[r.Key()] = r
	}

	keys := make([]string, 0, len(unique))
	for k := range unique {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := &Snapshot{
		index:   make(map[string][]TermRecord),
		builtAt: builtAt,
		stats: Stats{
			Skipped:    skipped,
			ByCategory: make(map[Category]int),
			BySource:   make(map[string]int),
		},
	}

	fingerprint := make([]string, 0, len(keys))
	for _, k := range keys {
		r := unique[k]
		key := IndexKey(r.Term)
		s.index[key] = append(s.index[key], r)
		s.stats.Total++
		s.stats.ByCategory[r.Category]++
		s.stats.BySource[r.Source]++
		fingerprint = append(fingerprint, k+"\x00"+strconv.FormatFloat(r.Confidence, 'f', 4, 64))
	}

	for _, bucket := range s.index {
		sort.SliceStable(bucket, func(i, j int) bool {
			return len(bucket[i].Term) > len(bucket[j].Term)
		})
	}

	s.version = utils.ShortFingerprint(fingerprint...)
	s.stats.Version = s.version
	s.stats.BuiltAt = builtAt
	return s
}

// Candidates returns records whose IndexKey equals key, longest term first.
// The returned slice must not be modified.
func (s *Snapshot) Candidates(key string) []TermRecord {
	if s == nil {
		return nil
	}
	return s.index[key]
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return s.stats.Total
}

func (s *Snapshot) Version() string {
	if s == nil {
		return ""
	}
	return s.version
}

func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

func (s *Snapshot) Stats() Stats {
	out := s.stats
	out.ByCategory = make(map[Category]int, len(s.stats.ByCategory))
	for k, v := range s.stats.ByCategory {
		out.ByCategory[k] = v
	}
	out.BySource = make(map[string]int, len(s.stats.BySource))
	for k, v := range s.stats.BySource {
		out.BySource[k] = v
	}
	return out
}

func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IndexKey is the leading run of word runes of s, or "" when s does not
// start with a word rune.
func IndexKey(s string) string {
	end := 0
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !IsWordRune(r) {
			break
		}
		end += size
	}
	return s[:end]
}
