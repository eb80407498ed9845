package history

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/user/cmdlens/internal/safety"
)

// minQueryWord is the shortest query word that contributes to a score.
const minQueryWord = 3

// Filters narrow ranked search results. Zero values disable a filter.
type Filters struct {
	// Tags must all be present on the entry.
	Tags []string
	// Since and Until bound the entry timestamp, inclusive.
	Since time.Time
	Until time.Time
	// RiskLevel, when set, must equal the stored level.
	RiskLevel *safety.RiskLevel
	// Favorite, when set, must equal the favorite flag.
	Favorite *bool
	// CommandType and Complexity must match exactly when non-empty.
	CommandType string
	Complexity  string
}

// Result is one ranked search hit.
type Result struct {
	Entry Entry `json:"entry"`
	// Score counts the query words found in the entry.
	Score int `json:"score"`
	// Matched lists the query words that hit, in query order.
	Matched []string `json:"matched"`
}

// Index is an inverted word index over a snapshot of entries.
type Index struct {
	entries map[string]Entry
	words   map[string]map[string]struct{}
}

// NewIndex indexes the words of each entry's command, explanations and tags.
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		entries: make(map[string]Entry, len(entries)),
		words:   make(map[string]map[string]struct{}),
	}
	for _, e := range entries {
		idx.add(e)
	}
	return idx
}

func (idx *Index) add(e Entry) {
	idx.entries[e.ID] = e

	text := e.Command + " " + e.Summary() + " " + strings.Join(e.Tags, " ")
	for _, w := range strings.Fields(strings.ToLower(text)) {
		ids, ok := idx.words[w]
		if !ok {
			ids = make(map[string]struct{})
			idx.words[w] = ids
		}
		ids[e.ID] = struct{}{}
	}
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Search scores entries by how many query words (three runes or longer) they
// contain, applies filters, and returns at most limit results ordered by score
// then recency. A query without scoring words matches every entry with score
// zero, so filters can be used on their own. limit <= 0 means no limit.
func (idx *Index) Search(query string, filters Filters, limit int) []Result {
	var queryWords []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len([]rune(w)) >= minQueryWord && !slices.Contains(queryWords, w) {
			queryWords = append(queryWords, w)
		}
	}

	hits := make(map[string]*Result)
	if len(queryWords) == 0 {
		for id, e := range idx.entries {
			hits[id] = &Result{Entry: e, Matched: []string{}}
		}
	}
	for _, w := range queryWords {
		for id := range idx.words[w] {
			r, ok := hits[id]
			if !ok {
				r = &Result{Entry: idx.entries[id], Matched: []string{}}
				hits[id] = r
			}
			r.Score++
			r.Matched = append(r.Matched, w)
		}
	}

	results := make([]Result, 0, len(hits))
	for _, r := range hits {
		if filters.match(&r.Entry) {
			results = append(results, *r)
		}
	}

	slices.SortFunc(results, func(a, b Result) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := b.Entry.Timestamp.Compare(a.Entry.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Entry.ID, b.Entry.ID)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (f Filters) match(e *Entry) bool {
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && e.Timestamp.After(f.Until) {
		return false
	}
	if f.RiskLevel != nil && e.RiskLevel() != *f.RiskLevel {
		return false
	}
	if f.Favorite != nil && e.IsFavorite != *f.Favorite {
		return false
	}
	if f.CommandType != "" && e.CommandType != f.CommandType {
		return false
	}
	if f.Complexity != "" && e.Complexity != f.Complexity {
		return false
	}
	for _, t := range f.Tags {
		if !e.HasTag(t) {
			return false
		}
	}
	return true
}

// Suggestions returns indexed words that extend prefix, followed by words
// that merely contain it. Each group is sorted; the query itself is excluded.
func (idx *Index) Suggestions(prefix string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(prefix))
	if q == "" {
		return []string{}
	}

	var starts, contains []string
	for w := range idx.words {
		switch {
		case w == q:
		case strings.HasPrefix(w, q):
			starts = append(starts, w)
		case strings.Contains(w, q):
			contains = append(contains, w)
		}
	}
	slices.Sort(starts)
	slices.Sort(contains)

	out := append(starts, contains...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// WordCount is a word and the number of entries containing it.
type WordCount struct {
	Word    string `json:"word"`
	Entries int    `json:"entries"`
}

// PopularWords returns the words found in the most entries.
func (idx *Index) PopularWords(limit int) []WordCount {
	counts := make([]WordCount, 0, len(idx.words))
	for w, ids := range idx.words {
		counts = append(counts, WordCount{Word: w, Entries: len(ids)})
	}
	slices.SortFunc(counts, func(a, b WordCount) int {
		if c := cmp.Compare(b.Entries, a.Entries); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
