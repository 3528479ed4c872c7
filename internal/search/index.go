// Package search is the site's text search: a forward-tokenized term index
// over the content documents and the graph nodes.
package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tidwall/btree"
)

// Document is one searchable page fragment.
type Document struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Text    string `json:"text" yaml:"text"`
	URL     string `json:"url" yaml:"url"`
	Section string `json:"section" yaml:"section"`
}

// Result is a ranked hit.
type Result struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
	Section string  `json:"section"`
}

const (
	exactWeight  = 2
	prefixWeight = 1
	titleBonus   = 1
)

// posting associates a term with a document. Items sort by term, then by
// document, so a prefix scan is a single ascending walk.
type posting struct {
	term string
	doc  int
}

func postingLess(a, b posting) bool {
	if a.term != b.term {
		return a.term < b.term
	}
	return a.doc < b.doc
}

// Index is an in-memory forward index. It is not safe for concurrent
// mutation; Service guards it for the server.
type Index struct {
	docs   []Document
	body   *btree.BTreeG[posting]
	titles *btree.BTreeG[posting]
}

// NewIndex builds an index over docs.
func NewIndex(docs ...Document) *Index {
	ix := &Index{
		body:   btree.NewBTreeG(postingLess),
		titles: btree.NewBTreeG(postingLess),
	}
	for _, d := range docs {
		ix.Add(d)
	}
	return ix
}

// Add indexes one more document. Title and text are both searchable.
func (ix *Index) Add(d Document) {
	doc := len(ix.docs)
	ix.docs = append(ix.docs, d)
	for _, t := range tokenize(d.Title + " " + d.Text) {
		ix.body.Set(posting{term: t, doc: doc})
	}
	for _, t := range tokenize(d.Title) {
		ix.titles.Set(posting{term: t, doc: doc})
	}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.docs) }

// Search returns up to limit documents containing every query token as a
// word or word prefix, best score first. Ties keep insertion order.
func (ix *Index) Search(query string, limit int) []Result {
	tokens := tokenize(query)
	if len(tokens) == 0 || limit <= 0 {
		return nil
	}

	var scores map[int]float64
	for _, tok := range tokens {
		hits := scan(ix.body, tok)
		if scores == nil {
			scores = hits
		} else {
			for doc, s := range scores {
				w, ok := hits[doc]
				if !ok {
					delete(scores, doc)
					continue
				}
				scores[doc] = s + w
			}
		}
		if len(scores) == 0 {
			return nil
		}
		for doc := range scan(ix.titles, tok) {
			if _, ok := scores[doc]; ok {
				scores[doc] += titleBonus
			}
		}
	}

	ranked := make([]int, 0, len(scores))
	for doc := range scores {
		ranked = append(ranked, doc)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		return a < b
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]Result, len(ranked))
	for i, doc := range ranked {
		d := ix.docs[doc]
		out[i] = Result{
			ID:      d.ID,
			Title:   d.Title,
			Snippet: Snippet(d.Text, query),
			URL:     d.URL,
			Score:   scores[doc],
			Section: d.Section,
		}
	}
	return out
}

// scan walks every term starting with prefix and returns each document's
// best weight for it.
func scan(tree *btree.BTreeG[posting], prefix string) map[int]float64 {
	hits := make(map[int]float64)
	tree.Ascend(posting{term: prefix, doc: -1}, func(p posting) bool {
		if !strings.HasPrefix(p.term, prefix) {
			return false
		}
		w := float64(prefixWeight)
		if p.term == prefix {
			w = exactWeight
		}
		if w > hits[p.doc] {
			hits[p.doc] = w
		}
		return true
	})
	return hits
}

// tokenize lower-cases s and splits it on anything that is not a letter or
// digit. Apostrophes are dropped so "haven't" indexes as "havent".
func tokenize(s string) []string {
	s = strings.ReplaceAll(s, "'", "")
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return fields
}

// Snippet cuts a window around the first case-insensitive occurrence of
// query in text: 40 characters before, 60 after, with "..." marking cuts.
// Without an occurrence it returns the first 100 characters and "...".
func Snippet(text, query string) string {
	runes := []rune(text)
	at := indexFold(runes, []rune(query))
	if at < 0 {
		if len(runes) > 100 {
			runes = runes[:100]
		}
		return string(runes) + "..."
	}

	start := max(0, at-40)
	end := min(len(runes), at+len([]rune(query))+60)
	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

func indexFold(text, query []rune) int {
	if len(query) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(query) <= len(text); i++ {
		for j, q := range query {
			if unicode.ToLower(text[i+j]) != unicode.ToLower(q) {
				continue outer
			}
		}
		return i
	}
	return -1
}
