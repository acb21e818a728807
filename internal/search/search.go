// Package search provides fuzzy search over the post collection. The index
// covers title, tags, and display date; matching itself is delegated to the
// fuzzysearch library.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/folio-ssg/folio/internal/content"
)

// DateLayout is the display form dates are indexed and rendered with.
const DateLayout = "January 2, 2006"

// maxDistance is the fixed looseness threshold: candidates whose best
// Levenshtein rank exceeds it are dropped even when they fuzzy-match.
const maxDistance = 48

// Entry is one record of the serialized search index, consumed by the
// listing page's search script.
type Entry struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
}

// Index holds the indexed field values for a fixed post collection. Build a
// fresh one after every content load; it is read-only afterwards and safe
// for concurrent searches.
type Index struct {
	posts  []*content.Post
	fields [][]string
}

// NewIndex indexes posts in the given order. Only title, tags, and display
// date are searchable; descriptions and bodies are deliberately not indexed.
func NewIndex(posts []*content.Post) *Index {
	idx := &Index{posts: posts}
	for _, p := range posts {
		idx.fields = append(idx.fields, []string{
			p.Title,
			strings.Join(p.Tags, " "),
			p.Date.Format(DateLayout),
		})
	}
	return idx
}

// Search returns posts whose indexed fields fuzzy-match query, best match
// first. Ties keep index order. An empty or blank query returns every post
// in index order.
func (idx *Index) Search(query string) []*content.Post {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]*content.Post{}, idx.posts...)
	}

	type ranked struct {
		post     *content.Post
		distance int
		position int
	}
	var matches []ranked
	for i, fields := range idx.fields {
		best := -1
		for _, field := range fields {
			d := fuzzy.RankMatchNormalizedFold(query, field)
			if d < 0 || d > maxDistance {
				continue
			}
			if best < 0 || d < best {
				best = d
			}
		}
		if best >= 0 {
			matches = append(matches, ranked{post: idx.posts[i], distance: best, position: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	results := make([]*content.Post, len(matches))
	for i, m := range matches {
		results[i] = m.post
	}
	return results
}

// Entries returns the serializable form of the index, one record per post
// in index order.
func (idx *Index) Entries() []Entry {
	return EntriesOf(idx.posts)
}

// EntriesOf converts posts to search-index records without building an
// index, preserving order. The serve search endpoint uses it to encode
// ranked results.
func EntriesOf(posts []*content.Post) []Entry {
	entries := make([]Entry, len(posts))
	for i, p := range posts {
		entries[i] = Entry{
			Title:       p.Title,
			URL:         p.Permalink(),
			Tags:        p.Tags,
			Date:        p.Date.Format(DateLayout),
			Description: p.Description,
		}
	}
	return entries
}
