// Package content loads Markdown articles with front-matter into Post
// records.
package content

import (
	"html/template"
	"sort"
	"time"

	"github.com/folio-ssg/folio/internal/slug"
)

// DefaultTitle is substituted when front-matter carries no title.
const DefaultTitle = "Untitled"

// Post is a single article, immutable once constructed. Every field has a
// value: missing front-matter keys are filled with defaults at load time.
type Post struct {
	Title       string
	Author      string
	Tags        []string
	Date        time.Time
	Updated     time.Time // zero when the post was never updated
	Description string
	Body        template.HTML
	SourcePath  string
}

// Slug returns the URL-safe identifier for the post, derived from its title.
// Uniqueness within a collection is not checked here.
func (p *Post) Slug() string {
	return slug.Make(p.Title)
}

// Permalink returns the site-relative URL of the post page.
func (p *Post) Permalink() string {
	return "/blog/" + p.Slug() + "/"
}

// SortByDate orders posts newest first. The sort is stable, so posts sharing
// a publish date keep their relative input order.
func SortByDate(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
}
