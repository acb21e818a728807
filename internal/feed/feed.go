// Package feed renders the post collection as an RSS syndication feed.
package feed

import (
	"fmt"
	"strings"

	"github.com/gorilla/feeds"

	"github.com/folio-ssg/folio/internal/config"
	"github.com/folio-ssg/folio/internal/content"
)

// Build renders posts as RSS 2.0 XML. Item links are absolute, derived from
// the configured base URL and each post's slug. Posts are expected to arrive
// already sorted newest first; the feed preserves the given order.
func Build(cfg config.Config, posts []*content.Post) (string, error) {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	f := &feeds.Feed{
		Title:       cfg.SiteTitle,
		Link:        &feeds.Link{Href: base + "/"},
		Description: cfg.SiteDescription,
		Author:      &feeds.Author{Name: cfg.Author},
	}
	if len(posts) > 0 {
		f.Created = posts[0].Date
	}

	for _, p := range posts {
		item := &feeds.Item{
			Title:       p.Title,
			Link:        &feeds.Link{Href: base + p.Permalink()},
			Description: p.Description,
			Author:      &feeds.Author{Name: p.Author},
			Created:     p.Date,
			Id:          base + p.Permalink(),
		}
		if !p.Updated.IsZero() {
			item.Updated = p.Updated
		}
		f.Items = append(f.Items, item)
	}

	rss, err := f.ToRss()
	if err != nil {
		return "", fmt.Errorf("rendering rss feed: %w", err)
	}
	return rss, nil
}
