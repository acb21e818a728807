// Package toc builds a table of contents from a post's rendered HTML.
package toc

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Heading is one table-of-contents entry.
type Heading struct {
	ID    string
	Text  string
	Level int // 2 for h2, 3 for h3
}

// Extract returns the h2 and h3 headings of the rendered body in document
// order. Heading IDs come from the markdown renderer's auto heading IDs;
// headings without an ID are skipped since they cannot be linked to. A body
// with no headings yields an empty slice.
func Extract(body string) ([]Heading, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered body: %w", err)
	}

	headings := []Heading{}
	doc.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr("id")
		if !ok || id == "" {
			return
		}
		level := 2
		if goquery.NodeName(s) == "h3" {
			level = 3
		}
		headings = append(headings, Heading{
			ID:    id,
			Text:  strings.TrimSpace(s.Text()),
			Level: level,
		})
	})
	return headings, nil
}
