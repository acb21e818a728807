package site

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-ssg/folio/internal/config"
	"github.com/folio-ssg/folio/internal/search"
)

func write(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func fixtureSite(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Config{
		SiteTitle:       "Fixture Site",
		SiteDescription: "A site for tests",
		Author:          "Tester",
		BaseURL:         "https://fixture.test",
		ContentDir:      filepath.Join(root, "content"),
		LayoutsDir:      filepath.Join(root, "layouts"),
		StaticDir:       filepath.Join(root, "static"),
		OutputDir:       filepath.Join(root, "public"),
	}

	write(t, filepath.Join(cfg.LayoutsDir, "base.html"),
		`{{define "header"}}<html><body>{{end}}{{define "footer"}}</body></html>{{end}}`)
	write(t, filepath.Join(cfg.LayoutsDir, "partials", "meta.html"),
		`{{define "meta"}}<meta name="generator" content="folio">{{end}}`)
	write(t, filepath.Join(cfg.LayoutsDir, "home.html"),
		`{{template "header" .}}<h1>{{.Site.Config.SiteTitle}}</h1>`+
			`{{range .Site.Recent 5}}<a href="{{.Permalink}}">{{.Title}}</a>{{end}}{{template "footer" .}}`)
	write(t, filepath.Join(cfg.LayoutsDir, "list-posts.html"),
		`{{template "header" .}}{{range .Site.Posts}}<li><a href="{{.Permalink}}">{{.Title}}</a> {{displayDate .Date}}</li>{{end}}{{template "footer" .}}`)
	write(t, filepath.Join(cfg.LayoutsDir, "single-post.html"),
		`{{template "header" .}}<h1>{{.Post.Title}}</h1>`+
			`<nav>{{range .TOC}}<a href="#{{.ID}}">{{.Text}}</a>{{end}}</nav>`+
			`{{.Post.Body}}{{template "footer" .}}`)
	write(t, filepath.Join(cfg.LayoutsDir, "page.html"),
		`{{template "header" .}}<h1>{{.Post.Title}}</h1>{{.Post.Body}}{{template "footer" .}}`)

	write(t, filepath.Join(cfg.ContentDir, "posts", "older.md"), `---
title: Older Post
tags:
  - history
date: 2023-01-01
description: The older one.
---
## Background

Old words.
`)
	write(t, filepath.Join(cfg.ContentDir, "posts", "newer.md"), `---
title: Newer Post
date: 2024-01-01
description: The newer one.
---
No headings here.
`)
	write(t, filepath.Join(cfg.ContentDir, "about.md"), "---\ntitle: About\n---\nAbout me.\n")
	write(t, filepath.Join(cfg.StaticDir, "css", "site.css"), "body{}")

	return cfg
}

func readOutput(t *testing.T, cfg config.Config, parts ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(append([]string{cfg.OutputDir}, parts...)...))
	require.NoError(t, err)
	return string(data)
}

func TestBuild(t *testing.T) {
	cfg := fixtureSite(t)
	builder := NewBuilder(cfg, zerolog.Nop())

	result, err := builder.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Posts, 2)
	assert.Equal(t, "Newer Post", result.Posts[0].Title, "posts are sorted newest first")
	require.NotNil(t, result.Index)

	home := readOutput(t, cfg, "index.html")
	assert.Contains(t, home, "Fixture Site")
	assert.Contains(t, home, "/blog/newer-post/")

	listing := readOutput(t, cfg, "blog", "index.html")
	newerAt := strings.Index(listing, "Newer Post")
	olderAt := strings.Index(listing, "Older Post")
	require.GreaterOrEqual(t, newerAt, 0)
	require.GreaterOrEqual(t, olderAt, 0)
	assert.Less(t, newerAt, olderAt, "listing renders newest first")

	postPage := readOutput(t, cfg, "blog", "older-post", "index.html")
	assert.Contains(t, postPage, "Older Post")
	assert.Contains(t, postPage, `#background`, "table of contents links headings")
	assert.Contains(t, postPage, "Old words.")

	aboutPage := readOutput(t, cfg, "about", "index.html")
	assert.Contains(t, aboutPage, "About me.")

	rss := readOutput(t, cfg, "rss.xml")
	assert.Contains(t, rss, "https://fixture.test/blog/newer-post/")

	var entries []search.Entry
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg, "search-index.json")), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Newer Post", entries[0].Title)

	assert.Equal(t, "body{}", readOutput(t, cfg, "css", "site.css"), "static assets are copied through")
}

func TestBuildCleansOutputDir(t *testing.T) {
	cfg := fixtureSite(t)
	write(t, filepath.Join(cfg.OutputDir, "stale.html"), "old build artifact")

	_, err := NewBuilder(cfg, zerolog.Nop()).Build(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "stale.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildMissingContentDir(t *testing.T) {
	cfg := fixtureSite(t)
	require.NoError(t, os.RemoveAll(cfg.ContentDir))

	_, err := NewBuilder(cfg, zerolog.Nop()).Build(context.Background())
	assert.Error(t, err)
}

func TestBuildMissingBaseLayout(t *testing.T) {
	cfg := fixtureSite(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.LayoutsDir, "base.html")))

	_, err := NewBuilder(cfg, zerolog.Nop()).Build(context.Background())
	assert.Error(t, err)
}

func TestBuildMalformedPostAborts(t *testing.T) {
	cfg := fixtureSite(t)
	write(t, filepath.Join(cfg.ContentDir, "posts", "broken.md"), "no front-matter here\n")

	_, err := NewBuilder(cfg, zerolog.Nop()).Build(context.Background())
	assert.Error(t, err)
}

func TestBuildSlugCollisionLastWins(t *testing.T) {
	cfg := fixtureSite(t)
	write(t, filepath.Join(cfg.ContentDir, "posts", "dupe.md"), `---
title: "Newer Post"
date: 2022-06-01
description: Same slug, different file.
---
The colliding body.
`)

	result, err := NewBuilder(cfg, zerolog.Nop()).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Posts, 3)

	// Both posts render to /blog/newer-post/; the later one in sorted order
	// (the older duplicate) overwrites the first.
	page := readOutput(t, cfg, "blog", "newer-post", "index.html")
	assert.Contains(t, page, "The colliding body.")
}
