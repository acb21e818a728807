// Package site orchestrates a full build: load content, sort it, render the
// page set, the RSS feed, and the search index into the output directory.
package site

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/folio-ssg/folio/internal/config"
	"github.com/folio-ssg/folio/internal/content"
	"github.com/folio-ssg/folio/internal/feed"
	"github.com/folio-ssg/folio/internal/search"
	"github.com/folio-ssg/folio/internal/toc"
)

const postsSubdir = "posts"

// Site is the root template context shared by every page.
type Site struct {
	Config config.Config
	Posts  []*content.Post
}

// Recent returns up to n of the newest posts, for the home page.
func (s *Site) Recent(n int) []*content.Post {
	if n > len(s.Posts) {
		n = len(s.Posts)
	}
	return s.Posts[:n]
}

// Result is what a build leaves behind for callers that keep running, like
// the dev server's search endpoint.
type Result struct {
	Posts []*content.Post
	Index *search.Index
}

// Builder renders the site. It is reusable across builds; each Build call
// re-reads content and layouts from disk.
type Builder struct {
	cfg    config.Config
	loader *content.Loader
	log    zerolog.Logger
}

func NewBuilder(cfg config.Config, logger zerolog.Logger) *Builder {
	return &Builder{
		cfg:    cfg,
		loader: content.New(cfg.Author),
		log:    logger,
	}
}

// Build produces the whole site under the configured output directory. The
// output directory is removed and recreated first. Any failure aborts the
// build; there is no partial-success mode.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	cfg := b.cfg

	if _, err := os.Stat(cfg.ContentDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("content directory %s not found", cfg.ContentDir)
	}
	if _, err := os.Stat(cfg.LayoutsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("layouts directory %s not found", cfg.LayoutsDir)
	}

	b.log.Info().Str("outputDir", cfg.OutputDir).Str("baseURL", cfg.BaseURL).Msg("starting build")

	if err := os.RemoveAll(cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("cleaning output directory %s: %w", cfg.OutputDir, err)
	}
	if err := os.MkdirAll(cfg.OutputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", cfg.OutputDir, err)
	}

	if _, err := os.Stat(cfg.StaticDir); err == nil {
		if err := copyDirContents(cfg.StaticDir, cfg.OutputDir); err != nil {
			return nil, fmt.Errorf("copying static assets: %w", err)
		}
		b.log.Debug().Str("dir", cfg.StaticDir).Msg("static assets copied")
	} else {
		b.log.Debug().Str("dir", cfg.StaticDir).Msg("no static directory, skipping copy")
	}

	templates, err := parseLayouts(cfg.LayoutsDir)
	if err != nil {
		return nil, err
	}

	posts, err := b.loader.Load(ctx, filepath.Join(cfg.ContentDir, postsSubdir))
	if err != nil {
		return nil, err
	}
	content.SortByDate(posts)
	b.log.Info().Int("posts", len(posts)).Msg("content loaded")

	pages, err := b.loader.Load(ctx, cfg.ContentDir)
	if err != nil {
		return nil, err
	}

	site := &Site{Config: cfg, Posts: posts}

	if err := b.renderPages(templates, site, posts, pages); err != nil {
		return nil, err
	}

	rss, err := feed.Build(cfg, posts)
	if err != nil {
		return nil, err
	}
	if err := writeOutput(cfg.OutputDir, "rss.xml", []byte(rss)); err != nil {
		return nil, err
	}

	idx := search.NewIndex(posts)
	indexJSON, err := json.MarshalIndent(idx.Entries(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding search index: %w", err)
	}
	if err := writeOutput(cfg.OutputDir, "search-index.json", indexJSON); err != nil {
		return nil, err
	}

	b.log.Info().Msg("build completed")
	return &Result{Posts: posts, Index: idx}, nil
}

// renderPages writes the home page, the blog listing, every post page, and
// every standalone content page.
func (b *Builder) renderPages(templates *layoutSet, site *Site, posts, pages []*content.Post) error {
	if err := templates.render(filepath.Join(b.cfg.OutputDir, "index.html"), layoutHome, pageContext{Site: site}); err != nil {
		return err
	}

	if err := templates.render(filepath.Join(b.cfg.OutputDir, "blog", "index.html"), layoutList, pageContext{Site: site}); err != nil {
		return err
	}

	// Collisions are not detected at load time; warn here and let the last
	// post win, matching the routing behavior of the earlier site versions.
	written := map[string]string{}
	for _, p := range posts {
		out := filepath.Join(b.cfg.OutputDir, "blog", p.Slug(), "index.html")
		if prev, ok := written[out]; ok {
			b.log.Warn().
				Str("slug", p.Slug()).
				Str("kept", p.SourcePath).
				Str("overwritten", prev).
				Msg("slug collision, last post wins")
		}
		written[out] = p.SourcePath

		headings, err := toc.Extract(string(p.Body))
		if err != nil {
			return fmt.Errorf("extracting table of contents of %s: %w", p.SourcePath, err)
		}
		if err := templates.render(out, layoutPost, pageContext{Site: site, Post: p, TOC: headings}); err != nil {
			return err
		}
	}

	for _, p := range pages {
		out := filepath.Join(b.cfg.OutputDir, p.Slug(), "index.html")
		if err := templates.render(out, layoutPage, pageContext{Site: site, Post: p}); err != nil {
			return err
		}
	}
	return nil
}

func writeOutput(outputDir, name string, data []byte) error {
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
