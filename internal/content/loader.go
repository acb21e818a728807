package content

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/araddon/dateparse"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"golang.org/x/sync/errgroup"
)

// DescriptionLength is the hard character budget for descriptions derived
// from the post body. The cut is rune-exact with no word-boundary trimming.
const DescriptionLength = 200

// matter is the front-matter schema. Every field is optional; defaults are
// applied in buildPost.
type matter struct {
	Title       string   `yaml:"title"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
	Date        string   `yaml:"date"`
	PubDate     string   `yaml:"pubDate"`
	UpdatedDate string   `yaml:"updatedDate"`
	Description string   `yaml:"description"`
}

// Loader turns Markdown files into Post records. It holds the configured
// markdown pipeline and the per-field defaults; construct one with New and
// reuse it across builds.
type Loader struct {
	md            goldmark.Markdown
	stripper      *bluemonday.Policy
	defaultAuthor string
	now           func() time.Time
}

// New returns a Loader whose markdown pipeline renders GFM with auto heading
// IDs and chroma-highlighted fenced code blocks. defaultAuthor fills the
// author field of posts that do not name one.
func New(defaultAuthor string) *Loader {
	return &Loader{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("monokai"),
					highlighting.WithFormatOptions(
						chromahtml.WithClasses(true),
					),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
			),
		),
		stripper:      bluemonday.StrictPolicy(),
		defaultAuthor: defaultAuthor,
		now:           time.Now,
	}
}

// Load reads every .md file in dir and returns one Post per file, in
// directory-listing order. Files are read and parsed concurrently and joined
// before returning. Any unreadable file or malformed front-matter fails the
// whole load; there is no per-file fallback. An empty directory yields an
// empty slice. Results are never cached: each call re-reads the directory.
func (l *Loader) Load(ctx context.Context, dir string) ([]*Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".md") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	posts := make([]*Post, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			post, err := l.LoadFile(path)
			if err != nil {
				return err
			}
			posts[i] = post
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return posts, nil
}

// LoadFile parses a single article file into a Post.
func (l *Loader) LoadFile(path string) (*Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var fm matter
	body, err := frontmatter.MustParse(bytes.NewReader(raw), &fm)
	if err != nil {
		return nil, fmt.Errorf("parsing front-matter of %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := l.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("rendering markdown of %s: %w", path, err)
	}

	return l.buildPost(path, fm, buf.String())
}

// buildPost applies the per-field defaults and derivations of the content
// model to raw front-matter plus rendered body.
func (l *Loader) buildPost(path string, fm matter, rendered string) (*Post, error) {
	post := &Post{
		Title:      fm.Title,
		Author:     fm.Author,
		Tags:       fm.Tags,
		Body:       template.HTML(rendered),
		SourcePath: path,
	}
	if post.Title == "" {
		post.Title = DefaultTitle
	}
	if post.Author == "" {
		post.Author = l.defaultAuthor
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	dateStr := fm.Date
	if dateStr == "" {
		dateStr = fm.PubDate
	}
	if dateStr == "" {
		post.Date = l.now()
	} else {
		d, err := dateparse.ParseAny(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q of %s: %w", dateStr, path, err)
		}
		post.Date = d
	}
	if fm.UpdatedDate != "" {
		u, err := dateparse.ParseAny(fm.UpdatedDate)
		if err != nil {
			return nil, fmt.Errorf("parsing updatedDate %q of %s: %w", fm.UpdatedDate, path, err)
		}
		post.Updated = u
	}

	post.Description = fm.Description
	if post.Description == "" {
		post.Description = l.deriveDescription(rendered)
	}
	return post, nil
}

// deriveDescription strips the rendered body down to plain text and cuts it
// at DescriptionLength runes.
func (l *Loader) deriveDescription(rendered string) string {
	plain := html.UnescapeString(l.stripper.Sanitize(rendered))
	plain = strings.Join(strings.Fields(plain), " ")
	runes := []rune(plain)
	if len(runes) > DescriptionLength {
		runes = runes[:DescriptionLength]
	}
	return string(runes)
}
