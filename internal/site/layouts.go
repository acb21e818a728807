package site

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/folio-ssg/folio/internal/content"
	"github.com/folio-ssg/folio/internal/search"
	"github.com/folio-ssg/folio/internal/toc"
)

// Conventional layout names. base.html wraps every page; the others are the
// per-page-kind layouts executed into it.
const (
	layoutBase = "base.html"
	layoutHome = "home.html"
	layoutList = "list-posts.html"
	layoutPost = "single-post.html"
	layoutPage = "page.html"
)

// pageContext is the data every layout executes with. Post and TOC are nil
// on the home and listing pages.
type pageContext struct {
	Site *Site
	Post *content.Post
	TOC  []toc.Heading
}

var titleCaser = cases.Title(language.English)

var layoutFuncs = template.FuncMap{
	"displayDate": func(t time.Time) string { return t.Format(search.DateLayout) },
	"titlecase":   titleCaser.String,
}

type layoutSet struct {
	templates *template.Template
}

// parseLayouts loads every .html file under dir. base.html and the partials
// are parsed first so page layouts can redefine blocks they declare, same
// staging the build has always used.
func parseLayouts(dir string) (*layoutSet, error) {
	var basePath string
	var partials, others []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}
		switch {
		case d.Name() == layoutBase && filepath.Dir(path) == dir:
			basePath = path
		case strings.HasPrefix(filepath.Dir(path), filepath.Join(dir, "partials")):
			partials = append(partials, path)
		default:
			others = append(others, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("finding layout files in %s: %w", dir, err)
	}
	if basePath == "" {
		return nil, fmt.Errorf("%s not found in layouts directory %s", layoutBase, dir)
	}

	tpl := template.New(layoutBase).Funcs(layoutFuncs)
	tpl, err = tpl.ParseFiles(append([]string{basePath}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("parsing base layout and partials: %w", err)
	}
	if len(others) > 0 {
		tpl, err = tpl.ParseFiles(others...)
		if err != nil {
			return nil, fmt.Errorf("parsing page layouts: %w", err)
		}
	}
	return &layoutSet{templates: tpl}, nil
}

// render executes the named layout into path, creating parent directories
// as needed.
func (ls *layoutSet) render(path, layout string, data any) error {
	if ls.templates.Lookup(layout) == nil {
		return fmt.Errorf("layout %s not found", layout)
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	if err := ls.templates.ExecuteTemplate(out, layout, data); err != nil {
		return fmt.Errorf("executing layout %s for %s: %w", layout, path, err)
	}
	return nil
}
