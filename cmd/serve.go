package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/folio-ssg/folio/internal/search"
	"github.com/folio-ssg/folio/internal/site"
)

var serverPort int

const rebuildDebounce = 500 * time.Millisecond

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and rebuilds on changes",
	Long: `The serve command performs an initial build, then starts a local web
server over the output directory. Content, layouts, and static directories
are watched; changes trigger a rebuild. Ranked fuzzy search over the post
list is exposed at /api/search?q=.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		builder := site.NewBuilder(appConfig, log.Logger)

		result, err := builder.Build(cmd.Context())
		if err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		srv := &devServer{}
		srv.setIndex(result.Index)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("creating file watcher: %w", err)
		}
		defer watcher.Close()

		go watchAndRebuild(cmd, watcher, builder, srv)

		for _, dir := range []string{appConfig.ContentDir, appConfig.LayoutsDir, appConfig.StaticDir} {
			if _, statErr := os.Stat(dir); os.IsNotExist(statErr) {
				log.Debug().Str("dir", dir).Msg("directory not found, not watching")
				continue
			}
			if err := watchRecursively(watcher, dir); err != nil {
				return err
			}
		}

		addr := fmt.Sprintf(":%d", serverPort)
		log.Info().
			Str("dir", appConfig.OutputDir).
			Str("url", fmt.Sprintf("http://localhost%s", addr)).
			Msg("serving site")

		return http.ListenAndServe(addr, srv.router())
	},
}

// watchAndRebuild debounces watcher events into full rebuilds. New
// directories are added to the watch as they appear, since fsnotify does not
// watch recursively on its own.
func watchAndRebuild(cmd *cobra.Command, watcher *fsnotify.Watcher, builder *site.Builder, srv *devServer) {
	var buildTimer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change detected")

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					log.Warn().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
				}
			}

			if buildTimer != nil {
				buildTimer.Stop()
			}
			buildTimer = time.AfterFunc(rebuildDebounce, func() {
				log.Info().Msg("rebuilding site")
				result, err := builder.Build(cmd.Context())
				if err != nil {
					log.Error().Err(err).Msg("rebuild failed")
					return
				}
				srv.setIndex(result.Index)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func watchRecursively(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if watchErr := watcher.Add(path); watchErr != nil {
				return fmt.Errorf("watching %s: %w", path, watchErr)
			}
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// devServer serves the built site plus a live search endpoint. The index is
// swapped wholesale after every rebuild; searches only ever see a complete
// index.
type devServer struct {
	mu    sync.RWMutex
	index *search.Index
}

func (s *devServer) setIndex(idx *search.Index) {
	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
}

func (s *devServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Get("/api/search", s.handleSearch)
	r.Handle("/*", s.fileHandler())
	return r
}

func (s *devServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()

	results := idx.Search(r.URL.Query().Get("q"))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(search.EntriesOf(results)); err != nil {
		log.Warn().Err(err).Msg("failed to encode search results")
	}
}

// fileHandler serves the output directory with caching disabled and without
// directory listings.
func (s *devServer) fileHandler() http.Handler {
	fs := http.FileServer(http.Dir(appConfig.OutputDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			if _, err := os.Stat(filepath.Join(appConfig.OutputDir, r.URL.Path, "index.html")); os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fs.ServeHTTP(w, r)
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
