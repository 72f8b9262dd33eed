package dev

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/van-dev/van/internal/config"
	"github.com/van-dev/van/internal/project"
	"github.com/van-dev/van/pkg/compiler"
	"github.com/van-dev/van/pkg/middleware"
)

// Server is the Van development server. Pages are compiled per request from
// the current source tree, so a browser refresh always reflects the latest
// files even without the reload socket.
type Server struct {
	cfg     *config.Config
	reload  *ReloadServer
	watcher *Watcher
	httpSrv *http.Server
}

// NewServer creates a dev server for the given project config.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	watchPaths := []string{cfg.SrcPath()}
	if cfg.Dir() != "" {
		watchPaths = append(watchPaths, filepath.Join(cfg.Dir(), "mock"))
	}
	watchPaths = append(watchPaths, cfg.Dev.Watch...)
	ignore := append(append([]string{}, DefaultIgnore...), cfg.Dev.Ignore...)
	watcher, err := NewWatcher(WatcherConfig{Paths: watchPaths, Ignore: ignore})
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		reload:  NewReloadServer(),
		watcher: watcher,
	}

	r := chi.NewRouter()
	r.Use(middleware.Prometheus())
	r.Use(middleware.Tracing(middleware.WithRequestFilter(func(req *http.Request) bool {
		return !strings.HasPrefix(req.URL.Path, "/__van/") && req.URL.Path != "/metrics"
	})))
	r.Get("/__van/ws", s.reload.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/*", s.handlePage)

	s.httpSrv = &http.Server{
		Addr:    cfg.DevAddress(),
		Handler: r,
	}

	watcher.OnChange(s.onChange)
	return s, nil
}

// Start runs the watcher and HTTP server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	go s.watcher.Start(ctx)

	errC := make(chan error, 1)
	go func() {
		log.Printf("[van] dev server listening on %s", s.cfg.DevURL())
		errC <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return s.Stop(context.Background())
	case err := <-errC:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Stop shuts down the HTTP server and disconnects reload clients.
func (s *Server) Stop(ctx context.Context) error {
	s.reload.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// onChange handles a debounced batch of file changes.
func (s *Server) onChange(changes []Change) {
	cssOnly := true
	for _, c := range changes {
		log.Printf("[van] changed: %s", c.Path)
		if c.Type != ChangeStyle {
			cssOnly = false
		}
	}
	s.reload.ClearError()
	if cssOnly {
		s.reload.NotifyCSS(changes[0].Path)
	} else {
		s.reload.NotifyReload()
	}
}

// handlePage maps the URL to a page entry, compiles it, and serves the
// result with the reload client injected.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	p, err := project.Collect(s.cfg)
	if err != nil {
		s.serveError(w, err)
		return
	}

	entry, ok := s.resolveEntry(p, r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	start := time.Now()
	result, err := compiler.Compile(entry, p.Files, compiler.Options{
		Debug:       true,
		FileOrigins: p.Origins,
	})
	middleware.RecordCompile(time.Since(start), err)
	if err != nil {
		s.reload.NotifyError(err.Error())
		s.serveError(w, err)
		return
	}

	page := result.HTML
	if mock, err := p.MockFor(entry); err == nil && mock != nil {
		page = project.InterpolateMock(page, mock)
	}
	page = injectClient(page)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// resolveEntry maps a request path like "/" or "/blog/post" to a page entry
// under the pages directory.
func (s *Server) resolveEntry(p *project.Project, urlPath string) (string, bool) {
	route := strings.Trim(urlPath, "/")
	switch {
	case route == "":
		route = "index"
	case strings.HasSuffix(urlPath, "/"):
		route += "/index"
	}
	route = strings.TrimSuffix(route, ".html")

	for _, entry := range p.PageEntries() {
		name := strings.TrimSuffix(p.PageName(entry), ".html")
		if name == route {
			return entry, true
		}
	}
	return "", false
}

func (s *Server) serveError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, errorPageTemplate, html.EscapeString(err.Error()), DevClientScript)
}

// injectClient inserts the reload client script before </body>, or appends
// it when the page has no body tag.
func injectClient(page string) string {
	lower := strings.ToLower(page)
	if idx := strings.LastIndex(lower, "</body>"); idx >= 0 {
		return page[:idx] + DevClientScript + "\n" + page[idx:]
	}
	return page + "\n" + DevClientScript
}

const errorPageTemplate = `<!DOCTYPE html>
<html>
<head><title>Van compile error</title></head>
<body style="background:#141414;color:#ff8080;font-family:monospace;padding:2rem">
<h1 style="color:#fff">Compile error</h1>
<pre style="white-space:pre-wrap">%s</pre>
%s
</body>
</html>
`
