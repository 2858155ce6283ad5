// Package fixture serves the static HTML pages page objects are tested against.
package fixture

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

//go:embed testdata/*.html
var embedded embed.FS

// PagesPath is the route prefix fixture pages are served under.
const PagesPath = "/pages"

// Config contains configuration for the fixture server
type Config struct {
	// Dir is served instead of the bundled pages when set.
	Dir   string
	Port  string
	Debug bool
}

// Server serves fixture pages over HTTP.
type Server struct {
	engine *gin.Engine
	server *http.Server
	pages  fs.FS

	mu   sync.Mutex
	addr string
}

// NewServer creates a new fixture server instance
func NewServer(cfg Config) (*Server, error) {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	pages, err := pagesFS(cfg.Dir)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.Debug {
		engine.Use(gin.Logger())
	}
	engine.Use(noCacheMiddleware())

	s := &Server{
		engine: engine,
		pages:  pages,
		server: &http.Server{Addr: ":" + cfg.Port, Handler: engine},
	}
	s.setupRoutes()
	return s, nil
}

func pagesFS(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embedded, "testdata")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("fixture dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixture dir %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

func (s *Server) setupRoutes() {
	s.engine.StaticFS(PagesPath, http.FS(s.pages))

	s.engine.GET("/", func(c *gin.Context) {
		names, err := s.Pages()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "wiselenium fixture server",
			"pages":   names,
		})
	})

	s.engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}

// Handler returns the HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Pages lists the served page names without extension.
func (s *Server) Pages() ([]string, error) {
	matches, err := fs.Glob(s.pages, "*.html")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, path.Ext(m)))
	}
	sort.Strings(names)
	return names, nil
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	log.Debugf("Starting fixture server on %s", ln.Addr())
	go func() {
		if errServe := s.server.Serve(ln); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			log.Errorf("fixture server stopped: %v", errServe)
		}
	}()
	return nil
}

// Stop gracefully stops the fixture server
func (s *Server) Stop(ctx context.Context) error {
	log.Debug("Stopping fixture server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown fixture server: %w", err)
	}
	log.Debug("Fixture server stopped")
	return nil
}

// BaseURL is the root URL of the started server.
func (s *Server) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr == "" {
		return ""
	}
	host, port, err := net.SplitHostPort(s.addr)
	if err != nil {
		return "http://" + s.addr
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// URL returns the address of the named page on the started server.
func (s *Server) URL(name string) string {
	return PageURL(s.BaseURL(), name)
}

// PageURL returns the address of the named page under base. Names without
// an extension get ".html".
func PageURL(base, name string) string {
	if path.Ext(name) == "" {
		name += ".html"
	}
	return strings.TrimSuffix(base, "/") + PagesPath + "/" + strings.TrimPrefix(name, "/")
}

func noCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
