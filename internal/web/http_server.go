package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rook-computer/matrixrain/internal/assets"
)

type logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type HTTPServer struct {
	Config ServerConfig

	// StaticDir, when set to an existing directory, is served at "/" instead
	// of the embedded control page. The API remains available under /api/v1/.
	StaticDir string

	API    APIV1Config
	Logger logger

	// Routes, when set, registers extra handlers next to the API.
	Routes func(mux *http.ServeMux)

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	closed bool
}

func NewHTTPServer(cfg ServerConfig, api APIV1Config) *HTTPServer {
	return &HTTPServer{Config: cfg, API: api}
}

// Addr is the bound listen address once started.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("web server already stopped")
	}
	if s.srv != nil {
		return nil
	}

	addr := s.Config.ListenAddr
	if addr == "" {
		addr = DefaultDeviceListenAddr
	}

	mux := NewDefaultMux(s.StaticDir, s.API)
	if s.Routes != nil {
		s.Routes(mux)
	}
	var handler http.Handler = mux
	if s.Config.DevMode {
		handler = WithDevCORS(handler)
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.srv = nil
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	s.infof("listening on %s (dev=%v)", ln.Addr(), s.Config.DevMode)

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	srv := s.srv
	go func() {
		err := srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		s.errorf("serve: %v", err)
	}()

	return nil
}

func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.srv
	ln := s.ln
	s.srv = nil
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *HTTPServer) infof(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Infof("web", format, args...)
	}
}

func (s *HTTPServer) errorf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Errorf("web", format, args...)
	}
}

// StaticUIHandler serves the embedded control page, or dir when it exists.
func StaticUIHandler(dir string) http.Handler {
	if dir == "" {
		fileServer := http.FileServer(http.FS(assets.WebUI))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Clean path to avoid oddities.
			r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
			fileServer.ServeHTTP(w, r)
		})
	}

	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
	}

	fileServer := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
		fileServer.ServeHTTP(w, r)
	})
}
