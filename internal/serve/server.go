package serve

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sloghttp "github.com/samber/slog-http"
)

// Server exposes the most recent rendered digest over HTTP so the report
// can be read from a browser without digging through the output directory.
type Server struct {
	addr      string
	outputDir string
	logger    *slog.Logger
}

func New(addr, outputDir string) *Server {
	return &Server{
		addr:      addr,
		outputDir: outputDir,
		logger:    slog.Default(),
	}
}

func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleLatestHTML)
	mux.HandleFunc("GET /archive.json", s.handleLatestJSON)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.logger.Info("Digest server starting", "addr", s.addr, "output_dir", s.outputDir)

	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)

	server := &http.Server{
		Addr:         s.addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

func (s *Server) handleLatestHTML(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.serveLatest(w, r, ".html", "text/html; charset=utf-8")
}

func (s *Server) handleLatestJSON(w http.ResponseWriter, r *http.Request) {
	s.serveLatest(w, r, ".json", "application/json; charset=utf-8")
}

func (s *Server) serveLatest(w http.ResponseWriter, r *http.Request, ext, contentType string) {
	path, err := s.latestArtifact(ext)
	if err != nil {
		s.logger.Error("Error locating digest artifact", "ext", ext, "error", err)
		http.Error(w, "Failed to read output directory", http.StatusInternalServerError)
		return
	}
	if path == "" {
		http.Error(w, "No digest has been generated yet", http.StatusNotFound)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("Error reading digest artifact", "path", path, "error", err)
		http.Error(w, "Failed to read digest", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// latestArtifact returns the newest digest_<timestamp><ext> file, relying on
// the timestamp naming scheme sorting lexicographically.
func (s *Server) latestArtifact(ext string) (string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "digest_") || filepath.Ext(name) != ext {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(s.outputDir, names[len(names)-1]), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
