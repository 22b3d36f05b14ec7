package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/teemow/docfiler/internal/filing"
	"github.com/teemow/docfiler/internal/instrumentation"
	"github.com/teemow/docfiler/internal/logging"
)

const (
	// DefaultResolveAddr is the default address for the resolve server.
	DefaultResolveAddr = ":8080"

	errMissingFilename = "parameter 'filename' is required"
	errFileNotFound    = "file not found"
	errLookupFailed    = "lookup failed"
)

// ResolveResponse is the JSON body of a resolve lookup. Exactly one of URL
// and Error is set. Lookups never produce a non-200 HTTP status; failures
// are reported in the Error field.
type ResolveResponse struct {
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// ResolveHandler resolves filenames to shareable links. Lookups consult the
// canonical root folder only; archived versions are not searched.
type ResolveHandler struct {
	root   filing.Folder
	logger *slog.Logger
}

// NewResolveHandler creates a resolve handler over the given root folder.
func NewResolveHandler(root filing.Folder, logger *slog.Logger) *ResolveHandler {
	return &ResolveHandler{
		root:   root,
		logger: logging.WithComponent(logger, "resolve"),
	}
}

// ServeHTTP handles GET /resolve?filename=<name>.
func (h *ResolveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("filename")
	if name == "" {
		h.write(w, ResolveResponse{Error: errMissingFilename})
		return
	}

	url, err := h.resolve(r.Context(), name)
	if err != nil {
		h.logger.Error("filename lookup failed",
			logging.Filename(name),
			logging.Err(err))
		h.write(w, ResolveResponse{Error: errLookupFailed})
		return
	}
	if url == "" {
		h.write(w, ResolveResponse{Error: errFileNotFound})
		return
	}

	h.write(w, ResolveResponse{URL: url})
}

// resolve returns the shareable link of the first file with the exact name,
// or "" when no such file exists.
func (h *ResolveHandler) resolve(ctx context.Context, name string) (string, error) {
	files, err := h.root.FilesNamed(ctx, name)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", nil
	}
	return files[0].WebViewLink(), nil
}

func (h *ResolveHandler) write(w http.ResponseWriter, resp ResolveResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// ResolveServerConfig holds configuration for the resolve server.
type ResolveServerConfig struct {
	// Addr is the address to bind the resolve server to (e.g., ":8080").
	Addr string

	// Root is the canonical root folder that lookups are confined to.
	Root filing.Folder

	// Health serves the probe endpoints alongside the resolve endpoint.
	Health *HealthChecker

	// Logger receives request logs.
	Logger *slog.Logger

	// Metrics optionally records request counts and latencies.
	Metrics *instrumentation.Metrics
}

// ResolveServer serves the resolve endpoint and health probes.
type ResolveServer struct {
	httpServer *http.Server
	addr       string
}

// NewResolveServer creates a resolve server with the given configuration.
func NewResolveServer(config ResolveServerConfig) *ResolveServer {
	if config.Addr == "" {
		config.Addr = DefaultResolveAddr
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/resolve", NewResolveHandler(config.Root, config.Logger))
	if config.Health != nil {
		config.Health.RegisterHealthEndpoints(mux)
	}

	var handler http.Handler = mux
	if config.Metrics != nil {
		handler = withRequestMetrics(config.Metrics, mux)
	}

	return &ResolveServer{
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		addr: config.Addr,
	}
}

// Start starts the resolve server in a blocking manner.
func (s *ResolveServer) Start() error {
	slog.Info("starting resolve server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the resolve server.
func (s *ResolveServer) Shutdown(ctx context.Context) error {
	slog.Info("shutting down resolve server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured address for the resolve server.
func (s *ResolveServer) Addr() string {
	return s.addr
}

// statusRecorder captures the response status for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestMetrics records request counts and latencies per method and path.
func withRequestMetrics(metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(started))
	})
}
