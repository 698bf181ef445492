// Package api serves the reference finder over HTTP: single-text scans and
// annotation, verse checks, batch scan jobs and a websocket feed of job
// progress.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/FocuswithJustin/RefFinder/core/scripture"
	"github.com/FocuswithJustin/RefFinder/core/versification"
	"github.com/FocuswithJustin/RefFinder/internal/cache"
	"github.com/FocuswithJustin/RefFinder/internal/config"
	"github.com/FocuswithJustin/RefFinder/internal/logging"
	"github.com/FocuswithJustin/RefFinder/internal/server"
)

// Deps are the finder components the server answers with.
type Deps struct {
	// Versification lists books for /books. Nil selects the configured
	// built-in system.
	Versification *versification.Versification
	// Oracle checks verses. Nil uses Versification.
	Oracle scripture.ContextValidator
	// Aliases resolves book names. Nil uses the built-in table.
	Aliases *scripture.AliasTable
	Version string
}

// Server is the HTTP API.
type Server struct {
	cfg       config.Config
	version   string
	v         *versification.Versification
	oracle    scripture.ContextValidator
	aliases   *scripture.AliasTable
	annotator scripture.Annotator
	finder    *scripture.Finder
	lenient   *scripture.Finder // keeps invalid references
	results   *cache.LRU[string, []scripture.Reference]
	jobs      *JobStore
	hub       *Hub
	limiter   *RateLimiter
	started   time.Time
	cancel    context.CancelFunc
}

// New builds a server. The websocket hub starts immediately; Close stops it
// along with any running jobs.
func New(cfg config.Config, deps Deps) (*Server, error) {
	v := deps.Versification
	if v == nil {
		var err error
		if v, err = versification.Get(versification.System(cfg.Finder.System)); err != nil {
			return nil, err
		}
	}
	oracle := deps.Oracle
	if oracle == nil {
		oracle = scripture.Sync(v)
	}
	aliases := deps.Aliases
	if aliases == nil {
		aliases = scripture.DefaultAliases()
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:       cfg,
		version:   version,
		v:         v,
		oracle:    oracle,
		aliases:   aliases,
		annotator: scripture.Annotator{ValidClass: cfg.Finder.ValidClass, InvalidClass: cfg.Finder.InvalidClass},
		results: cache.New[string, []scripture.Reference](cache.Config{
			MaxSize: cfg.Finder.ResultCacheSize,
			TTL:     cfg.Finder.ResultCacheTTL,
		}),
		hub:     NewHub(),
		started: time.Now(),
		cancel:  cancel,
	}
	s.finder = scripture.NewFinder(oracle, scripture.WithAliases(aliases))
	s.lenient = scripture.NewFinder(oracle, scripture.WithAliases(aliases), scripture.WithInvalid())
	s.jobs = NewJobStore(ctx, JobStoreConfig{
		Workers:      cfg.Jobs.Workers,
		Retention:    cfg.Jobs.Retention,
		MaxTextBytes: cfg.Finder.MaxTextBytes,
	})
	if cfg.RateLimit.RequestsPerMinute > 0 {
		s.limiter = NewRateLimiter(RateLimiterConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			BurstSize:         cfg.RateLimit.Burst,
		})
	}
	go s.hub.Run(ctx)
	return s, nil
}

// Close cancels running jobs and disconnects websocket clients.
func (s *Server) Close() {
	s.cancel()
}

// Handler returns the routed API wrapped in its middleware.
func (s *Server) Handler() http.Handler {
	cors := server.DefaultCORSConfig()
	cors.AllowedOrigins = s.cfg.CORS.Origins()

	mws := []server.Middleware{
		logging.CombinedMiddleware,
		server.CORS(cors),
	}
	if s.limiter != nil {
		mws = append(mws, s.limiter.Middleware)
	}
	mws = append(mws,
		server.SecurityHeaders(server.APICSPConfig()),
		server.RequireJSON,
		// Room for JSON quoting around the largest accepted text.
		server.MaxBytes(int64(s.maxTextBytes())*2+4096),
	)
	return server.Chain(s.routes(), mws...)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /books", s.handleBooks)
	mux.HandleFunc("POST /references", s.handleReferences)
	mux.HandleFunc("POST /annotate", s.handleAnnotate)
	mux.HandleFunc("GET /validate", s.handleValidate)
	mux.HandleFunc("POST /parts", s.handleParts)
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("DELETE /jobs/{id}", s.handleCancelJob)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return jsonNotFound(mux)
}

// jsonNotFound answers requests that match no route with a JSON 404. Paths
// that exist under another method keep the mux's 405 and Allow header.
func jsonNotFound(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(&notFoundWriter{ResponseWriter: w}, r)
	})
}

// notFoundWriter replaces a plain-text 404 body with the API error envelope.
type notFoundWriter struct {
	http.ResponseWriter
	replaced bool
}

func (w *notFoundWriter) WriteHeader(status int) {
	if status != http.StatusNotFound {
		w.ResponseWriter.WriteHeader(status)
		return
	}
	w.replaced = true
	respondError(w.ResponseWriter, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
}

func (w *notFoundWriter) Write(p []byte) (int, error) {
	if w.replaced {
		return len(p), nil
	}
	return w.ResponseWriter.Write(p)
}

// Start serves until ctx is done, then shuts down gracefully within the
// configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	sc := s.cfg.Server
	if (sc.TLSCertFile == "") != (sc.TLSKeyFile == "") {
		logging.SecurityEvent("tls_misconfigured", "api", "cert", sc.TLSCertFile, "key", sc.TLSKeyFile)
		return errors.New("both TLS certificate and key files are required")
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port)))
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	protocol := "http"
	errc := make(chan error, 1)
	go func() {
		if sc.TLSEnabled() {
			errc <- srv.ServeTLS(ln, sc.TLSCertFile, sc.TLSKeyFile)
			return
		}
		errc <- srv.Serve(ln)
	}()
	if sc.TLSEnabled() {
		protocol = "https"
	}
	logging.ServerStartup("api", protocol, sc.Port, "addr", ln.Addr().String(), "system", string(s.v.System))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
	defer cancel()
	logging.Info("shutting down api server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) maxTextBytes() int {
	if s.cfg.Finder.MaxTextBytes > 0 {
		return s.cfg.Finder.MaxTextBytes
	}
	return 1 << 20
}
