// Package demoserver is a stand-in analyzer backend for local development.
// It answers the same POST /api/<analyzer> contract as the production
// analyzers, with honest-but-simple heuristics over the fetched page.
// Scenario knobs (?fail=, ?delay=) exist to exercise client error paths.
package demoserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/logging"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
	"github.com/peternemser-ui/font-scanner-sub013/internal/urlutil"
	"github.com/peternemser-ui/font-scanner-sub013/internal/webclient"
)

// analyzeFunc inspects a fetched page and fills in the response envelope.
type analyzeFunc func(s *Server, req *scanRequest, page *fetchedPage) (*envelope, error)

// Server hosts the demo analyzer endpoints.
type Server struct {
	cfg    Config
	client webclient.WebClient
	logger interfaces.Logger
	router chi.Router

	limitMu  sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewServer builds the demo backend. A nil logger selects the default.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("demoserver")
	}
	client, err := webclient.New(cfg.Client, logger)
	if err != nil {
		return nil, fmt.Errorf("demoserver: creating webclient: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		router:   chi.NewRouter(),
		limiters: make(map[string]*rate.Limiter),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.rateLimitMiddleware)

	r.Post("/api/broken-links", s.scanHandler("broken-links", analyzeBrokenLinks))
	r.Post("/api/gdpr", s.scanHandler("gdpr", analyzeGDPR))
	r.Post("/api/local-seo", s.scanHandler("local-seo", analyzeLocalSEO))
	r.Post("/api/mobile", s.scanHandler("mobile", analyzeMobile))
	r.Post("/api/fonts", s.scanHandler("fonts", analyzeFonts))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "demo-analyzers"})
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks serving the configured address.
func (s *Server) ListenAndServe() error {
	s.logger.Info("demo analyzer backend listening", interfaces.F("addr", s.cfg.Addr))
	return http.ListenAndServe(s.cfg.Addr, s)
}

// Close releases the underlying webclient.
func (s *Server) Close() error { return s.client.Close() }

// scanRequest is the wire body every analyzer accepts.
type scanRequest struct {
	URL           string         `json:"url"`
	ScanStartedAt string         `json:"scanStartedAt"`
	Options       map[string]any `json:"-"`
}

// fetchedPage bundles the fetched document for the analyze funcs.
type fetchedPage struct {
	target   string
	response *webclient.Response
	doc      *goquery.Document
}

// envelope is the success response shape shared by all demo analyzers.
type envelope struct {
	Score           float64         `json:"score"`
	Grade           string          `json:"grade"`
	Summary         map[string]any  `json:"summary,omitempty"`
	Findings        []model.Finding `json:"findings,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
	ScanStartedAt   string          `json:"scanStartedAt,omitempty"`
	URL             string          `json:"url"`
}

func (s *Server) scanHandler(key string, analyze analyzeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Scenario knobs for local testing of client error handling.
		if d := r.URL.Query().Get("delay"); d != "" {
			if secs, err := strconv.Atoi(d); err == nil && secs > 0 {
				time.Sleep(time.Duration(secs) * time.Second)
			}
		}
		if f := r.URL.Query().Get("fail"); f != "" {
			status, err := strconv.Atoi(f)
			if err != nil || status < 400 || status > 599 {
				status = http.StatusServiceUnavailable
			}
			writeError(w, status, "simulated analyzer failure")
			return
		}

		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be JSON")
			return
		}
		req := &scanRequest{Options: raw}
		if u, ok := raw["url"].(string); ok {
			req.URL = u
		}
		if at, ok := raw["scanStartedAt"].(string); ok {
			req.ScanStartedAt = at
		}

		target, err := urlutil.Validate(req.URL)
		if err != nil {
			writeError(w, http.StatusBadRequest, "URL is required")
			return
		}
		req.URL = target

		resp, err := s.client.Do(r.Context(), &webclient.Request{Method: http.MethodGet, URL: target})
		if err != nil {
			s.logger.Warn("fetching target failed",
				interfaces.F("analyzer", key),
				interfaces.F("url", target),
				interfaces.F("error", err.Error()))
			writeError(w, http.StatusBadGateway, fmt.Sprintf("could not fetch %s", target))
			return
		}
		if resp.StatusCode >= 400 {
			writeError(w, http.StatusBadGateway, fmt.Sprintf("target responded with status %d", resp.StatusCode))
			return
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "target did not return parseable HTML")
			return
		}

		env, err := analyze(s, req, &fetchedPage{target: target, response: resp, doc: doc})
		if err != nil {
			s.logger.Error("analysis failed",
				interfaces.F("analyzer", key),
				interfaces.F("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "analysis failed")
			return
		}
		env.URL = target
		env.ScanStartedAt = req.ScanStartedAt
		env.Grade = gradeFor(env.Score)

		s.logger.Info("scan served",
			interfaces.F("analyzer", key),
			interfaces.F("url", target),
			interfaces.F("score", env.Score))
		writeJSON(w, http.StatusOK, env)
	}
}

// rateLimitMiddleware applies a per-client token bucket.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		s.limitMu.Lock()
		lim, ok := s.limiters[host]
		if !ok {
			lim = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.Burst)
			s.limiters[host] = lim
		}
		s.limitMu.Unlock()

		if !lim.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many scans, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func gradeFor(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 65:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
