package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/peternemser-ui/font-scanner-sub013/docs" // swagger spec
	"github.com/peternemser-ui/font-scanner-sub013/internal/analyzers"
	"github.com/peternemser-ui/font-scanner-sub013/internal/apiclient"
	"github.com/peternemser-ui/font-scanner-sub013/internal/export"
	"github.com/peternemser-ui/font-scanner-sub013/internal/history"
	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/logging"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
	"github.com/peternemser-ui/font-scanner-sub013/internal/paywall"
)

// Server is the HTTP + WebSocket gateway in front of the analyzer backends.
type Server struct {
	cfg          *Config
	orchestrator *Orchestrator
	archive      *history.Store
	unlocks      *paywall.Service
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       interfaces.Logger
}

// NewServer creates a Server with its own Orchestrator, report archive and
// unlock store.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("server")
	}

	archive, err := history.NewStore(cfg.StorageDir, logger)
	if err != nil {
		return nil, fmt.Errorf("creating report archive: %w", err)
	}

	pwCfg := cfg.Paywall
	if pwCfg.Backend == "" {
		pwCfg.Backend = "sqlite"
	}
	if pwCfg.Path == "" {
		pwCfg.Path = cfg.StorageDir
	}
	store, err := paywall.NewStore(pwCfg, logger)
	if err != nil {
		archive.Close()
		return nil, fmt.Errorf("creating unlock store: %w", err)
	}

	client := apiclient.New(cfg.AnalyzerBaseURL, cfg.Timeout, logger)

	s := &Server{
		cfg:          cfg,
		orchestrator: NewOrchestrator(cfg, client, archive, logger),
		archive:      archive,
		unlocks:      paywall.NewService(store, logger),
		router:       chi.NewRouter(),
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}
	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator (tests, embedding).
func (s *Server) Orchestrator() *Orchestrator { return s.orchestrator }

// Unlocks returns the paywall service (tests, embedding).
func (s *Server) Unlocks() *paywall.Service { return s.unlocks }

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Options("/scans", s.optionsHandler("GET, POST"))
	r.Options("/scans/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/reports/{reportID}", s.optionsHandler("GET"))
	r.Options("/reports/{reportID}/unlock", s.optionsHandler("POST"))

	r.Get("/analyzers", s.handleListAnalyzers)

	r.Post("/scans", s.handleStartScan)
	r.Get("/scans", s.handleListJobs)
	r.Get("/scans/{jobID}", s.handleGetJob)
	r.Delete("/scans/{jobID}", s.handleCancelJob)

	r.Get("/reports/{reportID}", s.handleGetReport)
	r.Get("/reports/{reportID}/diff/{baseID}", s.handleDiffReports)
	r.Get("/reports/{reportID}/export", s.handleExportReport)
	r.Post("/reports/{reportID}/unlock", s.handleUnlockReport)

	r.Get("/ws/scans", s.handleScanWS)

	r.Get("/swagger/*", httpSwagger.Handler())
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer wraps the router in an *http.Server on the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Close releases the archive and unlock store.
func (s *Server) Close() {
	if err := s.archive.Close(); err != nil {
		s.logger.Warn("closing report archive", interfaces.F("error", err.Error()))
	}
	if err := s.unlocks.Close(); err != nil {
		s.logger.Warn("closing unlock store", interfaces.F("error", err.Error()))
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

// handleListAnalyzers godoc
// @Summary List available analyzers
// @Produce json
// @Success 200 {array} string
// @Router /analyzers [get]
func (s *Server) handleListAnalyzers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analyzers.Keys())
}

type startScanRequest struct {
	URL      string         `json:"url"`
	Analyzer string         `json:"analyzer"`
	Options  map[string]any `json:"options,omitempty"`
}

// handleStartScan godoc
// @Summary Start a scan job
// @Accept json
// @Produce json
// @Success 202 {object} server.Job
// @Failure 400 {object} map[string]string
// @Router /scans [post]
func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	var req startScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	job, err := s.orchestrator.StartScan(r.Context(), req.Analyzer, req.URL, req.Options)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snapshot, _ := s.orchestrator.GetJob(job.ID)
	writeJSON(w, http.StatusAccepted, snapshot)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.ListJobs())
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if _, ok := s.orchestrator.GetJob(jobID); !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.orchestrator.CancelJob(jobID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "canceling"})
}

// handleGetReport godoc
// @Summary Fetch an archived report
// @Produce json
// @Success 200 {object} history.Run
// @Failure 404 {object} map[string]string
// @Router /reports/{reportID} [get]
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	run, err := s.archive.Get(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDiffReports(w http.ResponseWriter, r *http.Request) {
	diff, err := s.archive.Diff(r.Context(), chi.URLParam(r, "baseID"), chi.URLParam(r, "reportID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, diff)
}

// handleExportReport streams the archived report as PDF or CSV. Gated
// sections are included only when the report has been unlocked.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	run, err := s.archive.Get(r.Context(), reportID)
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	unlocked, err := s.unlocks.IsUnlocked(r.Context(), reportID)
	if err != nil {
		s.logger.Warn("reading unlock state", interfaces.F("error", err.Error()))
	}
	rc := &model.ReportContext{
		ReportID:  run.ReportID,
		Analyzer:  run.Analyzer,
		URL:       run.URL,
		StartedAt: run.StartedAt,
		Result:    run.Result,
		Unlocked:  unlocked,
	}

	switch r.URL.Query().Get("format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", reportID))
		if err := export.CSV(rc, w); err != nil {
			s.logger.Warn("csv export failed", interfaces.F("error", err.Error()))
		}
	case "pdf", "":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", reportID))
		if err := export.PDF(rc, w); err != nil {
			s.logger.Warn("pdf export failed", interfaces.F("error", err.Error()))
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be pdf or csv")
	}
}

// handleUnlockReport godoc
// @Summary Unlock the gated sections of a report
// @Produce json
// @Success 200 {object} map[string]string
// @Router /reports/{reportID}/unlock [post]
func (s *Server) handleUnlockReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	if _, err := s.archive.Get(r.Context(), reportID); err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err := s.unlocks.Unlock(r.Context(), reportID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unlocked", "report_id": reportID})
}

// handleScanWS starts a scan and streams its job events over a websocket.
func (s *Server) handleScanWS(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	analyzer := r.URL.Query().Get("analyzer")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", interfaces.F("error", err.Error()))
		return
	}
	defer conn.Close()

	job, err := s.orchestrator.StartScan(r.Context(), analyzer, url, nil)
	if err != nil {
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	s.logger.Info("started scan over websocket",
		interfaces.F("job_id", job.ID),
		interfaces.F("analyzer", analyzer))
	snapshot, _ := s.orchestrator.GetJob(job.ID)
	_ = conn.WriteJSON(snapshot)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Client went away; stop the job.
			s.orchestrator.CancelJob(job.ID)
			return
		}
	}
}
