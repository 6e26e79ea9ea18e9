package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/peternemser-ui/font-scanner-sub013/internal/analyzers"
	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/logging"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
	"github.com/peternemser-ui/font-scanner-sub013/internal/reportid"
	"github.com/peternemser-ui/font-scanner-sub013/internal/urlutil"
)

// ErrScanInProgress is returned when Analyze is called while a previous run
// on the same controller is still pending. A second run never races the
// first; callers retry after the first completes.
var ErrScanInProgress = errors.New("a scan is already in progress")

// DefaultStepInterval is the cadence of cosmetic step advancement while the
// analyzer call is pending.
const DefaultStepInterval = 3 * time.Second

// Submitter issues one analyzer request. Implemented by apiclient.Client.
type Submitter interface {
	Submit(ctx context.Context, path string, body []byte) (*model.AnalysisResult, error)
	Timeout() time.Duration
}

// Config wires one Controller.
type Config struct {
	// Definition selects the analyzer this controller drives.
	Definition analyzers.Definition

	// Client issues the analyzer request. Required.
	Client Submitter

	// Renderer receives the report on success. Required.
	Renderer interfaces.Renderer

	// Sink receives progress updates. Optional; nil discards them.
	Sink interfaces.ProgressSink

	// Logger is optional; nil selects the default JSON logger.
	Logger interfaces.Logger

	// StepInterval overrides the cosmetic ticker cadence. Zero selects
	// DefaultStepInterval. Tests shrink this.
	StepInterval time.Duration
}

// Controller drives one analysis run end-to-end: validate, dispatch,
// optimistic progress, terminal render or error, guaranteed cleanup. A
// controller is reusable; runs never overlap on one instance.
type Controller struct {
	def      analyzers.Definition
	client   Submitter
	renderer interfaces.Renderer
	sink     interfaces.ProgressSink
	logger   interfaces.Logger
	interval time.Duration

	mu      sync.Mutex
	running bool
	phase   model.Phase
	step    int
	plan    model.StepPlan
}

// New validates cfg and builds a Controller in the Idle phase.
func New(cfg Config) (*Controller, error) {
	if cfg.Definition.Key == "" {
		return nil, errors.New("lifecycle: no analyzer definition")
	}
	if cfg.Client == nil {
		return nil, errors.New("lifecycle: nil client")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("lifecycle: nil renderer")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("lifecycle")
	}
	sink := cfg.Sink
	if sink == nil {
		sink = noopSink{}
	}
	interval := cfg.StepInterval
	if interval <= 0 {
		interval = DefaultStepInterval
	}
	return &Controller{
		def:      cfg.Definition,
		client:   cfg.Client,
		renderer: cfg.Renderer,
		sink:     sink,
		logger:   logger.With(interfaces.F("analyzer", cfg.Definition.Key)),
		interval: interval,
		phase:    model.PhaseIdle,
	}, nil
}

// Status returns the current phase and the 1-based step index (0 before the
// first step).
func (c *Controller) Status() (model.Phase, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase, c.step
}

// Analyze runs one scan. On success the renderer has been invoked exactly
// once and the returned context carries the rendered report. On any failure
// the renderer is not invoked and the error is one of the model taxonomy
// kinds. Cleanup — ticker shutdown and busy release — runs on every exit
// path, so the controller is immediately reusable.
func (c *Controller) Analyze(ctx context.Context, req *model.ScanRequest) (*model.ReportContext, error) {
	if req == nil {
		return nil, &model.ValidationError{Reason: "Please enter a URL"}
	}

	url, err := urlutil.Validate(req.URL)
	if err != nil {
		verr := validationError(err)
		c.sink.Failed(verr)
		return nil, verr
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, ErrScanInProgress
	}
	c.running = true
	c.phase = model.PhaseIdle
	c.step = 0
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	run := *req
	run.URL = url
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Options = mergeOptions(c.def.DefaultOptions, req.Options)

	plan := c.def.Plan(run.Options)
	c.mu.Lock()
	c.plan = plan
	c.mu.Unlock()

	body, err := run.WireBody()
	if err != nil {
		ferr := &model.ValidationError{Reason: fmt.Sprintf("could not encode scan request: %v", err)}
		c.fail(ferr)
		return nil, ferr
	}

	// Step 1 marks dispatch itself, before the request is on the wire.
	c.advance(1)

	// The cosmetic ticker and the request race; the join below is part of
	// every exit path so a stale tick can never fire into a later run.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go c.tickSteps(done, &wg)
	stopTicker := func() {
		close(done)
		wg.Wait()
	}

	c.logger.Info("dispatching scan",
		interfaces.F("url", run.URL),
		interfaces.F("steps", plan.Len()))

	res, err := c.client.Submit(ctx, c.def.Path, body)
	stopTicker()
	if err != nil {
		c.fail(err)
		return nil, err
	}

	// Server confirmed: force-advance to the final step before succeeding.
	c.advance(plan.Len())

	rc := &model.ReportContext{
		ReportID:  res.ReportID,
		Analyzer:  c.def.Key,
		URL:       run.URL,
		StartedAt: run.StartedAt,
		Result:    res,
	}
	if rc.ReportID == "" {
		id, err := reportid.Compute(c.def.Key, run.URL, run.StartedAt)
		if err != nil {
			c.fail(err)
			return nil, err
		}
		rc.ReportID = id
	}

	c.mu.Lock()
	c.phase = model.PhaseSucceeded
	c.mu.Unlock()
	c.sink.Succeeded()

	c.logger.Info("scan succeeded", interfaces.F("report_id", rc.ReportID))

	if err := c.renderer.Render(rc); err != nil {
		c.logger.Warn("rendering report", interfaces.F("error", err.Error()))
		return rc, fmt.Errorf("rendering report %s: %w", rc.ReportID, err)
	}
	return rc, nil
}

// tickSteps advances through the middle of the plan on a fixed cadence while
// the request is pending. It never claims the final step; that one is
// reserved for the confirmed response.
func (c *Controller) tickSteps(done <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.mu.Lock()
			next := c.step + 1
			if next >= c.plan.Len() {
				c.mu.Unlock()
				return
			}
			c.step = next
			step := c.plan.At(next)
			c.mu.Unlock()
			c.sink.StepStarted(next, step)
		}
	}
}

// advance moves to the 1-based step index if it is ahead of the current one.
func (c *Controller) advance(index int) {
	c.mu.Lock()
	if index <= c.step {
		c.mu.Unlock()
		return
	}
	c.phase = model.PhaseRunning
	c.step = index
	step := c.plan.At(index)
	c.mu.Unlock()
	c.sink.StepStarted(index, step)
}

func (c *Controller) fail(err error) {
	c.mu.Lock()
	c.phase = model.PhaseFailed
	c.mu.Unlock()
	c.logger.Warn("scan failed", interfaces.F("error", err.Error()))
	c.sink.Failed(err)
}

// validationError maps urlutil failures onto the user-facing messages.
func validationError(err error) *model.ValidationError {
	if errors.Is(err, urlutil.ErrEmptyURL) {
		return &model.ValidationError{Reason: "Please enter a URL"}
	}
	return &model.ValidationError{Reason: fmt.Sprintf("invalid URL: %v", err)}
}

func mergeOptions(defaults, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

type noopSink struct{}

func (noopSink) StepStarted(int, model.Step) {}
func (noopSink) Succeeded()                  {}
func (noopSink) Failed(error)                {}
