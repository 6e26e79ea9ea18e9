// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
	"github.com/peternemser-ui/font-scanner-sub013/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements interfaces.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...interfaces.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...interfaces.Field) interfaces.Logger { return l }

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// By default it returns Bodies[url] (or "ok:<url>") with status 200.
// Set FailURLs[url] = true to force an error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool
	Bodies        map[string]string
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	body := "ok:" + req.URL
	if d.Bodies != nil {
		if b, ok := d.Bodies[req.URL]; ok {
			body = b
		}
	}
	return &webclient.Response{
		Request:    req,
		Body:       []byte(body),
		StatusCode: 200,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Close() error { return nil }

// ─── Submitter ─────────────────────────────────────────────────────────

// DummySubmitter stands in for the analyzer API client. It returns Result
// (or a minimal result) after ResponseDelay, or Err when set.
type DummySubmitter struct {
	Result        *model.AnalysisResult
	Err           error
	ResponseDelay time.Duration
	ClientTimeout time.Duration

	mu     sync.Mutex
	Paths  []string
	Bodies [][]byte
}

func (d *DummySubmitter) Submit(ctx context.Context, path string, body []byte) (*model.AnalysisResult, error) {
	d.mu.Lock()
	d.Paths = append(d.Paths, path)
	d.Bodies = append(d.Bodies, append([]byte(nil), body...))
	d.mu.Unlock()

	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, &model.TimeoutError{Deadline: d.Timeout()}
		}
	}
	if d.Err != nil {
		return nil, d.Err
	}
	if d.Result != nil {
		return d.Result, nil
	}
	return &model.AnalysisResult{Grade: "A"}, nil
}

func (d *DummySubmitter) Timeout() time.Duration {
	if d.ClientTimeout > 0 {
		return d.ClientTimeout
	}
	return 90 * time.Second
}

// Calls returns how many submissions were made.
func (d *DummySubmitter) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Paths)
}

// ─── ProgressSink ──────────────────────────────────────────────────────

// RecordingSink implements interfaces.ProgressSink with in-memory recording.
type RecordingSink struct {
	mu       sync.Mutex
	Steps    []int
	Labels   []string
	Succeeds int
	Failures []error
}

func (s *RecordingSink) StepStarted(index int, step model.Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Steps = append(s.Steps, index)
	s.Labels = append(s.Labels, step.Label)
}

func (s *RecordingSink) Succeeded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Succeeds++
}

func (s *RecordingSink) Failed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failures = append(s.Failures, err)
}

// StepIndexes returns a copy of the recorded step indexes.
func (s *RecordingSink) StepIndexes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.Steps...)
}

// ─── Renderer ──────────────────────────────────────────────────────────

// RecordingRenderer implements interfaces.Renderer and records every report
// it is handed.
type RecordingRenderer struct {
	Err error

	mu      sync.Mutex
	Reports []*model.ReportContext
}

func (r *RecordingRenderer) Render(rc *model.ReportContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reports = append(r.Reports, rc)
	return r.Err
}

// Renders returns how many times Render was called.
func (r *RecordingRenderer) Renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Reports)
}

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
