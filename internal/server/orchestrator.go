package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/peternemser-ui/font-scanner-sub013/internal/analyzers"
	"github.com/peternemser-ui/font-scanner-sub013/internal/apiclient"
	"github.com/peternemser-ui/font-scanner-sub013/internal/history"
	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/lifecycle"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

// JobEvent is one message on a job's event stream.
type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Step  int    `json:"step,omitempty"`
	Total int    `json:"total,omitempty"`
	Label string `json:"label,omitempty"`

	// For the terminal result
	ReportID string          `json:"report_id,omitempty"`
	Report   json.RawMessage `json:"report,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// Job is one scan tracked by the gateway.
type Job struct {
	ID        string        `json:"id"`
	Analyzer  string        `json:"analyzer"`
	URL       string        `json:"url"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	ReportID  string        `json:"report_id,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Events    chan JobEvent `json:"-"`
}

// Orchestrator owns the gateway's scan jobs: it builds a lifecycle controller
// per job, bridges its progress into job events, and archives results.
type Orchestrator struct {
	cfg     *Config
	client  *apiclient.Client
	archive *history.Store
	logger  interfaces.Logger

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
}

// NewOrchestrator ties together config, the analyzer client and the archive.
func NewOrchestrator(cfg *Config, client *apiclient.Client, archive *history.Store, logger interfaces.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		client:     client,
		archive:    archive,
		logger:     logger.With(interfaces.F("component", "orchestrator")),
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}
}

func (o *Orchestrator) emit(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job.Events == nil {
		return
	}
	// Non-blocking send; drop if the consumer fell behind.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) setStatus(jobID string, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	if job, ok := o.jobs[jobID]; ok {
		job.Status = status
		if errMsg != "" {
			job.Error = errMsg
		}
	}
	o.jobsMu.Unlock()
	o.emit(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: status, Error: errMsg})
}

// StartScan launches a scan job and returns immediately. Progress and the
// final result arrive on the job's Events channel; the channel closes when
// the job reaches a terminal status.
func (o *Orchestrator) StartScan(ctx context.Context, analyzerKey, url string, options map[string]any) (*Job, error) {
	def, err := analyzers.Get(analyzerKey)
	if err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		Analyzer:  def.Key,
		URL:       url,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
	}
	o.jobsMu.Lock()
	o.jobs[jobID] = job
	o.jobsMu.Unlock()

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.jobsMu.Lock()
	o.jobCancels[jobID] = cancel
	o.jobsMu.Unlock()

	o.emit(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	plan := def.Plan(mergedOptions(def, options))
	renderer := interfaces.RendererFunc(func(rc *model.ReportContext) error {
		if err := o.archive.Save(jobCtx, rc); err != nil {
			o.logger.Warn("archiving report", interfaces.F("error", err.Error()))
		}
		o.jobsMu.Lock()
		job.ReportID = rc.ReportID
		o.jobsMu.Unlock()
		o.emit(jobID, JobEvent{
			JobID:    jobID,
			Type:     JobEventResult,
			ReportID: rc.ReportID,
			Report:   rc.Result.Raw,
		})
		return nil
	})

	ctrl, err := lifecycle.New(lifecycle.Config{
		Definition:   def,
		Client:       o.client,
		Renderer:     renderer,
		Sink:         &jobSink{o: o, jobID: jobID, total: plan.Len()},
		Logger:       o.logger,
		StepInterval: o.cfg.StepInterval,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	go func() {
		defer func() {
			o.jobsMu.Lock()
			job.EndedAt = time.Now().UTC()
			delete(o.jobCancels, jobID)
			o.jobsMu.Unlock()
			cancel()
			close(job.Events)
		}()

		o.setStatus(jobID, JobRunning, "")
		_, err := ctrl.Analyze(jobCtx, &model.ScanRequest{URL: url, Options: options})
		switch {
		case err == nil:
			o.setStatus(jobID, JobDone, "")
		case jobCtx.Err() != nil:
			o.setStatus(jobID, JobCanceled, "canceled")
		default:
			o.setStatus(jobID, JobFailed, err.Error())
		}
	}()

	return job, nil
}

// CancelJob cancels a running job's context. Canceling an unknown or
// finished job is a no-op.
func (o *Orchestrator) CancelJob(jobID string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// GetJob returns a snapshot of one job.
func (o *Orchestrator) GetJob(jobID string) (*Job, bool) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	job, ok := o.jobs[jobID]
	if !ok {
		return nil, false
	}
	snapshot := *job
	snapshot.Events = nil
	return &snapshot, true
}

// ListJobs returns snapshots of all known jobs.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	out := make([]*Job, 0, len(o.jobs))
	for _, job := range o.jobs {
		snapshot := *job
		snapshot.Events = nil
		out = append(out, &snapshot)
	}
	return out
}

// jobSink bridges lifecycle progress into job events.
type jobSink struct {
	o     *Orchestrator
	jobID string
	total int
}

func (s *jobSink) StepStarted(index int, step model.Step) {
	s.o.emit(s.jobID, JobEvent{
		JobID: s.jobID,
		Type:  JobEventProgress,
		Step:  index,
		Total: s.total,
		Label: step.Label,
	})
}

func (s *jobSink) Succeeded() {}

func (s *jobSink) Failed(err error) {}

func mergedOptions(def analyzers.Definition, options map[string]any) map[string]any {
	merged := make(map[string]any, len(def.DefaultOptions)+len(options))
	for k, v := range def.DefaultOptions {
		merged[k] = v
	}
	for k, v := range options {
		merged[k] = v
	}
	return merged
}
