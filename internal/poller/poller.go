// Package poller drives the submit, poll and terminate cycle of one
// backend job.
//
// A Poller submits a job, then calls the status function on a fixed
// interval. Every poll carries a sequence number; a response is applied
// only when its number is greater than that of the last applied response,
// so a slow early poll can never overwrite a later one. Poll failures are
// logged and the cycle continues; only a terminal status reported by the
// backend ends it.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/logging"
)

var (
	ErrBusy    = errors.New("a job is already in progress")
	ErrNoJobID = errors.New("submit returned no job id")
	// ErrStopped is carried by the final snapshot of a handle stopped
	// before its job reached a terminal status.
	ErrStopped = errors.New("polling stopped")
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StatePolling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StatePolling:
		return "polling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Outcome is how a status payload classifies the job.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

// JobError is the error of a job the backend reported as failed.
type JobError struct {
	JobID   string
	Message string
}

func (e *JobError) Error() string {
	return e.Message
}

const defaultFailureMessage = "job failed"

// Snapshot is one observation of a job.
type Snapshot[S any] struct {
	JobID  string
	State  State
	Seq    uint64 // sequence number of the applied poll, 0 before the first
	Status S
	Err    error
	At     time.Time
}

// Config parametrizes a Poller for one flow. Name, Interval, Status and
// the hooks may be left empty when every Job supplies them.
type Config[S any] struct {
	// Name identifies the flow in logs and metrics.
	Name     string
	Interval time.Duration
	Status   func(ctx context.Context, jobID string) (S, error)
	Classify func(S) Outcome
	// FailureMessage extracts the backend's error text from a failed
	// status. An empty result falls back to "job failed".
	FailureMessage func(S) string
	// Merge combines the held status with a newer one. Nil replaces.
	Merge func(held, next S) S
	// OnDone runs once after a successful terminal status, before the
	// final snapshot is published.
	OnDone func(ctx context.Context, final Snapshot[S])
	// OnFailed runs once after a failed terminal status.
	OnFailed func(ctx context.Context, final Snapshot[S])
	Logger   *zap.Logger
}

// Job is one submission. Its non-zero fields take precedence over the
// poller's Config for this run only.
type Job[S any] struct {
	Submit   func(ctx context.Context) (string, error)
	Name     string
	Interval time.Duration
	Status   func(ctx context.Context, jobID string) (S, error)
	OnDone   func(ctx context.Context, final Snapshot[S])
	OnFailed func(ctx context.Context, final Snapshot[S])
}

func (j Job[S]) withDefaults(cfg Config[S]) Job[S] {
	if j.Name == "" {
		j.Name = cfg.Name
	}
	if j.Name == "" {
		j.Name = "default"
	}
	if j.Interval <= 0 {
		j.Interval = cfg.Interval
	}
	if j.Status == nil {
		j.Status = cfg.Status
	}
	if j.OnDone == nil {
		j.OnDone = cfg.OnDone
	}
	if j.OnFailed == nil {
		j.OnFailed = cfg.OnFailed
	}
	return j
}

// Poller runs one job at a time.
type Poller[S any] struct {
	cfg    Config[S]
	logger *zap.Logger

	mu    sync.Mutex
	state State
}

func New[S any](cfg Config[S]) (*Poller[S], error) {
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("poller %q: interval must not be negative", cfg.Name)
	}
	if cfg.Classify == nil {
		return nil, fmt.Errorf("poller %q: classify function is required", cfg.Name)
	}
	logger := logging.OrNop(cfg.Logger)
	if cfg.Name != "" {
		logger = logger.With(zap.String("flow", cfg.Name))
	}
	return &Poller[S]{cfg: cfg, logger: logger}, nil
}

func (p *Poller[S]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller[S]) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Start submits a job and begins polling it with the poller's Config.
func (p *Poller[S]) Start(ctx context.Context, submit func(ctx context.Context) (string, error)) (*Handle[S], error) {
	return p.StartJob(ctx, Job[S]{Submit: submit})
}

// StartJob submits job and begins polling it. While a job is submitting
// or polling, further calls fail with ErrBusy. A submit error returns the
// poller to Idle and no handle is created. Cancelling ctx, or calling
// Stop on the handle, ends polling.
func (p *Poller[S]) StartJob(ctx context.Context, job Job[S]) (*Handle[S], error) {
	job = job.withDefaults(p.cfg)
	if job.Submit == nil || job.Status == nil {
		return nil, fmt.Errorf("poller %q: submit and status functions are required", job.Name)
	}
	if job.Interval <= 0 {
		return nil, fmt.Errorf("poller %q: interval must be positive", job.Name)
	}

	p.mu.Lock()
	if p.state == StateSubmitting || p.state == StatePolling {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.state = StateSubmitting
	p.mu.Unlock()

	jobID, err := job.Submit(ctx)
	if err == nil && jobID == "" {
		err = ErrNoJobID
	}
	if err != nil {
		p.setState(StateIdle)
		return nil, err
	}

	p.setState(StatePolling)
	p.logger.Debug("job submitted", zap.String("job_id", jobID), zap.String("job_flow", job.Name))

	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle[S]{
		poller:  p,
		job:     job,
		jobID:   jobID,
		cancel:  cancel,
		updates: make(chan Snapshot[S], updateBuffer),
		done:    make(chan struct{}),
		hookCtx: context.WithoutCancel(ctx),
	}
	h.publish(Snapshot[S]{JobID: jobID, State: StatePolling, At: time.Now()})

	go h.run(runCtx)
	return h, nil
}
