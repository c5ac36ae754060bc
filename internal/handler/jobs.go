package handler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/logging"
	"github.com/contentkit/studio/internal/poller"
	"github.com/contentkit/studio/pkg/response"
)

const codeJobStopped = "JOB_STOPPED"

// Publisher is the part of the WebSocket hub jobs report to.
type Publisher interface {
	Bind(jobID string, cancel context.CancelFunc)
	Release(jobID string)
	BroadcastSnapshot(jobID, flow, state string, seq uint64, status any)
	BroadcastComplete(jobID, flow string, result any)
	BroadcastError(jobID, code, message string)
}

// Jobs tracks the pollers started by the gateway. A job's poller runs
// until the job ends, its last subscriber disconnects, or the timeout
// passes.
type Jobs struct {
	hub     Publisher
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	owners map[string]string
}

func NewJobs(hub Publisher, timeout time.Duration, logger *zap.Logger) *Jobs {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Jobs{
		hub:     hub,
		timeout: timeout,
		logger:  logging.OrNop(logger).Named("jobs"),
		owners:  make(map[string]string),
	}
}

// Context returns the context a new job's poller runs under. It is
// detached from the request that started the job.
func (j *Jobs) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), j.timeout)
}

// Owner returns the user that started a running job.
func (j *Jobs) Owner(jobID string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	owner, ok := j.owners[jobID]
	return owner, ok
}

func (j *Jobs) add(jobID, userID string, cancel context.CancelFunc) {
	j.mu.Lock()
	j.owners[jobID] = userID
	j.mu.Unlock()
	j.hub.Bind(jobID, cancel)
}

func (j *Jobs) release(jobID string) {
	j.mu.Lock()
	delete(j.owners, jobID)
	j.mu.Unlock()
	j.hub.Release(jobID)
}

// follow forwards every snapshot of h to the job's subscribers and
// reports the outcome when polling ends.
func follow[S any](j *Jobs, userID, flow string, h *poller.Handle[S], cancel context.CancelFunc) {
	jobID := h.JobID()
	j.add(jobID, userID, cancel)

	go func() {
		defer cancel()
		defer j.release(jobID)

		for snap := range h.Updates() {
			j.hub.BroadcastSnapshot(jobID, flow, snap.State.String(), snap.Seq, snap.Status)
		}

		final := h.Wait()
		switch final.State {
		case poller.StateDone:
			j.hub.BroadcastComplete(jobID, flow, final.Status)
		case poller.StateFailed:
			j.hub.BroadcastError(jobID, response.CodeJobFailed, final.Err.Error())
		default:
			j.hub.BroadcastError(jobID, codeJobStopped, "Job tracking stopped")
		}
		j.logger.Info("job finished",
			zap.String("job_id", jobID),
			zap.String("flow", flow),
			zap.String("state", final.State.String()))
	}()
}
