package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/metrics"
)

const updateBuffer = 16

// Handle is the client-side view of one polled job.
type Handle[S any] struct {
	poller  *Poller[S]
	job     Job[S]
	jobID   string
	cancel  context.CancelFunc
	hookCtx context.Context

	updates  chan Snapshot[S]
	done     chan struct{}
	inflight sync.WaitGroup

	mu      sync.RWMutex
	current Snapshot[S]
}

type pollResult[S any] struct {
	seq    uint64
	status S
	err    error
}

func (h *Handle[S]) JobID() string {
	return h.jobID
}

// Updates streams snapshots in the order they were applied. When the
// consumer falls behind, older snapshots are dropped; the final one is
// always delivered before the channel is closed.
func (h *Handle[S]) Updates() <-chan Snapshot[S] {
	return h.updates
}

// Current returns the latest snapshot.
func (h *Handle[S]) Current() Snapshot[S] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Wait blocks until polling ends and returns the final snapshot.
func (h *Handle[S]) Wait() Snapshot[S] {
	<-h.done
	return h.Current()
}

// Done is closed when polling has ended.
func (h *Handle[S]) Done() <-chan struct{} {
	return h.done
}

// Stop ends polling. Responses still in flight are discarded.
func (h *Handle[S]) Stop() {
	h.cancel()
}

func (h *Handle[S]) run(ctx context.Context) {
	cfg := h.poller.cfg
	logger := h.poller.logger.With(zap.String("job_id", h.jobID))

	flow := h.job.Name
	metrics.PollerStarted(flow)
	defer metrics.PollerStopped(flow)

	ticker := time.NewTicker(h.job.Interval)
	// halt stops the ticker and waits out polls still in flight, so that
	// no status request runs once the handle is done.
	halt := func() {
		ticker.Stop()
		h.cancel()
		h.inflight.Wait()
	}

	results := make(chan pollResult[S])
	var issued, applied uint64
	held := h.Current()

	for {
		select {
		case <-ctx.Done():
			halt()
			logger.Debug("polling stopped", zap.Uint64("last_seq", applied))
			final := held
			final.Err = ErrStopped
			final.At = time.Now()
			h.poller.setState(StateIdle)
			metrics.IncJobFinished(flow, "stopped")
			h.finish(final)
			return

		case <-ticker.C:
			issued++
			h.inflight.Add(1)
			go h.poll(ctx, issued, results)

		case r := <-results:
			if r.seq <= applied {
				metrics.IncPollResult(flow, metrics.PollStale)
				logger.Debug("discarding stale poll response",
					zap.Uint64("seq", r.seq), zap.Uint64("applied", applied))
				continue
			}
			if r.err != nil {
				metrics.IncPollResult(flow, metrics.PollError)
				logger.Warn("status poll failed", zap.Uint64("seq", r.seq), zap.Error(r.err))
				continue
			}

			applied = r.seq
			metrics.IncPollResult(flow, metrics.PollApplied)
			status := r.status
			if cfg.Merge != nil && held.Seq > 0 {
				status = cfg.Merge(held.Status, status)
			}
			held = Snapshot[S]{
				JobID:  h.jobID,
				State:  StatePolling,
				Seq:    r.seq,
				Status: status,
				At:     time.Now(),
			}

			switch cfg.Classify(status) {
			case OutcomeSucceeded:
				halt()
				held.State = StateDone
				h.poller.setState(StateDone)
				metrics.IncJobFinished(flow, "succeeded")
				logger.Debug("job completed", zap.Uint64("seq", r.seq))
				if h.job.OnDone != nil {
					h.job.OnDone(h.hookCtx, held)
				}
				h.finish(held)
				return

			case OutcomeFailed:
				halt()
				msg := ""
				if cfg.FailureMessage != nil {
					msg = cfg.FailureMessage(status)
				}
				if msg == "" {
					msg = defaultFailureMessage
				}
				held.State = StateFailed
				held.Err = &JobError{JobID: h.jobID, Message: msg}
				h.poller.setState(StateFailed)
				metrics.IncJobFinished(flow, "failed")
				logger.Debug("job failed", zap.Uint64("seq", r.seq), zap.String("reason", msg))
				if h.job.OnFailed != nil {
					h.job.OnFailed(h.hookCtx, held)
				}
				h.finish(held)
				return

			default:
				h.publish(held)
			}
		}
	}
}

// poll issues one status request. The result is dropped if the handle has
// stopped in the meantime.
func (h *Handle[S]) poll(ctx context.Context, seq uint64, results chan<- pollResult[S]) {
	defer h.inflight.Done()
	if ctx.Err() != nil {
		return
	}
	status, err := h.job.Status(ctx, h.jobID)
	select {
	case results <- pollResult[S]{seq: seq, status: status, err: err}:
	case <-ctx.Done():
	}
}

func (h *Handle[S]) publish(s Snapshot[S]) {
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()

	for {
		select {
		case h.updates <- s:
			return
		default:
		}
		// Full: drop the oldest pending snapshot.
		select {
		case <-h.updates:
		default:
		}
	}
}

func (h *Handle[S]) finish(final Snapshot[S]) {
	h.publish(final)
	close(h.updates)
	close(h.done)
}
