package cli

import (
	"context"

	"github.com/contentkit/studio/internal/poller"
)

// await blocks until h ends or ctx is canceled, stopping h in the latter
// case, and returns the final snapshot.
func await[S any](ctx context.Context, h *poller.Handle[S]) poller.Snapshot[S] {
	select {
	case <-h.Done():
	case <-ctx.Done():
		h.Stop()
	}
	return h.Wait()
}
