package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/logging"
	"github.com/contentkit/studio/internal/model"
)

type NotificationStore interface {
	Store(ctx context.Context, n model.Notification) error
}

type NotificationBroadcaster interface {
	BroadcastNotification(n model.Notification)
}

// NotificationWorker delivers queued notifications: it keeps them for
// later listing and pushes them to the user's open connections.
type NotificationWorker struct {
	store  NotificationStore
	hub    NotificationBroadcaster
	logger *zap.Logger
}

func NewNotificationWorker(store NotificationStore, hub NotificationBroadcaster, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{
		store:  store,
		hub:    hub,
		logger: logging.OrNop(logger).Named("notifications"),
	}
}

func (w *NotificationWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var n model.Notification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w: %w", err, asynq.SkipRetry)
	}
	if n.UserID == "" {
		w.logger.Warn("dropping notification without user", zap.String("id", n.ID))
		return nil
	}

	if err := w.store.Store(ctx, n); err != nil {
		return err
	}
	w.hub.BroadcastNotification(n)

	w.logger.Debug("notification delivered",
		zap.String("id", n.ID),
		zap.String("user_id", n.UserID),
		zap.String("flow", n.Flow))
	return nil
}
