package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/contentkit/studio/internal/model"
)

const (
	TaskTypeNotify = "notification:deliver"
	QueueNotify    = "notifications"

	notificationsKept = 50
	notificationsTTL  = 7 * 24 * time.Hour
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NotificationService queues completion notices for delivery and keeps the
// most recent ones per user.
type NotificationService struct {
	redis    *redis.Client
	enqueuer Enqueuer
	now      func() time.Time
}

func NewNotificationService(redisClient *redis.Client, enqueuer Enqueuer) *NotificationService {
	return &NotificationService{redis: redisClient, enqueuer: enqueuer, now: time.Now}
}

// Notify enqueues n; the notification worker stores and pushes it.
func (s *NotificationService) Notify(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	_, err = s.enqueuer.EnqueueContext(ctx, asynq.NewTask(TaskTypeNotify, payload),
		asynq.Queue(QueueNotify),
		asynq.MaxRetry(3),
		asynq.Retention(time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// Store prepends n to the user's list, keeping the newest entries.
func (s *NotificationService) Store(ctx context.Context, n model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	key := notificationsKey(n.UserID)
	pipe := s.redis.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, notificationsKept-1)
	pipe.Expire(ctx, key, notificationsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]model.Notification, error) {
	raw, err := s.redis.LRange(ctx, notificationsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	out := make([]model.Notification, 0, len(raw))
	for _, r := range raw {
		var n model.Notification
		if err := json.Unmarshal([]byte(r), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *NotificationService) Clear(ctx context.Context, userID string) error {
	return s.redis.Del(ctx, notificationsKey(userID)).Err()
}

func notificationsKey(userID string) string {
	return "notifications:" + userID
}
