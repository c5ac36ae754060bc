package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentkit/studio/internal/model"
)

type captureEnqueuer struct {
	tasks []*asynq.Task
}

func (c *captureEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueNotify}, nil
}

func TestNotificationService_NotifyEnqueues(t *testing.T) {
	enq := &captureEnqueuer{}
	svc := NewNotificationService(nil, enq)

	err := svc.Notify(context.Background(), model.Notification{UserID: "u1", JobID: "job-1", Level: "success", Message: "ready"})
	require.NoError(t, err)
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskTypeNotify, enq.tasks[0].Type())

	var n model.Notification
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &n))
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
	assert.Equal(t, "ready", n.Message)
}

// Requires a local redis; skipped otherwise.
func TestNotificationService_StoreListClear(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer rdb.Close()

	svc := NewNotificationService(rdb, &captureEnqueuer{})
	user := "test-user-" + time.Now().Format("150405.000000")
	defer svc.Clear(context.Background(), user)

	for i := 0; i < notificationsKept+5; i++ {
		require.NoError(t, svc.Store(ctx, model.Notification{ID: time.Now().String(), UserID: user, Message: "m"}))
	}
	got, err := svc.List(ctx, user)
	require.NoError(t, err)
	assert.Len(t, got, notificationsKept)

	require.NoError(t, svc.Clear(ctx, user))
	got, err = svc.List(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, got)
}
