package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/contentkit/studio/internal/model"
)

type memoryStore struct {
	stored []model.Notification
	err    error
}

func (m *memoryStore) Store(_ context.Context, n model.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.stored = append(m.stored, n)
	return nil
}

type recordingHub struct {
	sent []model.Notification
}

func (r *recordingHub) BroadcastNotification(n model.Notification) {
	r.sent = append(r.sent, n)
}

func task(t *testing.T, n model.Notification) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(n)
	require.NoError(t, err)
	return asynq.NewTask("notification:deliver", payload)
}

func TestNotificationWorker_StoresAndBroadcasts(t *testing.T) {
	store := &memoryStore{}
	hub := &recordingHub{}
	w := NewNotificationWorker(store, hub, zaptest.NewLogger(t))

	err := w.ProcessTask(context.Background(), task(t, model.Notification{ID: "n1", UserID: "u1", Message: "ready"}))
	require.NoError(t, err)
	require.Len(t, store.stored, 1)
	require.Len(t, hub.sent, 1)
	assert.Equal(t, "ready", hub.sent[0].Message)
}

func TestNotificationWorker_BadPayloadIsNotRetried(t *testing.T) {
	w := NewNotificationWorker(&memoryStore{}, &recordingHub{}, zaptest.NewLogger(t))

	err := w.ProcessTask(context.Background(), asynq.NewTask("notification:deliver", []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNotificationWorker_StoreFailureRetries(t *testing.T) {
	store := &memoryStore{err: errors.New("redis down")}
	hub := &recordingHub{}
	w := NewNotificationWorker(store, hub, zaptest.NewLogger(t))

	err := w.ProcessTask(context.Background(), task(t, model.Notification{UserID: "u1"}))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, hub.sent)
}

func TestNotificationWorker_DropsAnonymous(t *testing.T) {
	store := &memoryStore{}
	w := NewNotificationWorker(store, &recordingHub{}, zaptest.NewLogger(t))

	require.NoError(t, w.ProcessTask(context.Background(), task(t, model.Notification{Message: "x"})))
	assert.Empty(t, store.stored)
}
