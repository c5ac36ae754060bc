package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/contentkit/studio/internal/model"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestHub_SnapshotReachesTopicSubscribers(t *testing.T) {
	h := runHub(t)
	job := &Client{Topic: "job-1", Send: make(chan []byte, 4)}
	other := &Client{Topic: "job-2", Send: make(chan []byte, 4)}
	h.Register(job)
	h.Register(other)

	h.BroadcastSnapshot("job-1", "content_kit", "polling", 3, map[string]int{"percentage": 40})

	var msg model.WSSnapshotMessage
	require.NoError(t, json.Unmarshal(receive(t, job), &msg))
	assert.Equal(t, model.WSMessageTypeSnapshot, msg.Type)
	assert.Equal(t, uint64(3), msg.Seq)
	assert.Equal(t, "polling", msg.State)

	assert.Empty(t, other.Send)
}

func TestHub_NotificationUsesUserTopic(t *testing.T) {
	h := runHub(t)
	c := &Client{Topic: UserTopic("u1"), Send: make(chan []byte, 4)}
	h.Register(c)

	h.BroadcastNotification(model.Notification{UserID: "u1", Message: "Your content kit is ready"})

	var msg model.WSNotificationMessage
	require.NoError(t, json.Unmarshal(receive(t, c), &msg))
	assert.Equal(t, "Your content kit is ready", msg.Notification.Message)
}

func TestHub_LastSubscriberCancelsBoundJob(t *testing.T) {
	h := runHub(t)
	jobCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Bind("job-1", cancel)

	a := &Client{Topic: "job-1", Send: make(chan []byte, 1)}
	b := &Client{Topic: "job-1", Send: make(chan []byte, 1)}
	h.Register(a)
	h.Register(b)
	assert.Eventually(t, func() bool { return h.Subscribers("job-1") == 2 }, time.Second, time.Millisecond)

	h.Unregister(a)
	assert.NoError(t, jobCtx.Err())

	h.Unregister(b)
	select {
	case <-jobCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("job was not cancelled")
	}
	assert.Zero(t, h.Subscribers("job-1"))
}

func TestHub_ReleasedJobIsNotCancelled(t *testing.T) {
	h := runHub(t)
	jobCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Bind("job-1", cancel)
	h.Release("job-1")

	c := &Client{Topic: "job-1", Send: make(chan []byte, 1)}
	h.Register(c)
	h.Unregister(c)
	h.Register(&Client{Topic: "sync", Send: make(chan []byte, 1)})

	assert.NoError(t, jobCtx.Err())
}

func TestHub_PongGoesToPingingClientOnly(t *testing.T) {
	h := runHub(t)
	a := &Client{Topic: "job-1", Send: make(chan []byte, 4), Pong: make(chan []byte, 1)}
	b := &Client{Topic: "job-1", Send: make(chan []byte, 4), Pong: make(chan []byte, 1)}
	h.Register(a)
	h.Register(b)

	h.handleMessage(a, []byte(`{"type":"ping"}`))
	h.handleMessage(a, []byte(`{"type":"ping"}`))
	h.handleMessage(a, []byte(`not json`))

	require.Len(t, a.Pong, 1)
	var msg model.WSMessage
	require.NoError(t, json.Unmarshal(<-a.Pong, &msg))
	assert.Equal(t, model.WSMessageTypePong, msg.Type)

	assert.Empty(t, a.Send)
	assert.Empty(t, b.Send)
	assert.Empty(t, b.Pong)
}

func TestHub_ListUsesUserTopic(t *testing.T) {
	h := runHub(t)
	c := &Client{Topic: UserTopic("u1"), Send: make(chan []byte, 4)}
	h.Register(c)

	h.BroadcastList("u1", model.ListKits, []string{"job-1", "job-2"})

	var msg struct {
		Type  string   `json:"type"`
		List  string   `json:"list"`
		Items []string `json:"items"`
	}
	require.NoError(t, json.Unmarshal(receive(t, c), &msg))
	assert.Equal(t, model.WSMessageTypeList, msg.Type)
	assert.Equal(t, model.ListKits, msg.List)
	assert.Equal(t, []string{"job-1", "job-2"}, msg.Items)
}
