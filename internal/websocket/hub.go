package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/logging"
	"github.com/contentkit/studio/internal/model"
)

const (
	sendBuffer   = 64
	pingInterval = 30 * time.Second
)

// UserTopic is the topic a user's notifications are published on. Job
// updates are published on the job id.
func UserTopic(userID string) string {
	return "user:" + userID
}

// Client is one subscriber connection. Pong holds a reply meant for this
// connection only; like Send it is drained by the connection's writer.
type Client struct {
	Topic string
	Conn  *websocket.Conn
	Send  chan []byte
	Pong  chan []byte
}

// Hub fans messages out to the connections subscribed to a topic. A job
// topic can be bound to the cancel func of its poller: when its last
// subscriber leaves, the poller is stopped.
type Hub struct {
	clients map[string]map[*Client]bool
	cancels map[string]context.CancelFunc

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	logger *zap.Logger
	mu     sync.RWMutex
}

type BroadcastMessage struct {
	Topic   string
	Message []byte
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		cancels:    make(map[string]context.CancelFunc),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		logger:     logging.OrNop(logger).Named("hub"),
	}
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Topic] == nil {
				h.clients[client.Topic] = make(map[*Client]bool)
			}
			h.clients[client.Topic][client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", zap.String("topic", client.Topic))

		case client := <-h.unregister:
			h.remove(client)
			h.logger.Debug("client unregistered", zap.String("topic", client.Topic))

		case msg := <-h.broadcast:
			h.mu.Lock()
			var dropped []*Client
			for client := range h.clients[msg.Topic] {
				select {
				case client.Send <- msg.Message:
				default:
					dropped = append(dropped, client)
				}
			}
			h.mu.Unlock()
			for _, client := range dropped {
				h.logger.Warn("dropping slow client", zap.String("topic", client.Topic))
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	clients, ok := h.clients[client.Topic]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	close(client.Send)

	var cancel context.CancelFunc
	if len(clients) == 0 {
		delete(h.clients, client.Topic)
		cancel = h.cancels[client.Topic]
		delete(h.cancels, client.Topic)
	}
	h.mu.Unlock()

	if cancel != nil {
		h.logger.Info("last subscriber left, stopping job", zap.String("job_id", client.Topic))
		cancel()
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Bind ties a job's poller to its subscribers.
func (h *Hub) Bind(jobID string, cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancels[jobID] = cancel
}

// Release forgets the binding of a finished job.
func (h *Hub) Release(jobID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.cancels, jobID)
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

func (h *Hub) publish(topic string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to marshal message", zap.String("topic", topic), zap.Error(err))
		return
	}
	h.broadcast <- &BroadcastMessage{Topic: topic, Message: data}
}

// BroadcastSnapshot sends a poll result to the job's subscribers.
func (h *Hub) BroadcastSnapshot(jobID, flow, state string, seq uint64, status any) {
	h.publish(jobID, model.WSSnapshotMessage{
		Type:   model.WSMessageTypeSnapshot,
		JobID:  jobID,
		Flow:   flow,
		State:  state,
		Seq:    seq,
		Status: status,
	})
}

func (h *Hub) BroadcastComplete(jobID, flow string, result any) {
	h.publish(jobID, model.WSCompleteMessage{
		Type:   model.WSMessageTypeComplete,
		JobID:  jobID,
		Flow:   flow,
		Result: result,
	})
}

func (h *Hub) BroadcastError(jobID, code, message string) {
	h.publish(jobID, model.WSErrorMessage{
		Type:  model.WSMessageTypeError,
		JobID: jobID,
		Error: model.WSError{Code: code, Message: message},
	})
}

// BroadcastNotification pushes n to every open connection of its user.
func (h *Hub) BroadcastNotification(n model.Notification) {
	h.publish(UserTopic(n.UserID), model.WSNotificationMessage{
		Type:         model.WSMessageTypeNotification,
		Notification: n,
	})
}

// BroadcastList pushes a refreshed list to every open connection of
// userID.
func (h *Hub) BroadcastList(userID, list string, items any) {
	h.publish(UserTopic(userID), model.WSListMessage{
		Type:  model.WSMessageTypeList,
		List:  list,
		Items: items,
	})
}

// handleMessage answers a message read from client. A pong is queued for
// the pinging connection alone; a pong still pending absorbs the next one.
func (h *Hub) handleMessage(client *Client, message []byte) {
	var msg model.WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}
	if msg.Type != model.WSMessageTypePing || client.Pong == nil {
		return
	}
	data, err := json.Marshal(model.WSMessage{Type: model.WSMessageTypePong})
	if err != nil {
		return
	}
	select {
	case client.Pong <- data:
	default:
	}
}

// HandleConnection serves one WebSocket connection subscribed to topic
// until it closes.
func (h *Hub) HandleConnection(c *websocket.Conn, topic string) {
	client := &Client{
		Topic: topic,
		Conn:  c,
		Send:  make(chan []byte, sendBuffer),
		Pong:  make(chan []byte, 1),
	}

	h.Register(client)
	defer h.Unregister(client)

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					_ = c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case message := <-client.Pong:
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read failed", zap.String("topic", topic), zap.Error(err))
			}
			break
		}
		h.handleMessage(client, message)
	}
}
