package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"teamboard/internal/models"
	"teamboard/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// Client is one live WebSocket connection bound to a verified identity. A
// connection starts with no room subscriptions and joins rooms with explicit
// join frames; disconnecting leaves every joined room exactly once.
type Client struct {
	id       string
	userID   int
	username string

	conn    *websocket.Conn
	manager *Manager
	send    chan []byte

	done      chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	rooms map[int]*Hub
}

func NewClient(manager *Manager, conn *websocket.Conn, userID int, username string) *Client {
	return &Client{
		id:       uuid.NewString(),
		userID:   userID,
		username: username,
		conn:     conn,
		manager:  manager,
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
		rooms:    make(map[int]*Hub),
	}
}

// ReadPump consumes frames until the transport drops. Its deferred cleanup is
// the single leave path: explicit close and network failure behave identically.
func (c *Client) ReadPump() {
	defer func() {
		c.leaveAll()
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error().Err(err).Str("connection_id", c.id).Msg("websocket read error")
			}
			break
		}

		var frame models.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.sendEvent(&models.Event{
				Type:  models.EventError,
				Code:  "invalid_content",
				Error: "malformed frame",
			})
			continue
		}

		c.handleFrame(&frame)
	}
}

func (c *Client) handleFrame(frame *models.Frame) {
	switch frame.Type {
	case models.FrameJoin:
		if err := c.manager.Join(context.Background(), c, frame.RoomID); err != nil {
			c.sendError(frame.RoomID, err)
		}

	case models.FrameMessage:
		hub := c.hub(frame.RoomID)
		if hub == nil {
			c.sendEvent(&models.Event{
				Type:   models.EventError,
				RoomID: frame.RoomID,
				Code:   "forbidden",
				Error:  "join the room before sending",
			})
			return
		}
		if _, err := hub.Send(c.userID, frame.Content); err != nil {
			c.sendError(frame.RoomID, err)
		}

	default:
		c.sendEvent(&models.Event{
			Type:  models.EventError,
			Code:  "invalid_content",
			Error: "unknown frame type",
		})
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error().Err(err).Str("connection_id", c.id).Msg("websocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues a message without blocking the hub loop. A client whose
// buffer is full is closed; its teardown then leaves every room normally.
func (c *Client) trySend(data []byte) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- data:
	default:
		c.close()
	}
}

func (c *Client) sendEvent(event *models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal event")
		return
	}
	c.trySend(data)
}

func (c *Client) sendError(roomID int, err error) {
	c.sendEvent(&models.Event{
		Type:   models.EventError,
		RoomID: roomID,
		Code:   errorCode(err),
		Error:  err.Error(),
	})
}

func (c *Client) addRoom(roomID int, hub *Hub) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[roomID] = hub
}

func (c *Client) removeRoom(roomID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
}

func (c *Client) joined(roomID int) bool {
	return c.hub(roomID) != nil
}

func (c *Client) hub(roomID int) *Hub {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms[roomID]
}

// leaveAll unregisters the connection from every joined room. Runs exactly
// once, from ReadPump's teardown.
func (c *Client) leaveAll() {
	c.mu.Lock()
	hubs := make([]*Hub, 0, len(c.rooms))
	for _, hub := range c.rooms {
		hubs = append(hubs, hub)
	}
	c.rooms = make(map[int]*Hub)
	c.mu.Unlock()

	for _, hub := range hubs {
		select {
		case hub.commands <- hubCmd{client: c}:
		case <-hub.shutdown:
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}
