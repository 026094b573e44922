package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"teamboard/internal/models"
	"teamboard/pkg/logger"
)

// RoomService is the slice of the room layer the gateway needs: membership
// checks, the presence projection, and the message log.
type RoomService interface {
	GetRoom(ctx context.Context, roomID int) (*models.Room, error)
	IsMember(ctx context.Context, roomID, userID int) (bool, error)
	SetOnline(ctx context.Context, roomID, userID int, online bool) error
	PostMessage(ctx context.Context, roomID, senderID int, content string) (*models.Message, error)
}

type sendRequest struct {
	senderID int
	content  string
	reply    chan sendResult
}

type sendResult struct {
	msg *models.Message
	err error
}

// hubCmd is a register or unregister for one connection. Both travel on a
// single channel so a connection's leave can never overtake its join.
type hubCmd struct {
	register bool
	client   *Client
}

// Hub serializes all presence mutation and message fan-out for one room. Its
// run loop is the single sequencing point: everyone subscribed observes
// messages in append order, and online-count updates never interleave.
type Hub struct {
	roomID int
	svc    RoomService

	clients map[*Client]bool
	online  map[int]int // userID -> live connection count in this room

	commands chan hubCmd
	sends    chan sendRequest
	shutdown chan struct{}

	// refs counts registered clients plus in-flight operations; the manager
	// only reaps a hub when it drops to zero.
	refs         atomic.Int64
	shutdownOnce sync.Once
	lastActivity time.Time
}

func newHub(roomID int, svc RoomService) *Hub {
	return &Hub{
		roomID:       roomID,
		svc:          svc,
		clients:      make(map[*Client]bool),
		online:       make(map[int]int),
		commands:     make(chan hubCmd, 16),
		sends:        make(chan sendRequest, 8),
		shutdown:     make(chan struct{}),
		lastActivity: time.Now(),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.shutdown:
			return

		case cmd := <-h.commands:
			if cmd.register {
				h.handleRegister(cmd.client)
			} else {
				h.handleUnregister(cmd.client)
			}

		case req := <-h.sends:
			h.handleSend(req)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.clients[client] = true
	h.lastActivity = time.Now()

	h.online[client.userID]++
	if h.online[client.userID] == 1 {
		// First live connection for this (room, user): project the flag.
		if err := h.svc.SetOnline(context.Background(), h.roomID, client.userID, true); err != nil {
			logger.Error().Err(err).Int("room_id", h.roomID).Int("user_id", client.userID).
				Msg("failed to persist online flag")
			client.sendEvent(&models.Event{
				Type:   models.EventError,
				RoomID: h.roomID,
				Code:   "internal",
				Error:  "presence update failed; your online status may lag",
			})
		}
	}

	h.broadcast(&models.Event{
		Type:     models.EventUserJoined,
		RoomID:   h.roomID,
		UserID:   client.userID,
		Username: client.username,
	})
	h.broadcastOnlineCount()
	logger.Debug().Int("room_id", h.roomID).Int("user_id", client.userID).Msg("connection joined room")
}

// handleUnregister relies on commands being ordered per connection: a
// connection's unregister is always processed after its register.
func (h *Hub) handleUnregister(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	h.refs.Add(-1)
	h.lastActivity = time.Now()

	h.online[client.userID]--
	if h.online[client.userID] > 0 {
		// The user still has another live connection to this room; the online
		// flag and count are unchanged.
		return
	}
	delete(h.online, client.userID)

	if err := h.svc.SetOnline(context.Background(), h.roomID, client.userID, false); err != nil {
		logger.Error().Err(err).Int("room_id", h.roomID).Int("user_id", client.userID).
			Msg("failed to clear online flag")
	}

	h.broadcast(&models.Event{
		Type:     models.EventUserLeft,
		RoomID:   h.roomID,
		UserID:   client.userID,
		Username: client.username,
	})
	h.broadcastOnlineCount()
	logger.Debug().Int("room_id", h.roomID).Int("user_id", client.userID).Msg("connection left room")
}

// handleSend is the append-then-broadcast path. The append happens inside the
// run loop so fan-out order always matches log order; failures go back to the
// sender only.
func (h *Hub) handleSend(req sendRequest) {
	h.lastActivity = time.Now()

	msg, err := h.svc.PostMessage(context.Background(), h.roomID, req.senderID, req.content)
	if err != nil {
		req.reply <- sendResult{err: err}
		return
	}

	h.broadcast(&models.Event{
		Type:    models.EventMessage,
		RoomID:  h.roomID,
		Message: msg,
	})
	req.reply <- sendResult{msg: msg}
}

// Send appends a message through the hub's sequencing point and waits for the
// result. Used by both the WebSocket and the REST send path.
func (h *Hub) Send(senderID int, content string) (*models.Message, error) {
	reply := make(chan sendResult, 1)
	select {
	case h.sends <- sendRequest{senderID: senderID, content: content, reply: reply}:
	case <-h.shutdown:
		return nil, fmt.Errorf("room %d gateway is shut down", h.roomID)
	}
	select {
	case res := <-reply:
		return res.msg, res.err
	case <-h.shutdown:
		return nil, fmt.Errorf("room %d gateway is shut down", h.roomID)
	}
}

func (h *Hub) broadcastOnlineCount() {
	h.broadcast(&models.Event{
		Type:   models.EventOnlineCount,
		RoomID: h.roomID,
		Count:  len(h.online),
	})
}

func (h *Hub) broadcast(event *models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal event")
		return
	}
	for client := range h.clients {
		// A client that cannot keep up is closed; its teardown unregisters it
		// from every room through the normal leave path.
		client.trySend(data)
	}
}

func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() { close(h.shutdown) })
}

// Manager owns one hub per room, creating them on demand and reaping idle ones.
type Manager struct {
	mu   sync.Mutex
	hubs map[int]*Hub
	svc  RoomService

	stop chan struct{}
}

func NewManager(svc RoomService) *Manager {
	m := &Manager{
		hubs: make(map[int]*Hub),
		svc:  svc,
		stop: make(chan struct{}),
	}

	go m.reapIdleHubs()
	return m
}

// hubFor returns the room's hub, creating and starting it if needed.
// Callers must hold m.mu.
func (m *Manager) hubFor(roomID int) *Hub {
	hub, exists := m.hubs[roomID]
	if !exists {
		hub = newHub(roomID, m.svc)
		m.hubs[roomID] = hub
		go hub.Run()
	}
	return hub
}

// Join subscribes the connection to the room. The membership check happens
// here, before the hub's sequencing point; non-members never touch the room's
// presence state.
func (m *Manager) Join(ctx context.Context, client *Client, roomID int) error {
	if client.joined(roomID) {
		return nil
	}

	if _, err := m.svc.GetRoom(ctx, roomID); err != nil {
		return err
	}

	isMember, err := m.svc.IsMember(ctx, roomID, client.userID)
	if err != nil {
		return err
	}
	if !isMember {
		return models.ErrForbidden
	}

	m.mu.Lock()
	hub := m.hubFor(roomID)
	hub.refs.Add(1)
	m.mu.Unlock()

	client.addRoom(roomID, hub)
	select {
	case hub.commands <- hubCmd{register: true, client: client}:
	case <-hub.shutdown:
		client.removeRoom(roomID)
		hub.refs.Add(-1)
		return fmt.Errorf("room %d gateway is shut down", roomID)
	}
	return nil
}

// Post appends a message via the room's hub so REST sends share the gateway's
// ordering with WebSocket sends, and connected clients get the fan-out.
func (m *Manager) Post(ctx context.Context, roomID, senderID int, content string) (*models.Message, error) {
	if _, err := m.svc.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	hub := m.hubFor(roomID)
	hub.refs.Add(1)
	m.mu.Unlock()
	defer hub.refs.Add(-1)

	return hub.Send(senderID, content)
}

func (m *Manager) reapIdleHubs() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			for roomID, hub := range m.hubs {
				if hub.refs.Load() == 0 {
					hub.Shutdown()
					delete(m.hubs, roomID)
					logger.Debug().Int("room_id", roomID).Msg("reaped idle room hub")
				}
			}
			m.mu.Unlock()
		}
	}
}

// Shutdown stops all hubs and the reaper. Connections are closed by their own
// pumps when the HTTP server shuts down.
func (m *Manager) Shutdown() {
	close(m.stop)

	m.mu.Lock()
	defer m.mu.Unlock()
	for roomID, hub := range m.hubs {
		hub.Shutdown()
		delete(m.hubs, roomID)
	}
}

// errorCode maps domain errors onto wire-level error codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, models.ErrForbidden):
		return "forbidden"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidContent):
		return "invalid_content"
	case errors.Is(err, models.ErrNotMember):
		return "not_a_member"
	case errors.Is(err, models.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
