package models

// Frame is a client-to-server message on the WebSocket connection.
type Frame struct {
	Type    FrameType `json:"type"`
	RoomID  int       `json:"room_id"`
	Content string    `json:"content,omitempty"`
}

type FrameType string

const (
	FrameJoin    FrameType = "join"
	FrameMessage FrameType = "message"
)

// Event is a server-to-client message on the WebSocket connection.
type Event struct {
	Type     EventType `json:"type"`
	RoomID   int       `json:"room_id,omitempty"`
	UserID   int       `json:"user_id,omitempty"`
	Username string    `json:"username,omitempty"`
	Count    int       `json:"count"`
	Message  *Message  `json:"message,omitempty"`
	Code     string    `json:"code,omitempty"`
	Error    string    `json:"error,omitempty"`
}

type EventType string

const (
	EventMessage     EventType = "message"
	EventUserJoined  EventType = "user_joined"
	EventUserLeft    EventType = "user_left"
	EventOnlineCount EventType = "online_count"
	EventError       EventType = "error"
)
