package models

import "time"

type Room struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	ProjectID *int      `json:"project_id,omitempty"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomSummary is a room as shown in the user's room list, enriched with
// counters and the latest message.
type RoomSummary struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	ProjectID       *int       `json:"project_id,omitempty"`
	MemberCount     int        `json:"member_count"`
	OnlineCount     int        `json:"online_count"`
	UnreadCount     int        `json:"unread_count"`
	LastMessage     string     `json:"last_message"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	LastSenderName  string     `json:"last_sender_name,omitempty"`
}

type Message struct {
	ID         int       `json:"id"`
	RoomID     int       `json:"room_id"`
	SenderID   int       `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

type Member struct {
	ID       int       `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
	IsOnline bool      `json:"is_online"`
}

type CreateRoomRequest struct {
	Name      string `json:"name"`
	ProjectID *int   `json:"project_id,omitempty"`
	IsPrivate bool   `json:"is_private"`
}

type InviteRequest struct {
	Email string `json:"email"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}
