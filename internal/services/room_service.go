package services

import (
	"context"
	"fmt"
	"strings"

	"teamboard/internal/database"
	"teamboard/internal/models"
)

// DefaultMessagePageSize bounds how much history a single page request returns.
const DefaultMessagePageSize = 100

// RoomService is the room directory plus the message log. The presence gateway
// consumes it for membership checks, presence projection and message appends.
type RoomService struct {
	db database.Database
}

func NewRoomService(db database.Database) *RoomService {
	return &RoomService{db: db}
}

// Rooms lists the rooms visible to the user with member/online counters and the
// latest message preview, most recently active first.
func (s *RoomService) Rooms(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	return s.db.ListRoomsForUser(ctx, userID)
}

// CreateRoom creates a room and the creator's membership in one step.
func (s *RoomService) CreateRoom(ctx context.Context, req *models.CreateRoomRequest, creatorID int) (*models.Room, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: room name is required", models.ErrInvalidContent)
	}

	return s.db.CreateRoom(ctx, req, creatorID)
}

func (s *RoomService) GetRoom(ctx context.Context, roomID int) (*models.Room, error) {
	return s.db.GetRoomByID(ctx, roomID)
}

func (s *RoomService) IsMember(ctx context.Context, roomID, userID int) (bool, error) {
	return s.db.IsMember(ctx, roomID, userID)
}

// SetOnline projects the gateway's live-connection state onto the persisted
// membership flag. It is idempotent and a no-op for non-members.
func (s *RoomService) SetOnline(ctx context.Context, roomID, userID int, online bool) error {
	return s.db.SetOnline(ctx, roomID, userID, online)
}

func (s *RoomService) OnlineCount(ctx context.Context, roomID int) (int, error) {
	return s.db.OnlineCount(ctx, roomID)
}

// Messages returns up to limit most recent messages in the room, oldest first.
// Only members may read history.
func (s *RoomService) Messages(ctx context.Context, roomID, userID, limit int) ([]models.Message, error) {
	if _, err := s.db.GetRoomByID(ctx, roomID); err != nil {
		return nil, err
	}

	isMember, err := s.db.IsMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, models.ErrForbidden
	}

	if limit <= 0 || limit > DefaultMessagePageSize {
		limit = DefaultMessagePageSize
	}
	return s.db.RecentMessages(ctx, roomID, limit)
}

// PostMessage appends a message to the room's log and returns it with the
// server-assigned id and timestamp. Fails with ErrInvalidContent on blank
// content and ErrNotMember when the sender has no membership.
func (s *RoomService) PostMessage(ctx context.Context, roomID, senderID int, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.ErrInvalidContent
	}

	isMember, err := s.db.IsMember(ctx, roomID, senderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, models.ErrNotMember
	}

	return s.db.SaveMessage(ctx, roomID, senderID, content)
}

// Invite adds a user, looked up by email, to the room. Members and site admins
// may invite.
func (s *RoomService) Invite(ctx context.Context, roomID int, inviter *models.User, email string) error {
	if _, err := s.db.GetRoomByID(ctx, roomID); err != nil {
		return err
	}

	if inviter.Role != models.RoleAdmin {
		isMember, err := s.db.IsMember(ctx, roomID, inviter.ID)
		if err != nil {
			return err
		}
		if !isMember {
			return models.ErrForbidden
		}
	}

	invitee, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: no user with that email", models.ErrNotFound)
	}

	return s.db.AddMember(ctx, roomID, invitee.ID)
}

// Members lists the room's memberships. Only members and site admins may look.
func (s *RoomService) Members(ctx context.Context, roomID int, actor *models.User) ([]models.Member, error) {
	if _, err := s.db.GetRoomByID(ctx, roomID); err != nil {
		return nil, err
	}

	if actor.Role != models.RoleAdmin {
		isMember, err := s.db.IsMember(ctx, roomID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, models.ErrForbidden
		}
	}

	return s.db.GetRoomMembers(ctx, roomID)
}
