package services

import (
	"context"
	"fmt"

	"teamboard/internal/database"
	"teamboard/internal/models"
)

// UserService is the admin-facing user directory. Role gating happens in the
// middleware; this layer only enforces invariants that need the data.
type UserService struct {
	db database.Database
}

func NewUserService(db database.Database) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.db.ListUsers(ctx)
}

// SetActive activates or deactivates an account. Admins cannot change their own
// status; deactivation revokes the refresh token at the store level.
func (s *UserService) SetActive(ctx context.Context, userID int, active bool, actor *models.User) error {
	if userID == actor.ID {
		return fmt.Errorf("%w: cannot change your own account status", models.ErrInvalidContent)
	}
	if _, err := s.db.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return s.db.SetUserActive(ctx, userID, active)
}
