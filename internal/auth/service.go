package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"teamboard/internal/config"
	"teamboard/internal/database"
	"teamboard/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the verified identity carried by an access token.
type Claims struct {
	UserID   int
	Username string
	Role     string
}

type Service struct {
	db  database.Database
	cfg *config.Config
}

func NewService(db database.Database, cfg *config.Config) *Service {
	return &Service{
		db:  db,
		cfg: cfg,
	}
}

func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.LoginResponse, error) {
	if err := s.validateRegistrationRequest(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.db.CreateUser(ctx, req, string(hash))
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: login or email already taken", models.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.db.GetUserByLogin(ctx, req.Login)
	if err != nil {
		return nil, models.ErrUnauthenticated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrUnauthenticated
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: account deactivated", models.ErrForbidden)
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a live refresh token for a fresh token pair. The old refresh
// token is rotated out.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	user, err := s.db.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, models.ErrUnauthenticated
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account deactivated", models.ErrForbidden)
	}

	return s.issueTokens(ctx, user)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	user, err := s.db.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil {
		return models.ErrUnauthenticated
	}
	return s.db.ClearRefreshToken(ctx, user.ID)
}

// VerifyToken validates an access token and resolves it to an identity.
// Malformed, expired and wrongly signed tokens all fail with ErrUnauthenticated.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.JWT.Secret, nil
	})
	if err != nil {
		return nil, models.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, models.ErrUnauthenticated
	}

	userIDFloat, ok := (*claims)["user_id"].(float64)
	if !ok {
		return nil, models.ErrUnauthenticated
	}
	username, _ := (*claims)["username"].(string)
	role, _ := (*claims)["role"].(string)

	return &Claims{
		UserID:   int(userIDFloat),
		Username: username,
		Role:     role,
	}, nil
}

// GetUserFromToken verifies the token and loads the current user record, so
// deactivated users are rejected even while their token is still live.
func (s *Service) GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.db.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, models.ErrUnauthenticated
	}
	if !user.IsActive {
		return nil, models.ErrUnauthenticated
	}
	return user, nil
}

func (s *Service) issueTokens(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	refreshToken := uuid.NewString()
	expiresAt := time.Now().Add(s.cfg.JWT.RefreshExpiresIn)
	if err := s.db.SetRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	// Remove sensitive data
	user.PasswordHash = ""

	return &models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         *user,
	}, nil
}

func (s *Service) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.cfg.JWT.ExpiresIn).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cfg.JWT.Secret)
}

func (s *Service) validateRegistrationRequest(req *models.RegisterRequest) error {
	if req.Username == "" || req.Email == "" || req.Login == "" || req.Password == "" {
		return fmt.Errorf("%w: missing required fields", models.ErrInvalidContent)
	}

	if !isValidEmail(req.Email) {
		return fmt.Errorf("%w: invalid email format", models.ErrInvalidContent)
	}

	if len(req.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", models.ErrInvalidContent)
	}

	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 || len(req.Username) > 30 {
		return fmt.Errorf("%w: username must be 3-30 characters long", models.ErrInvalidContent)
	}

	return nil
}

func isValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}
