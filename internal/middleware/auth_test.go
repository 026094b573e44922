package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teamboard/internal/auth"
	"teamboard/internal/config"
	"teamboard/internal/database"
	"teamboard/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// stubDB satisfies database.Database through embedding; only the user lookup
// the auth middleware needs is implemented.
type stubDB struct {
	database.Database
	user *models.User
}

func (s *stubDB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, models.ErrNotFound
}

func mintToken(t *testing.T, secret []byte, user *models.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestRequireAdmin(t *testing.T) {
	secret := []byte("test-secret")
	cfg := &config.Config{JWT: config.JWTConfig{Secret: secret, ExpiresIn: time.Hour}}

	cases := []struct {
		name string
		user *models.User
		want int
	}{
		{"admin allowed", &models.User{ID: 1, Username: "root", Role: models.RoleAdmin, IsActive: true}, http.StatusOK},
		{"regular user forbidden", &models.User{ID: 2, Username: "u", Role: models.RoleUser, IsActive: true}, http.StatusForbidden},
		{"manager forbidden", &models.User{ID: 3, Username: "m", Role: models.RoleManager, IsActive: true}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			authService := auth.NewService(&stubDB{user: tc.user}, cfg)
			handler := RequireAdmin(authService, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			req.Header.Set("Authorization", "Bearer "+mintToken(t, secret, tc.user))
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}

	t.Run("missing token", func(t *testing.T) {
		authService := auth.NewService(&stubDB{}, cfg)
		handler := RequireAdmin(authService, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		query  string
		want   string
		ok     bool
	}{
		{"header", "Bearer abc123", "", "abc123", true},
		{"missing", "", "", "", false},
		{"wrong scheme", "Basic abc123", "", "", false},
		{"empty token", "Bearer ", "", "", false},
		{"query fallback", "", "abc123", "abc123", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			url := "/api/chat/rooms"
			if tc.query != "" {
				url += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			got, ok := bearerToken(req)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("bearerToken = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}
