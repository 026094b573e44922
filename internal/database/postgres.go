package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamboard/internal/models"
	"teamboard/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("connected to database")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// mapError translates driver-level errors into the domain error taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return models.ErrConflict
	}
	return err
}

// User Repository Implementation

func (db *PostgresDB) CreateUser(ctx context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (email, login, user_name, password_hash, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, 'user', true, NOW())
		RETURNING user_id, email, login, user_name, role, is_active, created_at`

	user := &models.User{PasswordHash: passwordHash}
	err := db.pool.QueryRow(ctx, query, req.Email, req.Login, req.Username, passwordHash).Scan(
		&user.ID, &user.Email, &user.Login, &user.Username, &user.Role, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return user, nil
}

func (db *PostgresDB) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `
		SELECT user_id, email, login, user_name, password_hash, role, is_active, created_at
		FROM users WHERE login = $1 OR email = $1`
	return db.scanUser(ctx, query, login)
}

func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT user_id, email, login, user_name, password_hash, role, is_active, created_at
		FROM users WHERE email = $1`
	return db.scanUser(ctx, query, email)
}

func (db *PostgresDB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT user_id, email, login, user_name, password_hash, role, is_active, created_at
		FROM users WHERE user_id = $1`
	return db.scanUser(ctx, query, id)
}

func (db *PostgresDB) GetUserByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	query := `
		SELECT user_id, email, login, user_name, password_hash, role, is_active, created_at
		FROM users WHERE refresh_token = $1 AND refresh_token_expires_at > NOW()`
	return db.scanUser(ctx, query, token)
}

func (db *PostgresDB) scanUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Login, &user.Username, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (db *PostgresDB) SetRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	query := `UPDATE users SET refresh_token = $2, refresh_token_expires_at = $3 WHERE user_id = $1`
	_, err := db.pool.Exec(ctx, query, userID, token, expiresAt)
	return err
}

func (db *PostgresDB) ClearRefreshToken(ctx context.Context, userID int) error {
	query := `UPDATE users SET refresh_token = NULL, refresh_token_expires_at = NULL WHERE user_id = $1`
	_, err := db.pool.Exec(ctx, query, userID)
	return err
}

func (db *PostgresDB) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT user_id, email, login, user_name, role, is_active, created_at
		FROM users ORDER BY user_id`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Login, &u.Username, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetUserActive flips the account's active flag. Deactivation also revokes the
// refresh token so the account cannot mint new access tokens.
func (db *PostgresDB) SetUserActive(ctx context.Context, userID int, active bool) error {
	query := `
		UPDATE users
		SET is_active = $2,
			refresh_token = CASE WHEN $2 THEN refresh_token ELSE NULL END,
			refresh_token_expires_at = CASE WHEN $2 THEN refresh_token_expires_at ELSE NULL END
		WHERE user_id = $1`

	tag, err := db.pool.Exec(ctx, query, userID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Room Repository Implementation

func (db *PostgresDB) CreateRoom(ctx context.Context, req *models.CreateRoomRequest, creatorID int) (*models.Room, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO chats (name, project_id, is_private, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING chat_id, name, project_id, is_private, created_at`

	room := &models.Room{}
	err = tx.QueryRow(ctx, query, req.Name, req.ProjectID, req.IsPrivate).Scan(
		&room.ID, &room.Name, &room.ProjectID, &room.IsPrivate, &room.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	// Room creation always creates the creator's membership.
	_, err = tx.Exec(ctx,
		`INSERT INTO chat_members (chat_id, user_id, joined_at) VALUES ($1, $2, NOW())`,
		room.ID, creatorID,
	)
	if err != nil {
		return nil, mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return room, nil
}

func (db *PostgresDB) GetRoomByID(ctx context.Context, id int) (*models.Room, error) {
	query := `SELECT chat_id, name, project_id, is_private, created_at FROM chats WHERE chat_id = $1`

	room := &models.Room{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&room.ID, &room.Name, &room.ProjectID, &room.IsPrivate, &room.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return room, nil
}

func (db *PostgresDB) ListRoomsForUser(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	query := `
		SELECT c.chat_id, c.name, c.project_id,
			(SELECT COUNT(*) FROM chat_members cm WHERE cm.chat_id = c.chat_id) AS member_count,
			(SELECT COUNT(*) FROM chat_members cm WHERE cm.chat_id = c.chat_id AND cm.is_online) AS online_count,
			(SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.chat_id AND m.sender_id <> $1 AND NOT m.is_read) AS unread_count,
			COALESCE(lm.content, '') AS last_message,
			lm.created_at AS last_message_time,
			COALESCE(lu.user_name, '') AS last_sender_name
		FROM chats c
		JOIN chat_members me ON me.chat_id = c.chat_id AND me.user_id = $1
		LEFT JOIN LATERAL (
			SELECT m.content, m.created_at, m.sender_id
			FROM messages m
			WHERE m.chat_id = c.chat_id
			ORDER BY m.created_at DESC, m.message_id DESC
			LIMIT 1
		) lm ON true
		LEFT JOIN users lu ON lu.user_id = lm.sender_id
		ORDER BY lm.created_at DESC NULLS LAST, c.chat_id`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.RoomSummary
	for rows.Next() {
		var r models.RoomSummary
		if err := rows.Scan(&r.ID, &r.Name, &r.ProjectID, &r.MemberCount, &r.OnlineCount,
			&r.UnreadCount, &r.LastMessage, &r.LastMessageTime, &r.LastSenderName); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (db *PostgresDB) AddMember(ctx context.Context, roomID, userID int) error {
	query := `INSERT INTO chat_members (chat_id, user_id, joined_at) VALUES ($1, $2, NOW())`
	_, err := db.pool.Exec(ctx, query, roomID, userID)
	return mapError(err)
}

func (db *PostgresDB) GetRoomMembers(ctx context.Context, roomID int) ([]models.Member, error) {
	query := `
		SELECT u.user_id, u.user_name, u.email, cm.joined_at, cm.is_online
		FROM chat_members cm
		JOIN users u ON cm.user_id = u.user_id
		WHERE cm.chat_id = $1
		ORDER BY u.user_name`

	rows, err := db.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Username, &m.Email, &m.JoinedAt, &m.IsOnline); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Membership Repository Implementation

func (db *PostgresDB) IsMember(ctx context.Context, roomID, userID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id = $1 AND user_id = $2)`

	var exists bool
	err := db.pool.QueryRow(ctx, query, roomID, userID).Scan(&exists)
	return exists, err
}

// SetOnline flips the persisted presence projection for a membership.
// A missing membership row is a no-op, not an error.
func (db *PostgresDB) SetOnline(ctx context.Context, roomID, userID int, online bool) error {
	query := `UPDATE chat_members SET is_online = $3 WHERE chat_id = $1 AND user_id = $2`
	_, err := db.pool.Exec(ctx, query, roomID, userID, online)
	return err
}

func (db *PostgresDB) OnlineCount(ctx context.Context, roomID int) (int, error) {
	query := `SELECT COUNT(*) FROM chat_members WHERE chat_id = $1 AND is_online`

	var count int
	err := db.pool.QueryRow(ctx, query, roomID).Scan(&count)
	return count, err
}

// Message Repository Implementation

func (db *PostgresDB) SaveMessage(ctx context.Context, roomID, senderID int, content string) (*models.Message, error) {
	query := `
		WITH ins AS (
			INSERT INTO messages (chat_id, sender_id, content, is_read, created_at)
			VALUES ($1, $2, $3, false, NOW())
			RETURNING message_id, chat_id, sender_id, content, is_read, created_at
		)
		SELECT ins.message_id, ins.chat_id, ins.sender_id, u.user_name, ins.content, ins.is_read, ins.created_at
		FROM ins JOIN users u ON u.user_id = ins.sender_id`

	msg := &models.Message{}
	err := db.pool.QueryRow(ctx, query, roomID, senderID, content).Scan(
		&msg.ID, &msg.RoomID, &msg.SenderID, &msg.SenderName, &msg.Content, &msg.IsRead, &msg.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return msg, nil
}

func (db *PostgresDB) RecentMessages(ctx context.Context, roomID, limit int) ([]models.Message, error) {
	query := `
		SELECT m.message_id, m.chat_id, m.sender_id, u.user_name, m.content, m.is_read, m.created_at
		FROM messages m
		JOIN users u ON m.sender_id = u.user_id
		WHERE m.chat_id = $1
		ORDER BY m.created_at DESC, m.message_id DESC
		LIMIT $2`

	rows, err := db.pool.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.SenderName,
			&msg.Content, &msg.IsRead, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to show oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
