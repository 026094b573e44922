package database

import (
	"context"

	"teamboard/internal/models"
)

// Note Repository Implementation

func (db *PostgresDB) CreateNote(ctx context.Context, req *models.CreateNoteRequest, authorID int) (*models.Note, error) {
	query := `
		INSERT INTO notes (author_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING note_id, author_id, title, content, created_at, updated_at`

	n := &models.Note{}
	err := db.pool.QueryRow(ctx, query, authorID, req.Title, req.Content).Scan(
		&n.ID, &n.AuthorID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return n, nil
}

func (db *PostgresDB) GetNoteByID(ctx context.Context, id int) (*models.Note, error) {
	query := `
		SELECT note_id, author_id, title, content, created_at, updated_at
		FROM notes WHERE note_id = $1`

	n := &models.Note{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.AuthorID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return n, nil
}

// ListNotesForUser returns the user's own notes plus notes shared with them.
func (db *PostgresDB) ListNotesForUser(ctx context.Context, userID int) ([]models.Note, error) {
	query := `
		SELECT DISTINCT n.note_id, n.author_id, n.title, n.content, n.created_at, n.updated_at
		FROM notes n
		LEFT JOIN note_shares ns ON ns.note_id = n.note_id
		WHERE n.author_id = $1 OR ns.user_id = $1
		ORDER BY n.updated_at DESC, n.note_id`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.AuthorID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (db *PostgresDB) UpdateNote(ctx context.Context, note *models.Note) error {
	query := `UPDATE notes SET title = $2, content = $3, updated_at = NOW() WHERE note_id = $1`

	tag, err := db.pool.Exec(ctx, query, note.ID, note.Title, note.Content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (db *PostgresDB) DeleteNote(ctx context.Context, id int) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM notes WHERE note_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (db *PostgresDB) ShareNote(ctx context.Context, noteID, userID int, permission string) error {
	query := `
		INSERT INTO note_shares (note_id, user_id, permission) VALUES ($1, $2, $3)
		ON CONFLICT (note_id, user_id) DO UPDATE SET permission = EXCLUDED.permission`
	_, err := db.pool.Exec(ctx, query, noteID, userID, permission)
	return mapError(err)
}

// Comment Repository Implementation

func (db *PostgresDB) CreateComment(ctx context.Context, noteID, authorID int, content string) (*models.Comment, error) {
	query := `
		WITH ins AS (
			INSERT INTO note_comments (note_id, author_id, content, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			RETURNING comment_id, note_id, author_id, content, created_at, updated_at
		)
		SELECT ins.comment_id, ins.note_id, ins.author_id, u.user_name, ins.content, ins.created_at, ins.updated_at
		FROM ins JOIN users u ON u.user_id = ins.author_id`

	c := &models.Comment{}
	err := db.pool.QueryRow(ctx, query, noteID, authorID, content).Scan(
		&c.ID, &c.NoteID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (db *PostgresDB) GetCommentByID(ctx context.Context, id int) (*models.Comment, error) {
	query := `
		SELECT c.comment_id, c.note_id, c.author_id, u.user_name, c.content, c.created_at, c.updated_at
		FROM note_comments c
		JOIN users u ON u.user_id = c.author_id
		WHERE c.comment_id = $1`

	c := &models.Comment{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.NoteID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// ListComments returns the note's comments, newest first.
func (db *PostgresDB) ListComments(ctx context.Context, noteID int) ([]models.Comment, error) {
	query := `
		SELECT c.comment_id, c.note_id, c.author_id, u.user_name, c.content, c.created_at, c.updated_at
		FROM note_comments c
		JOIN users u ON u.user_id = c.author_id
		WHERE c.note_id = $1
		ORDER BY c.created_at DESC, c.comment_id DESC`

	rows, err := db.pool.Query(ctx, query, noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.NoteID, &c.AuthorID, &c.AuthorName,
			&c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (db *PostgresDB) UpdateComment(ctx context.Context, comment *models.Comment) error {
	query := `UPDATE note_comments SET content = $2, updated_at = NOW() WHERE comment_id = $1`

	tag, err := db.pool.Exec(ctx, query, comment.ID, comment.Content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (db *PostgresDB) DeleteComment(ctx context.Context, id int) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM note_comments WHERE comment_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (db *PostgresDB) NoteShares(ctx context.Context, noteID int) ([]models.NoteShare, error) {
	query := `
		SELECT ns.note_id, ns.user_id, u.user_name, ns.permission
		FROM note_shares ns
		JOIN users u ON u.user_id = ns.user_id
		WHERE ns.note_id = $1
		ORDER BY u.user_name`

	rows, err := db.pool.Query(ctx, query, noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []models.NoteShare
	for rows.Next() {
		var s models.NoteShare
		if err := rows.Scan(&s.NoteID, &s.UserID, &s.Username, &s.Permission); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}
