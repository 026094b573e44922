package models

import "time"

const (
	NotePermissionRead = "read"
	NotePermissionEdit = "edit"
)

type Note struct {
	ID        int       `json:"id"`
	AuthorID  int       `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NoteShare struct {
	NoteID     int    `json:"note_id"`
	UserID     int    `json:"user_id"`
	Username   string `json:"username,omitempty"`
	Permission string `json:"permission"`
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type ShareNoteRequest struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

// Comment is a comment on a note, visible to everyone who can view the note.
type Comment struct {
	ID         int       `json:"id"`
	NoteID     int       `json:"note_id"`
	AuthorID   int       `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type UpdateCommentRequest struct {
	Content *string `json:"content,omitempty"`
}
