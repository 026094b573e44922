package services

import (
	"context"
	"fmt"
	"strings"

	"teamboard/internal/database"
	"teamboard/internal/models"
)

type NoteService struct {
	db database.Database
}

func NewNoteService(db database.Database) *NoteService {
	return &NoteService{db: db}
}

// canEditNote is the single capability check for note writes: the author, site
// admins, and users holding an edit share.
func canEditNote(actor *models.User, note *models.Note, shares []models.NoteShare) bool {
	if actor.Role == models.RoleAdmin || note.AuthorID == actor.ID {
		return true
	}
	for _, share := range shares {
		if share.UserID == actor.ID && share.Permission == models.NotePermissionEdit {
			return true
		}
	}
	return false
}

// canViewNote gates reads: anyone who can edit, plus holders of a read share.
func canViewNote(actor *models.User, note *models.Note, shares []models.NoteShare) bool {
	if canEditNote(actor, note, shares) {
		return true
	}
	for _, share := range shares {
		if share.UserID == actor.ID {
			return true
		}
	}
	return false
}

func (s *NoteService) List(ctx context.Context, userID int) ([]models.Note, error) {
	return s.db.ListNotesForUser(ctx, userID)
}

func (s *NoteService) Get(ctx context.Context, noteID int, actor *models.User) (*models.Note, error) {
	note, err := s.db.GetNoteByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	shares, err := s.db.NoteShares(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !canViewNote(actor, note, shares) {
		return nil, models.ErrForbidden
	}
	return note, nil
}

func (s *NoteService) Create(ctx context.Context, req *models.CreateNoteRequest, actor *models.User) (*models.Note, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: note title is required", models.ErrInvalidContent)
	}
	return s.db.CreateNote(ctx, req, actor.ID)
}

func (s *NoteService) Update(ctx context.Context, noteID int, req *models.UpdateNoteRequest, actor *models.User) (*models.Note, error) {
	note, err := s.db.GetNoteByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	shares, err := s.db.NoteShares(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !canEditNote(actor, note, shares) {
		return nil, models.ErrForbidden
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}

	if err := s.db.UpdateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete is author-or-admin only; an edit share does not allow deletion.
func (s *NoteService) Delete(ctx context.Context, noteID int, actor *models.User) error {
	note, err := s.db.GetNoteByID(ctx, noteID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin && note.AuthorID != actor.ID {
		return models.ErrForbidden
	}
	return s.db.DeleteNote(ctx, noteID)
}

// Share grants another user, looked up by email, read or edit access. Only the
// author or an admin may share.
func (s *NoteService) Share(ctx context.Context, noteID int, req *models.ShareNoteRequest, actor *models.User) error {
	note, err := s.db.GetNoteByID(ctx, noteID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin && note.AuthorID != actor.ID {
		return models.ErrForbidden
	}

	permission := req.Permission
	switch permission {
	case "":
		permission = models.NotePermissionRead
	case models.NotePermissionRead, models.NotePermissionEdit:
	default:
		return fmt.Errorf("%w: unknown permission %q", models.ErrInvalidContent, permission)
	}

	target, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("%w: no user with that email", models.ErrNotFound)
	}
	if target.ID == note.AuthorID {
		return fmt.Errorf("%w: cannot share a note with its author", models.ErrConflict)
	}

	return s.db.ShareNote(ctx, noteID, target.ID, permission)
}

func (s *NoteService) Shares(ctx context.Context, noteID int, actor *models.User) ([]models.NoteShare, error) {
	note, err := s.db.GetNoteByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && note.AuthorID != actor.ID {
		return nil, models.ErrForbidden
	}
	return s.db.NoteShares(ctx, noteID)
}

// Comments lists the note's comments, newest first. Anyone who can view the
// note can read and write its comments.
func (s *NoteService) Comments(ctx context.Context, noteID int, actor *models.User) ([]models.Comment, error) {
	if err := s.requireNoteView(ctx, noteID, actor); err != nil {
		return nil, err
	}
	return s.db.ListComments(ctx, noteID)
}

func (s *NoteService) AddComment(ctx context.Context, noteID int, req *models.CreateCommentRequest, actor *models.User) (*models.Comment, error) {
	if err := s.requireNoteView(ctx, noteID, actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: comment content is required", models.ErrInvalidContent)
	}
	return s.db.CreateComment(ctx, noteID, actor.ID, req.Content)
}

// UpdateComment is restricted to the comment's author and site admins.
func (s *NoteService) UpdateComment(ctx context.Context, commentID int, req *models.UpdateCommentRequest, actor *models.User) (*models.Comment, error) {
	comment, err := s.db.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && comment.AuthorID != actor.ID {
		return nil, models.ErrForbidden
	}

	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, fmt.Errorf("%w: comment content is required", models.ErrInvalidContent)
		}
		comment.Content = *req.Content
	}

	if err := s.db.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *NoteService) DeleteComment(ctx context.Context, commentID int, actor *models.User) error {
	comment, err := s.db.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin && comment.AuthorID != actor.ID {
		return models.ErrForbidden
	}
	return s.db.DeleteComment(ctx, commentID)
}

func (s *NoteService) requireNoteView(ctx context.Context, noteID int, actor *models.User) error {
	note, err := s.db.GetNoteByID(ctx, noteID)
	if err != nil {
		return err
	}
	shares, err := s.db.NoteShares(ctx, noteID)
	if err != nil {
		return err
	}
	if !canViewNote(actor, note, shares) {
		return models.ErrForbidden
	}
	return nil
}
