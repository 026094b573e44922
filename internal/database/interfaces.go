package database

import (
	"context"
	"time"

	"teamboard/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	SetRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error
	GetUserByRefreshToken(ctx context.Context, token string) (*models.User, error)
	ClearRefreshToken(ctx context.Context, userID int) error
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserActive(ctx context.Context, userID int, active bool) error
}

type RoomRepository interface {
	CreateRoom(ctx context.Context, req *models.CreateRoomRequest, creatorID int) (*models.Room, error)
	GetRoomByID(ctx context.Context, id int) (*models.Room, error)
	ListRoomsForUser(ctx context.Context, userID int) ([]models.RoomSummary, error)
	AddMember(ctx context.Context, roomID, userID int) error
	GetRoomMembers(ctx context.Context, roomID int) ([]models.Member, error)
}

type MembershipRepository interface {
	IsMember(ctx context.Context, roomID, userID int) (bool, error)
	SetOnline(ctx context.Context, roomID, userID int, online bool) error
	OnlineCount(ctx context.Context, roomID int) (int, error)
}

type MessageRepository interface {
	SaveMessage(ctx context.Context, roomID, senderID int, content string) (*models.Message, error)
	RecentMessages(ctx context.Context, roomID, limit int) ([]models.Message, error)
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, req *models.CreateProjectRequest, authorID int) (*models.Project, error)
	GetProjectByID(ctx context.Context, id int) (*models.Project, error)
	ListProjectsForUser(ctx context.Context, userID int) ([]models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id int) error
	AddProjectMember(ctx context.Context, projectID, userID int, role string) error
	ListProjectMembers(ctx context.Context, projectID int) ([]models.ProjectMember, error)
	GetProjectRole(ctx context.Context, projectID, userID int) (string, error)
}

type TaskRepository interface {
	CreateTask(ctx context.Context, projectID int, req *models.CreateTaskRequest) (*models.Task, error)
	GetTaskByID(ctx context.Context, id int) (*models.Task, error)
	ListTasksForProject(ctx context.Context, projectID int) ([]models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id int) error
}

type NoteRepository interface {
	CreateNote(ctx context.Context, req *models.CreateNoteRequest, authorID int) (*models.Note, error)
	GetNoteByID(ctx context.Context, id int) (*models.Note, error)
	ListNotesForUser(ctx context.Context, userID int) ([]models.Note, error)
	UpdateNote(ctx context.Context, note *models.Note) error
	DeleteNote(ctx context.Context, id int) error
	ShareNote(ctx context.Context, noteID, userID int, permission string) error
	NoteShares(ctx context.Context, noteID int) ([]models.NoteShare, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, noteID, authorID int, content string) (*models.Comment, error)
	GetCommentByID(ctx context.Context, id int) (*models.Comment, error)
	ListComments(ctx context.Context, noteID int) ([]models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id int) error
}

type Database interface {
	UserRepository
	RoomRepository
	MembershipRepository
	MessageRepository
	ProjectRepository
	TaskRepository
	NoteRepository
	CommentRepository
	Close() error
}
