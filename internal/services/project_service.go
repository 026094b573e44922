package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"teamboard/internal/database"
	"teamboard/internal/models"
)

type ProjectService struct {
	db database.Database
}

func NewProjectService(db database.Database) *ProjectService {
	return &ProjectService{db: db}
}

// canEditProject is the single capability check for project writes: the author
// and site admins may edit; nobody else.
func canEditProject(actor *models.User, project *models.Project) bool {
	return actor.Role == models.RoleAdmin || project.AuthorID == actor.ID
}

// canViewProject gates reads: author, site admin, or any project member.
func (s *ProjectService) canViewProject(ctx context.Context, actor *models.User, project *models.Project) (bool, error) {
	if canEditProject(actor, project) {
		return true, nil
	}
	_, err := s.db.GetProjectRole(ctx, project.ID, actor.ID)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// canEditTasks allows task writes for the author and every member role except
// observer.
func (s *ProjectService) canEditTasks(ctx context.Context, actor *models.User, project *models.Project) (bool, error) {
	if canEditProject(actor, project) {
		return true, nil
	}
	role, err := s.db.GetProjectRole(ctx, project.ID, actor.ID)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return role != models.ProjectRoleObserver, nil
}

func (s *ProjectService) List(ctx context.Context, userID int) ([]models.Project, error) {
	return s.db.ListProjectsForUser(ctx, userID)
}

func (s *ProjectService) Get(ctx context.Context, projectID int, actor *models.User) (*models.Project, error) {
	project, err := s.db.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canViewProject(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrForbidden
	}
	return project, nil
}

// Create requires an admin or manager site role.
func (s *ProjectService) Create(ctx context.Context, req *models.CreateProjectRequest, actor *models.User) (*models.Project, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleManager {
		return nil, models.ErrForbidden
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: project name is required", models.ErrInvalidContent)
	}
	if req.Status == "" {
		req.Status = "active"
	}

	return s.db.CreateProject(ctx, req, actor.ID)
}

func (s *ProjectService) Update(ctx context.Context, projectID int, req *models.UpdateProjectRequest, actor *models.User) (*models.Project, error) {
	project, err := s.db.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !canEditProject(actor, project) {
		return nil, models.ErrForbidden
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}

	if err := s.db.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, projectID int, actor *models.User) error {
	project, err := s.db.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !canEditProject(actor, project) {
		return models.ErrForbidden
	}
	return s.db.DeleteProject(ctx, projectID)
}

func (s *ProjectService) AddMember(ctx context.Context, projectID int, req *models.AddProjectMemberRequest, actor *models.User) error {
	project, err := s.db.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !canEditProject(actor, project) {
		return models.ErrForbidden
	}

	role := req.ProjectRole
	switch role {
	case "":
		role = models.ProjectRoleMember
	case models.ProjectRoleManager, models.ProjectRoleMember, models.ProjectRoleObserver:
	default:
		return fmt.Errorf("%w: unknown project role %q", models.ErrInvalidContent, role)
	}

	member, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("%w: no user with that email", models.ErrNotFound)
	}

	return s.db.AddProjectMember(ctx, projectID, member.ID, role)
}

func (s *ProjectService) Members(ctx context.Context, projectID int, actor *models.User) ([]models.ProjectMember, error) {
	project, err := s.db.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canViewProject(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrForbidden
	}

	return s.db.ListProjectMembers(ctx, projectID)
}

// Tasks

func (s *ProjectService) Tasks(ctx context.Context, projectID int, actor *models.User) ([]models.Task, error) {
	project, err := s.db.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canViewProject(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrForbidden
	}

	return s.db.ListTasksForProject(ctx, projectID)
}

func (s *ProjectService) CreateTask(ctx context.Context, projectID int, req *models.CreateTaskRequest, actor *models.User) (*models.Task, error) {
	project, err := s.db.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canEditTasks(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrForbidden
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: task title is required", models.ErrInvalidContent)
	}
	if req.Status == "" {
		req.Status = "todo"
	}

	return s.db.CreateTask(ctx, projectID, req)
}

func (s *ProjectService) UpdateTask(ctx context.Context, taskID int, req *models.UpdateTaskRequest, actor *models.User) (*models.Task, error) {
	task, err := s.db.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	project, err := s.db.GetProjectByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}

	ok, err := s.canEditTasks(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrForbidden
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := s.db.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *ProjectService) DeleteTask(ctx context.Context, taskID int, actor *models.User) error {
	task, err := s.db.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	project, err := s.db.GetProjectByID(ctx, task.ProjectID)
	if err != nil {
		return err
	}

	ok, err := s.canEditTasks(ctx, actor, project)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrForbidden
	}

	return s.db.DeleteTask(ctx, taskID)
}
