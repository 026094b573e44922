package database

import (
	"context"

	"teamboard/internal/models"
)

// Project Repository Implementation

func (db *PostgresDB) CreateProject(ctx context.Context, req *models.CreateProjectRequest, authorID int) (*models.Project, error) {
	query := `
		INSERT INTO projects (name, description, status, author_id, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING project_id, name, description, status, author_id, start_date, end_date, created_at`

	p := &models.Project{}
	err := db.pool.QueryRow(ctx, query, req.Name, req.Description, req.Status, authorID, req.StartDate, req.EndDate).Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.AuthorID, &p.StartDate, &p.EndDate, &p.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (db *PostgresDB) GetProjectByID(ctx context.Context, id int) (*models.Project, error) {
	query := `
		SELECT project_id, name, description, status, author_id, start_date, end_date, created_at
		FROM projects WHERE project_id = $1`

	p := &models.Project{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.AuthorID, &p.StartDate, &p.EndDate, &p.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (db *PostgresDB) ListProjectsForUser(ctx context.Context, userID int) ([]models.Project, error) {
	query := `
		SELECT DISTINCT p.project_id, p.name, p.description, p.status, p.author_id,
			p.start_date, p.end_date, p.created_at
		FROM projects p
		LEFT JOIN project_members pm ON pm.project_id = p.project_id
		WHERE p.author_id = $1 OR pm.user_id = $1
		ORDER BY p.project_id`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.AuthorID,
			&p.StartDate, &p.EndDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (db *PostgresDB) UpdateProject(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, status = $4, start_date = $5, end_date = $6
		WHERE project_id = $1`

	tag, err := db.pool.Exec(ctx, query, project.ID, project.Name, project.Description,
		project.Status, project.StartDate, project.EndDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (db *PostgresDB) DeleteProject(ctx context.Context, id int) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM projects WHERE project_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (db *PostgresDB) AddProjectMember(ctx context.Context, projectID, userID int, role string) error {
	query := `INSERT INTO project_members (project_id, user_id, project_role) VALUES ($1, $2, $3)`
	_, err := db.pool.Exec(ctx, query, projectID, userID, role)
	return mapError(err)
}

func (db *PostgresDB) ListProjectMembers(ctx context.Context, projectID int) ([]models.ProjectMember, error) {
	query := `
		SELECT u.user_id, u.user_name, u.email, pm.project_role
		FROM project_members pm
		JOIN users u ON u.user_id = pm.user_id
		WHERE pm.project_id = $1
		ORDER BY u.user_name`

	rows, err := db.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.ProjectMember
	for rows.Next() {
		var m models.ProjectMember
		if err := rows.Scan(&m.UserID, &m.Username, &m.Email, &m.ProjectRole); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetProjectRole returns the member's project role, or models.ErrNotFound when the
// user has no membership row (the author is not required to have one).
func (db *PostgresDB) GetProjectRole(ctx context.Context, projectID, userID int) (string, error) {
	query := `SELECT project_role FROM project_members WHERE project_id = $1 AND user_id = $2`

	var role string
	err := db.pool.QueryRow(ctx, query, projectID, userID).Scan(&role)
	if err != nil {
		return "", mapError(err)
	}
	return role, nil
}

// Task Repository Implementation

func (db *PostgresDB) CreateTask(ctx context.Context, projectID int, req *models.CreateTaskRequest) (*models.Task, error) {
	query := `
		INSERT INTO tasks (project_id, title, description, status, priority, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING task_id, project_id, title, description, status, priority, due_date, created_at`

	t := &models.Task{}
	err := db.pool.QueryRow(ctx, query, projectID, req.Title, req.Description, req.Status, req.Priority, req.DueDate).Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (db *PostgresDB) GetTaskByID(ctx context.Context, id int) (*models.Task, error) {
	query := `
		SELECT task_id, project_id, title, description, status, priority, due_date, created_at
		FROM tasks WHERE task_id = $1`

	t := &models.Task{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (db *PostgresDB) ListTasksForProject(ctx context.Context, projectID int) ([]models.Task, error) {
	query := `
		SELECT task_id, project_id, title, description, status, priority, due_date, created_at
		FROM tasks WHERE project_id = $1
		ORDER BY priority DESC, task_id`

	rows, err := db.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status,
			&t.Priority, &t.DueDate, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (db *PostgresDB) UpdateTask(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5, due_date = $6
		WHERE task_id = $1`

	tag, err := db.pool.Exec(ctx, query, task.ID, task.Title, task.Description,
		task.Status, task.Priority, task.DueDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (db *PostgresDB) DeleteTask(ctx context.Context, id int) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM tasks WHERE task_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
