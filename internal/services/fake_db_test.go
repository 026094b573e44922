package services

import (
	"context"
	"sync"
	"time"

	"teamboard/internal/models"
)

// fakeDB is an in-memory repository used by the service tests. It mirrors the
// SQL layer's error contract: ErrNotFound for missing rows, ErrConflict for
// unique violations.
type fakeDB struct {
	mu sync.Mutex

	users   map[int]*models.User
	rooms   map[int]*models.Room
	members map[[2]int]bool // (roomID, userID)
	online  map[[2]int]bool

	messages []models.Message

	projects     map[int]*models.Project
	projectRoles map[[2]int]string // (projectID, userID) -> role
	tasks        map[int]*models.Task

	notes      map[int]*models.Note
	noteShares map[[2]int]string // (noteID, userID) -> permission
	comments   map[int]*models.Comment

	nextID int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:        make(map[int]*models.User),
		rooms:        make(map[int]*models.Room),
		members:      make(map[[2]int]bool),
		online:       make(map[[2]int]bool),
		projects:     make(map[int]*models.Project),
		projectRoles: make(map[[2]int]string),
		tasks:        make(map[int]*models.Task),
		notes:        make(map[int]*models.Note),
		noteShares:   make(map[[2]int]string),
		comments:     make(map[int]*models.Comment),
	}
}

func (f *fakeDB) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeDB) addUser(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		u.ID = f.id()
	}
	u.IsActive = true
	f.users[u.ID] = u
	return u
}

// UserRepository

func (f *fakeDB) CreateUser(ctx context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Login == req.Login || u.Email == req.Email {
			return nil, models.ErrConflict
		}
	}
	u := &models.User{
		ID:           f.id(),
		Email:        req.Email,
		Login:        req.Login,
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeDB) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Login == login {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeDB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func (f *fakeDB) SetRefreshToken(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	return nil
}

func (f *fakeDB) GetUserByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return nil, models.ErrNotFound
}

func (f *fakeDB) ClearRefreshToken(ctx context.Context, userID int) error { return nil }

func (f *fakeDB) ListUsers(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeDB) SetUserActive(ctx context.Context, userID int, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	u.IsActive = active
	return nil
}

// RoomRepository

func (f *fakeDB) CreateRoom(ctx context.Context, req *models.CreateRoomRequest, creatorID int) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room := &models.Room{
		ID:        f.id(),
		Name:      req.Name,
		ProjectID: req.ProjectID,
		IsPrivate: req.IsPrivate,
		CreatedAt: time.Now(),
	}
	f.rooms[room.ID] = room
	f.members[[2]int{room.ID, creatorID}] = true
	return room, nil
}

func (f *fakeDB) GetRoomByID(ctx context.Context, id int) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return room, nil
}

func (f *fakeDB) ListRoomsForUser(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RoomSummary
	for id, room := range f.rooms {
		if !f.members[[2]int{id, userID}] {
			continue
		}
		out = append(out, models.RoomSummary{ID: id, Name: room.Name})
	}
	return out, nil
}

func (f *fakeDB) AddMember(ctx context.Context, roomID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int{roomID, userID}
	if f.members[key] {
		return models.ErrConflict
	}
	f.members[key] = true
	return nil
}

func (f *fakeDB) GetRoomMembers(ctx context.Context, roomID int) ([]models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Member
	for key := range f.members {
		if key[0] != roomID {
			continue
		}
		m := models.Member{ID: key[1], IsOnline: f.online[key]}
		if u, ok := f.users[key[1]]; ok {
			m.Username = u.Username
			m.Email = u.Email
		}
		out = append(out, m)
	}
	return out, nil
}

// MembershipRepository

func (f *fakeDB) IsMember(ctx context.Context, roomID, userID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[[2]int{roomID, userID}], nil
}

func (f *fakeDB) SetOnline(ctx context.Context, roomID, userID int, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.members[[2]int{roomID, userID}] {
		return nil
	}
	if online {
		f.online[[2]int{roomID, userID}] = true
	} else {
		delete(f.online, [2]int{roomID, userID})
	}
	return nil
}

func (f *fakeDB) OnlineCount(ctx context.Context, roomID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for key := range f.online {
		if key[0] == roomID {
			count++
		}
	}
	return count, nil
}

// MessageRepository

func (f *fakeDB) SaveMessage(ctx context.Context, roomID, senderID int, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := models.Message{
		ID:        f.id(),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *fakeDB) RecentMessages(ctx context.Context, roomID, limit int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.Message
	for _, m := range f.messages {
		if m.RoomID == roomID {
			all = append(all, m)
		}
	}
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// ProjectRepository

func (f *fakeDB) CreateProject(ctx context.Context, req *models.CreateProjectRequest, authorID int) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &models.Project{
		ID:          f.id(),
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		AuthorID:    authorID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedAt:   time.Now(),
	}
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeDB) GetProjectByID(ctx context.Context, id int) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

func (f *fakeDB) ListProjectsForUser(ctx context.Context, userID int) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for id, p := range f.projects {
		if p.AuthorID == userID || f.projectRoles[[2]int{id, userID}] != "" {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateProject(ctx context.Context, project *models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[project.ID]; !ok {
		return models.ErrNotFound
	}
	f.projects[project.ID] = project
	return nil
}

func (f *fakeDB) DeleteProject(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeDB) AddProjectMember(ctx context.Context, projectID, userID int, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int{projectID, userID}
	if f.projectRoles[key] != "" {
		return models.ErrConflict
	}
	f.projectRoles[key] = role
	return nil
}

func (f *fakeDB) ListProjectMembers(ctx context.Context, projectID int) ([]models.ProjectMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProjectMember
	for key, role := range f.projectRoles {
		if key[0] != projectID {
			continue
		}
		m := models.ProjectMember{UserID: key[1], ProjectRole: role}
		if u, ok := f.users[key[1]]; ok {
			m.Username = u.Username
			m.Email = u.Email
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeDB) GetProjectRole(ctx context.Context, projectID, userID int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.projectRoles[[2]int{projectID, userID}]
	if !ok {
		return "", models.ErrNotFound
	}
	return role, nil
}

// TaskRepository

func (f *fakeDB) CreateTask(ctx context.Context, projectID int, req *models.CreateTaskRequest) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &models.Task{
		ID:          f.id(),
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		CreatedAt:   time.Now(),
	}
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeDB) GetTaskByID(ctx context.Context, id int) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return t, nil
}

func (f *fakeDB) ListTasksForProject(ctx context.Context, projectID int) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Task
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateTask(ctx context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return models.ErrNotFound
	}
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeDB) DeleteTask(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

// NoteRepository

func (f *fakeDB) CreateNote(ctx context.Context, req *models.CreateNoteRequest, authorID int) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := &models.Note{
		ID:        f.id(),
		AuthorID:  authorID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.notes[n.ID] = n
	return n, nil
}

func (f *fakeDB) GetNoteByID(ctx context.Context, id int) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return n, nil
}

func (f *fakeDB) ListNotesForUser(ctx context.Context, userID int) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Note
	for id, n := range f.notes {
		if n.AuthorID == userID || f.noteShares[[2]int{id, userID}] != "" {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateNote(ctx context.Context, note *models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.notes[note.ID]; !ok {
		return models.ErrNotFound
	}
	note.UpdatedAt = time.Now()
	f.notes[note.ID] = note
	return nil
}

func (f *fakeDB) DeleteNote(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.notes[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.notes, id)
	return nil
}

func (f *fakeDB) ShareNote(ctx context.Context, noteID, userID int, permission string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.noteShares[[2]int{noteID, userID}] = permission
	return nil
}

func (f *fakeDB) NoteShares(ctx context.Context, noteID int) ([]models.NoteShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.NoteShare
	for key, perm := range f.noteShares {
		if key[0] != noteID {
			continue
		}
		out = append(out, models.NoteShare{NoteID: noteID, UserID: key[1], Permission: perm})
	}
	return out, nil
}

// CommentRepository

func (f *fakeDB) CreateComment(ctx context.Context, noteID, authorID int, content string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &models.Comment{
		ID:        f.id(),
		NoteID:    noteID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if u, ok := f.users[authorID]; ok {
		c.AuthorName = u.Username
	}
	f.comments[c.ID] = c
	return c, nil
}

func (f *fakeDB) GetCommentByID(ctx context.Context, id int) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return c, nil
}

func (f *fakeDB) ListComments(ctx context.Context, noteID int) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Comment
	for _, c := range f.comments {
		if c.NoteID == noteID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateComment(ctx context.Context, comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[comment.ID]; !ok {
		return models.ErrNotFound
	}
	comment.UpdatedAt = time.Now()
	f.comments[comment.ID] = comment
	return nil
}

func (f *fakeDB) DeleteComment(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeDB) Close() error { return nil }
