package handlers

import (
	"encoding/json"
	"net/http"

	"teamboard/internal/middleware"
	"teamboard/internal/models"
	"teamboard/internal/services"
)

type ProjectHandlers struct {
	projectService *services.ProjectService
}

func NewProjectHandlers(projectService *services.ProjectService) *ProjectHandlers {
	return &ProjectHandlers{projectService: projectService}
}

func (h *ProjectHandlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projects, err := h.projectService.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandlers) GetProject(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projectID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid project ID", http.StatusBadRequest)
		return
	}

	project, err := h.projectService.Get(r.Context(), projectID, user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	project, err := h.projectService.Create(r.Context(), &req, user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projectID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid project ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	project, err := h.projectService.Update(r.Context(), projectID, &req, user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projectID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid project ID", http.StatusBadRequest)
		return
	}

	if err := h.projectService.Delete(r.Context(), projectID, user); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandlers) AddMember(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projectID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid project ID", http.StatusBadRequest)
		return
	}

	var req models.AddProjectMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.projectService.AddMember(r.Context(), projectID, &req, user); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projectID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid project ID", http.StatusBadRequest)
		return
	}

	members, err := h.projectService.Members(r.Context(), projectID, user)
	if err != nil {
		writeError(w, err)
		return
	}
	if members == nil {
		members = []models.ProjectMember{}
	}

	writeJSON(w, http.StatusOK, members)
}

func (h *ProjectHandlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projectID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid project ID", http.StatusBadRequest)
		return
	}

	tasks, err := h.projectService.Tasks(r.Context(), projectID, user)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *ProjectHandlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projectID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid project ID", http.StatusBadRequest)
		return
	}

	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	task, err := h.projectService.CreateTask(r.Context(), projectID, &req, user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *ProjectHandlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	taskID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid task ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	task, err := h.projectService.UpdateTask(r.Context(), taskID, &req, user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *ProjectHandlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	taskID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid task ID", http.StatusBadRequest)
		return
	}

	if err := h.projectService.DeleteTask(r.Context(), taskID, user); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
