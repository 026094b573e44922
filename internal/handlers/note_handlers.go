package handlers

import (
	"encoding/json"
	"net/http"

	"teamboard/internal/middleware"
	"teamboard/internal/models"
	"teamboard/internal/services"
)

type NoteHandlers struct {
	noteService *services.NoteService
}

func NewNoteHandlers(noteService *services.NoteService) *NoteHandlers {
	return &NoteHandlers{noteService: noteService}
}

func (h *NoteHandlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	notes, err := h.noteService.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}

	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandlers) GetNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	noteID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid note ID", http.StatusBadRequest)
		return
	}

	note, err := h.noteService.Get(r.Context(), noteID, user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req models.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	note, err := h.noteService.Create(r.Context(), &req, user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	noteID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid note ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	note, err := h.noteService.Update(r.Context(), noteID, &req, user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	noteID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid note ID", http.StatusBadRequest)
		return
	}

	if err := h.noteService.Delete(r.Context(), noteID, user); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NoteHandlers) ShareNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	noteID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid note ID", http.StatusBadRequest)
		return
	}

	var req models.ShareNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.noteService.Share(r.Context(), noteID, &req, user); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NoteHandlers) ListComments(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	noteID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid note ID", http.StatusBadRequest)
		return
	}

	comments, err := h.noteService.Comments(r.Context(), noteID, user)
	if err != nil {
		writeError(w, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	writeJSON(w, http.StatusOK, comments)
}

func (h *NoteHandlers) AddComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	noteID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid note ID", http.StatusBadRequest)
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	comment, err := h.noteService.AddComment(r.Context(), noteID, &req, user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *NoteHandlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	commentID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid comment ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	comment, err := h.noteService.UpdateComment(r.Context(), commentID, &req, user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

func (h *NoteHandlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	commentID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid comment ID", http.StatusBadRequest)
		return
	}

	if err := h.noteService.DeleteComment(r.Context(), commentID, user); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NoteHandlers) ListShares(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	noteID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid note ID", http.StatusBadRequest)
		return
	}

	shares, err := h.noteService.Shares(r.Context(), noteID, user)
	if err != nil {
		writeError(w, err)
		return
	}
	if shares == nil {
		shares = []models.NoteShare{}
	}

	writeJSON(w, http.StatusOK, shares)
}
