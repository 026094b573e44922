package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"teamboard/internal/middleware"
	"teamboard/internal/models"
	"teamboard/internal/services"
	ws "teamboard/internal/websocket"
)

type RoomHandlers struct {
	roomService *services.RoomService
	hubManager  *ws.Manager
}

func NewRoomHandlers(roomService *services.RoomService, hubManager *ws.Manager) *RoomHandlers {
	return &RoomHandlers{
		roomService: roomService,
		hubManager:  hubManager,
	}
}

func (h *RoomHandlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	rooms, err := h.roomService.Rooms(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if rooms == nil {
		rooms = []models.RoomSummary{}
	}

	writeJSON(w, http.StatusOK, rooms)
}

func (h *RoomHandlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req models.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	room, err := h.roomService.CreateRoom(r.Context(), &req, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

// GetMessages returns the most recent page of the room's log, oldest first.
func (h *RoomHandlers) GetMessages(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	roomID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid room ID", http.StatusBadRequest)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	messages, err := h.roomService.Messages(r.Context(), roomID, user.ID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	writeJSON(w, http.StatusOK, messages)
}

// SendMessage appends through the room's gateway so REST sends get the same
// ordering and fan-out as WebSocket sends.
func (h *RoomHandlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	roomID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid room ID", http.StatusBadRequest)
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	msg, err := h.hubManager.Post(r.Context(), roomID, user.ID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *RoomHandlers) InviteUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	roomID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid room ID", http.StatusBadRequest)
		return
	}

	var req models.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.roomService.Invite(r.Context(), roomID, user, req.Email); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandlers) GetRoomMembers(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	roomID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid room ID", http.StatusBadRequest)
		return
	}

	members, err := h.roomService.Members(r.Context(), roomID, user)
	if err != nil {
		writeError(w, err)
		return
	}
	if members == nil {
		members = []models.Member{}
	}

	writeJSON(w, http.StatusOK, members)
}
