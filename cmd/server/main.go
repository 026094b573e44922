package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamboard/internal/auth"
	"teamboard/internal/config"
	"teamboard/internal/database"
	"teamboard/internal/handlers"
	"teamboard/internal/middleware"
	"teamboard/internal/services"
	"teamboard/internal/websocket"
	"teamboard/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.Log.Level)

	// Initialize database
	db, err := database.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize services
	authService := auth.NewService(db, cfg)
	roomService := services.NewRoomService(db)
	projectService := services.NewProjectService(db)
	noteService := services.NewNoteService(db)
	userService := services.NewUserService(db)

	// Initialize the presence gateway
	hubManager := websocket.NewManager(roomService)
	defer hubManager.Shutdown()

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(authService)
	roomHandlers := handlers.NewRoomHandlers(roomService, hubManager)
	projectHandlers := handlers.NewProjectHandlers(projectService)
	noteHandlers := handlers.NewNoteHandlers(noteService)
	adminHandlers := handlers.NewAdminHandlers(userService)
	wsHandlers := handlers.NewWebSocketHandlers(authService, hubManager)

	// Setup routes
	mux := http.NewServeMux()
	setupRoutes(mux, authService, authHandlers, roomHandlers, projectHandlers, noteHandlers, adminHandlers, wsHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      corsMiddleware(rateLimiter.Middleware(mux)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Port).Msg("server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
}

func setupRoutes(
	mux *http.ServeMux,
	authService *auth.Service,
	authHandlers *handlers.AuthHandlers,
	roomHandlers *handlers.RoomHandlers,
	projectHandlers *handlers.ProjectHandlers,
	noteHandlers *handlers.NoteHandlers,
	adminHandlers *handlers.AdminHandlers,
	wsHandlers *handlers.WebSocketHandlers,
) {
	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAuth(authService, h)
	}
	adminOnly := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAdmin(authService, h)
	}

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", authHandlers.Register)
	mux.HandleFunc("POST /api/auth/login", authHandlers.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandlers.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authHandlers.Logout)

	// Chat routes
	mux.HandleFunc("GET /api/chat/rooms", protected(roomHandlers.ListRooms))
	mux.HandleFunc("POST /api/chat/rooms", protected(roomHandlers.CreateRoom))
	mux.HandleFunc("GET /api/chat/rooms/{id}/messages", protected(roomHandlers.GetMessages))
	mux.HandleFunc("POST /api/chat/rooms/{id}/messages", protected(roomHandlers.SendMessage))
	mux.HandleFunc("POST /api/chat/rooms/{id}/members", protected(roomHandlers.InviteUser))
	mux.HandleFunc("GET /api/chat/rooms/{id}/members", protected(roomHandlers.GetRoomMembers))

	// Project routes
	mux.HandleFunc("GET /api/projects", protected(projectHandlers.ListProjects))
	mux.HandleFunc("POST /api/projects", protected(projectHandlers.CreateProject))
	mux.HandleFunc("GET /api/projects/{id}", protected(projectHandlers.GetProject))
	mux.HandleFunc("PUT /api/projects/{id}", protected(projectHandlers.UpdateProject))
	mux.HandleFunc("DELETE /api/projects/{id}", protected(projectHandlers.DeleteProject))
	mux.HandleFunc("GET /api/projects/{id}/members", protected(projectHandlers.ListMembers))
	mux.HandleFunc("POST /api/projects/{id}/members", protected(projectHandlers.AddMember))
	mux.HandleFunc("GET /api/projects/{id}/tasks", protected(projectHandlers.ListTasks))
	mux.HandleFunc("POST /api/projects/{id}/tasks", protected(projectHandlers.CreateTask))

	// Task routes
	mux.HandleFunc("PUT /api/tasks/{id}", protected(projectHandlers.UpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", protected(projectHandlers.DeleteTask))

	// Note routes
	mux.HandleFunc("GET /api/notes", protected(noteHandlers.ListNotes))
	mux.HandleFunc("POST /api/notes", protected(noteHandlers.CreateNote))
	mux.HandleFunc("GET /api/notes/{id}", protected(noteHandlers.GetNote))
	mux.HandleFunc("PUT /api/notes/{id}", protected(noteHandlers.UpdateNote))
	mux.HandleFunc("DELETE /api/notes/{id}", protected(noteHandlers.DeleteNote))
	mux.HandleFunc("GET /api/notes/{id}/shares", protected(noteHandlers.ListShares))
	mux.HandleFunc("POST /api/notes/{id}/shares", protected(noteHandlers.ShareNote))
	mux.HandleFunc("GET /api/notes/{id}/comments", protected(noteHandlers.ListComments))
	mux.HandleFunc("POST /api/notes/{id}/comments", protected(noteHandlers.AddComment))

	// Comment routes
	mux.HandleFunc("PUT /api/comments/{id}", protected(noteHandlers.UpdateComment))
	mux.HandleFunc("DELETE /api/comments/{id}", protected(noteHandlers.DeleteComment))

	// Admin routes
	mux.HandleFunc("GET /api/admin/users", adminOnly(adminHandlers.ListUsers))
	mux.HandleFunc("PUT /api/admin/users/{id}/status", adminOnly(adminHandlers.UpdateUserStatus))

	// WebSocket route
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
