package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"homeboard/internal/backup"
	"homeboard/internal/email"
	"homeboard/internal/handler"
	"homeboard/internal/middleware"
	"homeboard/internal/store"
	ws "homeboard/internal/websocket"
)

// Config holds the server's wiring configuration.
type Config struct {
	SecureCookies bool
	Backup        backup.Config
}

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	authH          *handler.AuthHandler
	homeH          *handler.HomeHandler
	groceryH       *handler.GroceryHandler
	attendanceH    *handler.AttendanceHandler
	settingsH      *handler.SettingsHandler
	backupH        *handler.BackupHandler
	sessionStore   *store.SessionStore
	loginCodeStore *store.LoginCodeStore
	attendanceSt   *store.AttendanceStore
	homeStore      *store.HomeStore
	backupManager  *backup.Manager
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	homeStore := store.NewHomeStore(db)
	sessionStore := store.NewSessionStore(db)
	loginCodeStore := store.NewLoginCodeStore(db)
	groceryStore := store.NewGroceryStore(db)
	attendanceStore := store.NewAttendanceStore(db)
	settingsStore := store.NewSettingsStore(db)
	backupStore := store.NewBackupStore(db)

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, settingsStore, logger.With("component", "backup"))

	return &Server{
		db:             db,
		hub:            hub,
		authH:          handler.NewAuthHandler(userStore, homeStore, sessionStore, loginCodeStore, emailClient, cfg.SecureCookies, logger.With("component", "auth")),
		homeH:          handler.NewHomeHandler(homeStore, userStore, hub, logger.With("component", "home")),
		groceryH:       handler.NewGroceryHandler(groceryStore, hub, logger.With("component", "grocery")),
		attendanceH:    handler.NewAttendanceHandler(attendanceStore, homeStore, hub, logger.With("component", "attendance")),
		settingsH:      handler.NewSettingsHandler(settingsStore, logger.With("component", "settings")),
		backupH:        handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),
		sessionStore:   sessionStore,
		loginCodeStore: loginCodeStore,
		attendanceSt:   attendanceStore,
		homeStore:      homeStore,
		backupManager:  backupMgr,
		rateLimiter:    middleware.NewRateLimiter(),
		logger:         logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// LoginCodeStore returns the login code store for cleanup tasks.
func (s *Server) LoginCodeStore() *store.LoginCodeStore {
	return s.loginCodeStore
}

// AttendanceStore returns the attendance store for retention cleanup.
func (s *Server) AttendanceStore() *store.AttendanceStore {
	return s.attendanceSt
}

// HomeStore returns the home store.
func (s *Server) HomeStore() *store.HomeStore {
	return s.homeStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required); login and verify are rate-limited
	// by client IP
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/verify", s.rateLimitedHandler(s.authH.Verify))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.homeStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Home and members
	mux.HandleFunc("GET /api/home", s.homeH.Get)
	mux.Handle("PATCH /api/home", middleware.RequireAdmin(http.HandlerFunc(s.homeH.Rename)))
	mux.Handle("POST /api/home/invite", middleware.RequireAdmin(http.HandlerFunc(s.authH.Invite)))
	mux.Handle("DELETE /api/home/members/{id}", middleware.RequireAdmin(http.HandlerFunc(s.homeH.RemoveMember)))
	mux.HandleFunc("PATCH /api/profile", s.homeH.UpdateProfile)

	// Grocery list
	mux.HandleFunc("GET /api/groceries", s.groceryH.List)
	mux.HandleFunc("POST /api/groceries", s.groceryH.Add)
	mux.HandleFunc("GET /api/groceries/suggestions", s.groceryH.Suggestions)
	mux.HandleFunc("POST /api/groceries/{id}/toggle", s.groceryH.Toggle)
	mux.HandleFunc("PATCH /api/groceries/{id}", s.groceryH.SetAmount)
	mux.HandleFunc("POST /api/groceries/{id}/increment", s.groceryH.Increment)
	mux.HandleFunc("POST /api/groceries/{id}/decrement", s.groceryH.Decrement)
	mux.HandleFunc("DELETE /api/groceries/checked", s.groceryH.DeleteChecked)
	mux.HandleFunc("DELETE /api/groceries/all", s.groceryH.ClearAll)
	mux.HandleFunc("DELETE /api/groceries/{id}", s.groceryH.Delete)

	// Attendance
	mux.HandleFunc("GET /api/attendance", s.attendanceH.Week)
	mux.HandleFunc("PUT /api/attendance/{week}/{date}", s.attendanceH.Set)
	mux.HandleFunc("GET /api/attendance/{week}/{date}/coming", s.attendanceH.Coming)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.Handle("PUT /api/settings", middleware.RequireAdmin(http.HandlerFunc(s.settingsH.Update)))

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.Handle("POST /api/backups/run", middleware.RequireAdmin(http.HandlerFunc(s.backupH.Run)))
	mux.Handle("GET /api/backups/{id}/download", middleware.RequireAdmin(http.HandlerFunc(s.backupH.Download)))

	// Real-time sync
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
