package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"homeboard/internal/backup"
	"homeboard/internal/calendar"
	"homeboard/internal/database"
	"homeboard/internal/email"
	"homeboard/internal/logging"
	"homeboard/internal/server"
)

// attendanceRetentionDays is how far back per-day attendance records are
// kept before the nightly cleanup drops them.
const attendanceRetentionDays = 30

func main() {
	logger := logging.Setup(os.Getenv("HOMEBOARD_LOG_LEVEL"), os.Getenv("HOMEBOARD_LOG_FORMAT"))

	port := envOr("HOMEBOARD_PORT", "8080")
	dbPath := envOr("HOMEBOARD_DB_PATH", "homeboard.db")
	baseURL := envOr("HOMEBOARD_BASE_URL", "http://localhost:"+port)

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(
		os.Getenv("HOMEBOARD_POSTMARK_TOKEN"),
		envOr("HOMEBOARD_EMAIL_FROM", "noreply@homeboard.local"),
		baseURL,
	)
	if !emailClient.Configured() {
		logger.Warn("no email provider configured, login codes will be logged instead")
	}

	cfg := server.Config{
		SecureCookies: os.Getenv("HOMEBOARD_SECURE_COOKIES") == "true",
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("HOMEBOARD_S3_ENDPOINT"),
				Bucket:    os.Getenv("HOMEBOARD_S3_BUCKET"),
				Region:    envOr("HOMEBOARD_S3_REGION", "auto"),
				AccessKey: os.Getenv("HOMEBOARD_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("HOMEBOARD_S3_SECRET_KEY"),
			},
			DBPath:        dbPath,
			Passphrase:    os.Getenv("HOMEBOARD_BACKUP_PASSPHRASE"),
			RetentionDays: envInt("HOMEBOARD_BACKUP_RETENTION_DAYS", 30),
		},
	}

	srv := server.New(db, emailClient, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.BackupManager().Start(ctx, srv.HomeStore().AllIDs)
	defer srv.BackupManager().Stop()

	go cleanupLoop(ctx, srv, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", httpServer.Addr, "base_url", baseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// cleanupLoop drops expired sessions and login codes, stale rate-limit
// entries, and attendance records past the retention window.
func cleanupLoop(ctx context.Context, srv *server.Server, logger *slog.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("cleanup sessions", "error", err)
			} else if n > 0 {
				logger.Info("cleaned expired sessions", "count", n)
			}
			if _, err := srv.LoginCodeStore().DeleteExpired(); err != nil {
				logger.Error("cleanup login codes", "error", err)
			}
			srv.RateLimiter().Cleanup()

			cutoff := calendar.DateKey(time.Now().AddDate(0, 0, -attendanceRetentionDays))
			if n, err := srv.AttendanceStore().PruneBefore(cutoff); err != nil {
				logger.Error("cleanup attendance", "error", err)
			} else if n > 0 {
				logger.Info("pruned old attendance", "count", n, "before", cutoff)
			}
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
