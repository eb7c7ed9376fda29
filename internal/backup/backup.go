package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"homeboard/internal/store"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3         S3Config
	DBPath     string
	Passphrase string
	// RetentionDays bounds how long encrypted snapshots are kept.
	RetentionDays int
}

// Manager produces encrypted snapshots of the database and uploads them to
// S3-compatible storage, one object per backup under the home's prefix.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	logger *slog.Logger

	db       *sql.DB
	backups  *store.BackupStore
	settings *store.SettingsStore
	client   s3Client

	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, db *sql.DB, bs *store.BackupStore, ss *store.SettingsStore, logger *slog.Logger) *Manager {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	m := &Manager{
		cfg:      cfg,
		db:       db,
		backups:  bs,
		settings: ss,
		logger:   logger,
	}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether the manager has working S3 credentials and a
// passphrase to encrypt with.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil && m.cfg.Passphrase != ""
}

// Start begins the hourly schedule check. Homes opt in via the
// backup_enabled setting; backup_interval_hours controls cadence.
func (m *Manager) Start(ctx context.Context, homeIDs func() ([]int64, error)) {
	if !m.Enabled() {
		return
	}
	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.runScheduled(ctx, homeIDs)
			}
		}
	}()
}

// Stop gracefully stops the schedule loop.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) runScheduled(ctx context.Context, homeIDs func() ([]int64, error)) {
	ids, err := homeIDs()
	if err != nil {
		m.logger.Error("list homes for backup", "error", err)
		return
	}

	for _, homeID := range ids {
		enabled, err := m.settings.Get(homeID, store.SettingBackupEnabled)
		if err != nil || enabled != "true" {
			continue
		}

		interval := 24
		if v, err := m.settings.Get(homeID, store.SettingBackupInterval); err == nil && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				interval = n
			}
		}
		due, err := m.backupDue(homeID, time.Duration(interval)*time.Hour)
		if err != nil {
			m.logger.Error("check backup schedule", "home_id", homeID, "error", err)
			continue
		}
		if !due {
			continue
		}

		if _, err := m.RunNow(ctx, homeID); err != nil {
			m.logger.Error("scheduled backup", "home_id", homeID, "error", err)
		}
		if err := m.Cleanup(ctx, homeID); err != nil {
			m.logger.Error("backup cleanup", "home_id", homeID, "error", err)
		}
	}
}

func (m *Manager) backupDue(homeID int64, interval time.Duration) (bool, error) {
	recent, err := m.backups.ListByHome(homeID, 1)
	if err != nil {
		return false, err
	}
	if len(recent) == 0 {
		return true, nil
	}
	return time.Since(recent[0].CreatedAt) >= interval, nil
}

// RunNow snapshots the database, encrypts it, and uploads it for one home.
// Returns the backup record ID.
func (m *Manager) RunNow(ctx context.Context, homeID int64) (int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	passphrase := m.cfg.Passphrase
	dbPath := m.cfg.DBPath
	m.mu.RUnlock()

	if client == nil {
		return 0, fmt.Errorf("backup not configured: S3 credentials missing")
	}
	if passphrase == "" {
		return 0, fmt.Errorf("backup not configured: passphrase missing")
	}

	objectKey := fmt.Sprintf("backups/%d/%s.db.enc", homeID, uuid.NewString())
	record, err := m.backups.Create(homeID, objectKey)
	if err != nil {
		return 0, fmt.Errorf("create backup record: %w", err)
	}

	tmpDir := os.TempDir()
	dbCopy := filepath.Join(tmpDir, fmt.Sprintf("homeboard-backup-%d.db", record.ID))
	encFile := filepath.Join(tmpDir, fmt.Sprintf("homeboard-backup-%d.db.enc", record.ID))
	defer os.Remove(dbCopy)
	defer os.Remove(encFile)

	// Checkpoint WAL so the file copy is a consistent snapshot
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return 0, fmt.Errorf("wal checkpoint: %w", err)
	}
	if err := copyFile(dbPath, dbCopy); err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return 0, fmt.Errorf("copy database: %w", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return 0, err
	}
	if err := EncryptFile(dbCopy, encFile, passphrase, salt); err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return 0, fmt.Errorf("encrypt: %w", err)
	}

	encData, err := os.Open(encFile)
	if err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return 0, fmt.Errorf("open encrypted file: %w", err)
	}
	defer encData.Close()

	stat, err := encData.Stat()
	if err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return 0, fmt.Errorf("stat encrypted file: %w", err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(objectKey),
		Body:          encData,
		ContentLength: aws.Int64(stat.Size()),
	})
	if err != nil {
		m.backups.MarkFailed(record.ID, err.Error())
		return 0, fmt.Errorf("upload to s3: %w", err)
	}

	if err := m.backups.MarkComplete(record.ID, stat.Size()); err != nil {
		return 0, err
	}

	m.logger.Info("backup complete", "home_id", homeID, "backup_id", record.ID, "size", stat.Size())
	return record.ID, nil
}

// Download streams an encrypted backup from S3.
func (m *Manager) Download(ctx context.Context, backupID, homeID int64) (io.ReadCloser, int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil, 0, fmt.Errorf("backup not configured")
	}

	record, err := m.backups.GetByID(backupID)
	if err != nil {
		return nil, 0, fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.HomeID != homeID {
		return nil, 0, fmt.Errorf("backup not found")
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.ObjectKey),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("download from s3: %w", err)
	}
	return result.Body, record.SizeBytes, nil
}

// Cleanup deletes a home's backups past the retention window, both the
// records and the S3 objects.
func (m *Manager) Cleanup(ctx context.Context, homeID int64) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	retention := m.cfg.RetentionDays
	m.mu.RUnlock()

	if client == nil {
		return nil
	}

	before := time.Now().UTC().AddDate(0, 0, -retention)
	keys, err := m.backups.DeleteOlderThan(homeID, before)
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete s3 object", "key", key, "error", err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
