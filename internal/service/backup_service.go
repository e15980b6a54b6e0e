package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
	"github.com/dojokai/dojo-api/pkg/export"
	"github.com/dojokai/dojo-api/pkg/jobs"
	"github.com/dojokai/dojo-api/pkg/storage"
)

type backupRepository interface {
	Tables() []string
	Snapshot(ctx context.Context, table string) ([]string, []map[string]string, error)
}

type backupStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type backupDispatcher interface {
	Enqueue(job jobs.Job) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// BackupConfig tunes export behaviour.
type BackupConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// BackupDownload aggregates resolved download data.
type BackupDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// BackupService exports every domain table to CSV snapshots behind signed
// download URLs. Job metadata lives in memory only, the files themselves
// survive restarts on disk.
type BackupService struct {
	repo    backupRepository
	storage backupStorage
	csv     csvRenderer
	signer  *storage.SignedURLSigner
	queue   backupDispatcher
	audit   auditWriter
	logger  *zap.Logger
	cfg     BackupConfig

	mu   sync.RWMutex
	runs map[string]*models.BackupJob
}

// NewBackupService constructs the backup service. The queue is wired after
// construction via Handle, since the queue needs the handler at build time.
func NewBackupService(repo backupRepository, store backupStorage, signer *storage.SignedURLSigner, audit auditWriter, cfg BackupConfig, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &BackupService{
		repo:    repo,
		storage: store,
		csv:     export.NewCSVExporter(),
		signer:  signer,
		audit:   audit,
		logger:  logger,
		cfg:     cfg,
		runs:    make(map[string]*models.BackupJob),
	}
}

// SetQueue attaches the job dispatcher.
func (s *BackupService) SetQueue(queue backupDispatcher) {
	s.queue = queue
}

// Run queues a new backup job and returns its initial state.
func (s *BackupService) Run(ctx context.Context, actorID string) (*models.BackupJob, error) {
	job := &models.BackupJob{
		ID:        uuid.NewString(),
		Status:    models.BackupStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	if actorID != "" {
		job.CreatedBy = &actorID
	}
	s.mu.Lock()
	s.runs[job.ID] = job
	s.mu.Unlock()

	if s.queue == nil {
		s.fail(job.ID, "backup queue not running")
		return nil, appErrors.Clone(appErrors.ErrInternal, "backup queue not running")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "backup"}); err != nil {
		s.fail(job.ID, err.Error())
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue backup")
	}

	s.writeAudit(ctx, actorID, job.ID)
	return s.Status(job.ID)
}

// Status returns a copy of the job state.
func (s *BackupService) Status(id string) (*models.BackupJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.runs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "backup job not found")
	}
	copy := *job
	copy.Files = append([]models.BackupFile(nil), job.Files...)
	return &copy, nil
}

// Handle processes a queued backup job: one CSV snapshot per table, each
// behind its own signed URL.
func (s *BackupService) Handle(ctx context.Context, job jobs.Job) error {
	s.setStatus(job.ID, models.BackupStatusProcessing)

	timestamp := time.Now().UTC().Format("20060102_150405")
	files := make([]models.BackupFile, 0, len(s.repo.Tables()))
	for _, table := range s.repo.Tables() {
		headers, rows, err := s.repo.Snapshot(ctx, table)
		if err != nil {
			s.fail(job.ID, fmt.Sprintf("snapshot %s: %v", table, err))
			return err
		}
		payload, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
		if err != nil {
			s.fail(job.ID, fmt.Sprintf("render %s: %v", table, err))
			return err
		}
		filename := fmt.Sprintf("%s_%s.csv", table, timestamp)
		relPath, err := s.storage.Save(filename, payload)
		if err != nil {
			s.fail(job.ID, fmt.Sprintf("save %s: %v", table, err))
			return err
		}
		token, expiresAt, err := s.signer.Generate(job.ID, relPath)
		if err != nil {
			s.fail(job.ID, fmt.Sprintf("sign %s: %v", table, err))
			return err
		}
		files = append(files, models.BackupFile{
			Table:     table,
			Filename:  filename,
			URL:       s.downloadURL(token),
			ExpiresAt: expiresAt,
		})
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if run, ok := s.runs[job.ID]; ok {
		run.Status = models.BackupStatusFinished
		run.Files = files
		run.FinishedAt = &now
	}
	s.mu.Unlock()
	s.logger.Info("backup finished", zap.String("job_id", job.ID), zap.Int("files", len(files)))
	return nil
}

// ResolveDownload validates a token and opens the snapshot file.
func (s *BackupService) ResolveDownload(token string) (*BackupDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	if _, err := s.Status(jobID); err != nil {
		return nil, err
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open backup file")
	}
	return &BackupDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		ExpiresAt: expiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired snapshots.
func (s *BackupService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
					s.logger.Warn("backup cleanup failed", zap.Error(err))
				} else if len(removed) > 0 {
					s.logger.Info("backup cleanup removed files", zap.Int("count", len(removed)))
				}
			}
		}
	}()
}

func (s *BackupService) downloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/backups/download/%s", prefix, token)
}

func (s *BackupService) setStatus(id string, status models.BackupStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = status
	}
}

func (s *BackupService) fail(id, msg string) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = models.BackupStatusFailed
		run.ErrorMessage = msg
		run.FinishedAt = &now
	}
}

func (s *BackupService) writeAudit(ctx context.Context, actorID, jobID string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:    models.AuditActionBackupRun,
		Resource:  "backups",
		NewValues: []byte(fmt.Sprintf(`{"job_id":%q}`, jobID)),
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if jobID != "" {
		entry.ResourceID = &jobID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("audit log write failed", zap.Error(err))
	}
}
