package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sentrylog/internal/models"
)

// PageSize is the fixed page size for paged log listings.
const PageSize = 10

// Fallback coordinates written to a log when its checkpoint has no
// location on record.
const (
	FallbackLatitude  = 12.9716
	FallbackLongitude = 77.5946
)

// ErrNotFound reports that a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// Store owns checkpoint and patrol log records and the read/write
// operations the HTTP layer exposes.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// LogPage is one page of a filtered log listing.
type LogPage struct {
	Logs        []models.PatrolLog `json:"logs"`
	TotalPages  int                `json:"totalPages"`
	CurrentPage int                `json:"currentPage"`
}

// ListLogs returns one page of logs ordered by check-in time descending,
// joined with guard and checkpoint identity. search is matched
// case-insensitively as a substring of the guard's name. Pages are
// 1-based; out-of-range input is clamped to page 1, and a page beyond the
// last returns an empty list with the correct total.
func (s *Store) ListLogs(ctx context.Context, search string, page int) (LogPage, error) {
	if page < 1 {
		page = 1
	}

	filtered := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.PatrolLog{}).
			Joins("JOIN users ON users.id = patrol_logs.user_id")
		if search != "" {
			q = q.Where("LOWER(users.name) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return LogPage{}, fmt.Errorf("count logs: %w", err)
	}

	logs := make([]models.PatrolLog, 0, PageSize)
	// The joined users columns must not leak into the scan.
	err := filtered().
		Select("patrol_logs.*").
		Order("patrol_logs.check_in_time DESC").
		Offset((page - 1) * PageSize).
		Limit(PageSize).
		Preload("User").
		Preload("Checkpoint").
		Find(&logs).Error
	if err != nil {
		return LogPage{}, fmt.Errorf("list logs: %w", err)
	}

	totalPages := int((total + PageSize - 1) / PageSize)
	return LogPage{Logs: logs, TotalPages: totalPages, CurrentPage: page}, nil
}

// RecentLogs returns the n most recent logs with no filter, newest first.
func (s *Store) RecentLogs(ctx context.Context, n int) ([]models.PatrolLog, error) {
	if n < 1 {
		n = PageSize
	}
	logs := make([]models.PatrolLog, 0, n)
	err := s.db.WithContext(ctx).
		Order("check_in_time DESC").
		Limit(n).
		Preload("User").
		Preload("Checkpoint").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("recent logs: %w", err)
	}
	return logs, nil
}

// CreateLog records a check-in by userID at checkpointID. The checkpoint
// must exist; its coordinates (or the fallback pair) are snapshotted onto
// the new log. An empty status defaults to VERIFIED.
func (s *Store) CreateLog(ctx context.Context, userID, checkpointID uuid.UUID, status string) (models.PatrolLog, error) {
	var checkpoint models.Checkpoint
	err := s.db.WithContext(ctx).First(&checkpoint, "id = ?", checkpointID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PatrolLog{}, fmt.Errorf("checkpoint %s: %w", checkpointID, ErrNotFound)
		}
		return models.PatrolLog{}, fmt.Errorf("resolve checkpoint: %w", err)
	}

	if status == "" {
		status = models.StatusVerified
	}

	entry := models.PatrolLog{
		UserID:       userID,
		CheckpointID: checkpointID,
		CheckInTime:  time.Now().UTC(),
		GPSLatitude:  FallbackLatitude,
		GPSLongitude: FallbackLongitude,
		Status:       status,
	}
	if checkpoint.Latitude != nil {
		entry.GPSLatitude = *checkpoint.Latitude
	}
	if checkpoint.Longitude != nil {
		entry.GPSLongitude = *checkpoint.Longitude
	}

	if err := s.db.WithContext(ctx).Omit("User", "Checkpoint").Create(&entry).Error; err != nil {
		return models.PatrolLog{}, fmt.Errorf("create log: %w", err)
	}

	return s.logByID(ctx, entry.ID)
}

// ResolveLog sets the log's status to RESOLVED and records the action in
// the audit trail. Any log id is accepted regardless of prior status, so
// resolving twice is idempotent. actorID may be nil for unattributed
// callers.
func (s *Store) ResolveLog(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) (models.PatrolLog, error) {
	var entry models.PatrolLog
	err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PatrolLog{}, fmt.Errorf("log %s: %w", id, ErrNotFound)
		}
		return models.PatrolLog{}, fmt.Errorf("resolve log: %w", err)
	}

	previous := entry.Status
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entry).Update("status", models.StatusResolved).Error; err != nil {
			return err
		}
		return s.audit(tx, actorID, "log.resolve", "patrol_log", id.String(), map[string]any{
			"previousStatus": previous,
		})
	})
	if txErr != nil {
		return models.PatrolLog{}, fmt.Errorf("resolve log: %w", txErr)
	}

	return s.logByID(ctx, id)
}

// ListCheckpoints returns all checkpoints.
func (s *Store) ListCheckpoints(ctx context.Context) ([]models.Checkpoint, error) {
	checkpoints := make([]models.Checkpoint, 0)
	if err := s.db.WithContext(ctx).Find(&checkpoints).Error; err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	return checkpoints, nil
}

// UpdateCheckpoint overwrites the checkpoint's instruction and video URL
// unconditionally and records the edit in the audit trail.
func (s *Store) UpdateCheckpoint(ctx context.Context, id uuid.UUID, instruction, videoURL string, actorID *uuid.UUID) (models.Checkpoint, error) {
	var checkpoint models.Checkpoint
	err := s.db.WithContext(ctx).First(&checkpoint, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Checkpoint{}, fmt.Errorf("checkpoint %s: %w", id, ErrNotFound)
		}
		return models.Checkpoint{}, fmt.Errorf("update checkpoint: %w", err)
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"instruction": instruction,
			"video_url":   videoURL,
		}
		if err := tx.Model(&checkpoint).Updates(updates).Error; err != nil {
			return err
		}
		return s.audit(tx, actorID, "checkpoint.update", "checkpoint", id.String(), updates)
	})
	if txErr != nil {
		return models.Checkpoint{}, fmt.Errorf("update checkpoint: %w", txErr)
	}

	err = s.db.WithContext(ctx).First(&checkpoint, "id = ?", id).Error
	if err != nil {
		return models.Checkpoint{}, fmt.Errorf("update checkpoint: %w", err)
	}
	return checkpoint, nil
}

// UserByEmail looks up exactly one user by exact email match. This is an
// identity lookup only; no credential verification exists.
func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return models.User{}, fmt.Errorf("user by email: %w", err)
	}
	return user, nil
}

// AuditTrail returns the n most recent audit entries, newest first.
func (s *Store) AuditTrail(ctx context.Context, n int) ([]models.AuditLog, error) {
	if n < 1 {
		n = PageSize
	}
	entries := make([]models.AuditLog, 0, n)
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(n).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("audit trail: %w", err)
	}
	return entries, nil
}

func (s *Store) logByID(ctx context.Context, id uuid.UUID) (models.PatrolLog, error) {
	var entry models.PatrolLog
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Checkpoint").
		First(&entry, "id = ?", id).Error
	if err != nil {
		return models.PatrolLog{}, fmt.Errorf("load log: %w", err)
	}
	return entry, nil
}

func (s *Store) audit(tx *gorm.DB, actorID *uuid.UUID, action, targetType, targetID string, metadata map[string]any) error {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	entry := models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   &targetID,
		Metadata:   datatypes.JSON(payload),
	}
	return tx.Create(&entry).Error
}
