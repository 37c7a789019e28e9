package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sentrylog/internal/models"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A pooled second connection would see a different in-memory database.
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = database.AutoMigrate(
		&models.User{},
		&models.Checkpoint{},
		&models.PatrolLog{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(database), database
}

func mustUser(t *testing.T, database *gorm.DB, name, email, role string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, Role: role}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func mustCheckpoint(t *testing.T, database *gorm.DB, name string, lat, lng *float64) models.Checkpoint {
	t.Helper()
	checkpoint := models.Checkpoint{Name: name, Latitude: lat, Longitude: lng}
	if err := database.Create(&checkpoint).Error; err != nil {
		t.Fatalf("create checkpoint %s: %v", name, err)
	}
	return checkpoint
}

func mustLog(t *testing.T, database *gorm.DB, user models.User, checkpoint models.Checkpoint, status string, at time.Time) models.PatrolLog {
	t.Helper()
	entry := models.PatrolLog{
		UserID:       user.ID,
		CheckpointID: checkpoint.ID,
		CheckInTime:  at,
		GPSLatitude:  FallbackLatitude,
		GPSLongitude: FallbackLongitude,
		Status:       status,
	}
	if err := database.Omit("User", "Checkpoint").Create(&entry).Error; err != nil {
		t.Fatalf("create log: %v", err)
	}
	return entry
}

func coord(v float64) *float64 { return &v }

func TestCreateLogSnapshotsCheckpointCoordinates(t *testing.T) {
	s, database := newTestStore(t)
	ctx := context.Background()

	guard := mustUser(t, database, "John Doe", "john@example.com", models.RoleGuard)
	checkpoint := mustCheckpoint(t, database, "Main Gate", coord(13.01), coord(77.61))

	before := time.Now().UTC()
	entry, err := s.CreateLog(ctx, guard.ID, checkpoint.ID, "")
	if err != nil {
		t.Fatalf("CreateLog() error = %v", err)
	}

	if entry.GPSLatitude != 13.01 || entry.GPSLongitude != 77.61 {
		t.Errorf("GPS = (%v, %v), want checkpoint coordinates", entry.GPSLatitude, entry.GPSLongitude)
	}
	if entry.Status != models.StatusVerified {
		t.Errorf("Status = %q, want VERIFIED default", entry.Status)
	}
	if entry.CheckInTime.Before(before.Add(-time.Second)) || entry.CheckInTime.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("CheckInTime = %v, want close to call time", entry.CheckInTime)
	}
	if entry.User.Name != "John Doe" || entry.Checkpoint.Name != "Main Gate" {
		t.Errorf("joined identity = (%q, %q)", entry.User.Name, entry.Checkpoint.Name)
	}
}

func TestCreateLogFallbackCoordinates(t *testing.T) {
	s, database := newTestStore(t)
	ctx := context.Background()

	guard := mustUser(t, database, "John Doe", "john@example.com", models.RoleGuard)
	checkpoint := mustCheckpoint(t, database, "Parking Level B2", nil, nil)

	entry, err := s.CreateLog(ctx, guard.ID, checkpoint.ID, models.StatusSOS)
	if err != nil {
		t.Fatalf("CreateLog() error = %v", err)
	}
	if entry.GPSLatitude != FallbackLatitude || entry.GPSLongitude != FallbackLongitude {
		t.Errorf("GPS = (%v, %v), want fallback pair", entry.GPSLatitude, entry.GPSLongitude)
	}
	if entry.Status != models.StatusSOS {
		t.Errorf("Status = %q, want SOS", entry.Status)
	}
}

func TestCreateLogUnknownCheckpoint(t *testing.T) {
	s, database := newTestStore(t)
	ctx := context.Background()

	guard := mustUser(t, database, "John Doe", "john@example.com", models.RoleGuard)

	_, err := s.CreateLog(ctx, guard.ID, uuid.New(), "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateLog() error = %v, want ErrNotFound", err)
	}

	var count int64
	if err := database.Model(&models.PatrolLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("log count = %d, want 0 rows persisted", count)
	}
}

func TestListLogsPaging(t *testing.T) {
	s, database := newTestStore(t)
	ctx := context.Background()

	guard := mustUser(t, database, "John Doe", "john@example.com", models.RoleGuard)
	checkpoint := mustCheckpoint(t, database, "Main Gate", nil, nil)

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		mustLog(t, database, guard, checkpoint, models.StatusVerified, base.Add(time.Duration(i)*time.Minute))
	}

	tests := []struct {
		page     int
		wantLen  int
		wantPage int
	}{
		{page: 1, wantLen: 10, wantPage: 1},
		{page: 3, wantLen: 5, wantPage: 3},
		{page: 4, wantLen: 0, wantPage: 4},
		{page: 0, wantLen: 10, wantPage: 1},
		{page: -7, wantLen: 10, wantPage: 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page=%d", tt.page), func(t *testing.T) {
			got, err := s.ListLogs(ctx, "", tt.page)
			if err != nil {
				t.Fatalf("ListLogs() error = %v", err)
			}
			if got.TotalPages != 3 {
				t.Errorf("TotalPages = %d, want 3", got.TotalPages)
			}
			if len(got.Logs) != tt.wantLen {
				t.Errorf("len(Logs) = %d, want %d", len(got.Logs), tt.wantLen)
			}
			if got.CurrentPage != tt.wantPage {
				t.Errorf("CurrentPage = %d, want %d", got.CurrentPage, tt.wantPage)
			}
		})
	}
}

func TestListLogsOrderNewestFirst(t *testing.T) {
	s, database := newTestStore(t)
	ctx := context.Background()

	guard := mustUser(t, database, "John Doe", "john@example.com", models.RoleGuard)
	checkpoint := mustCheckpoint(t, database, "Main Gate", nil, nil)

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	oldest := mustLog(t, database, guard, checkpoint, models.StatusVerified, base)
	newest := mustLog(t, database, guard, checkpoint, models.StatusVerified, base.Add(time.Hour))

	got, err := s.ListLogs(ctx, "", 1)
	if err != nil {
		t.Fatalf("ListLogs() error = %v", err)
	}
	if len(got.Logs) != 2 {
		t.Fatalf("len(Logs) = %d, want 2", len(got.Logs))
	}
	if got.Logs[0].ID != newest.ID || got.Logs[1].ID != oldest.ID {
		t.Errorf("order = [%s, %s], want newest first", got.Logs[0].ID, got.Logs[1].ID)
	}
}

func TestListLogsSearchCaseInsensitive(t *testing.T) {
	s, database := newTestStore(t)
	ctx := context.Background()

	john := mustUser(t, database, "John Doe", "john@example.com", models.RoleGuard)
	ravi := mustUser(t, database, "Ravi Kumar", "ravi@example.com", models.RoleGuard)
	checkpoint := mustCheckpoint(t, database, "Main Gate", nil, nil)

	now := time.Now().UTC()
	mustLog(t, database, john, checkpoint, models.StatusVerified, now)
	mustLog(t, database, ravi, checkpoint, models.StatusVerified, now)

	for _, term := range []string{"john", "JOHN", "hn D"} {
		got, err := s.ListLogs(ctx, term, 1)
		if err != nil {
			t.Fatalf("ListLogs(%q) error = %v", term, err)
		}
		if len(got.Logs) != 1 {
			t.Fatalf("ListLogs(%q) returned %d logs, want 1", term, len(got.Logs))
		}
		if got.Logs[0].User.Name != "John Doe" {
			t.Errorf("ListLogs(%q) matched %q", term, got.Logs[0].User.Name)
		}
	}

	got, err := s.ListLogs(ctx, "nobody", 1)
	if err != nil {
		t.Fatalf("ListLogs() error = %v", err)
	}
	if len(got.Logs) != 0 || got.TotalPages != 0 {
		t.Errorf("unmatched search = %d logs, %d pages; want empty", len(got.Logs), got.TotalPages)
	}
}

func TestRecentLogsLimit(t *testing.T) {
	s, database := newTestStore(t)
	ctx := context.Background()

	guard := mustUser(t, database, "John Doe", "john@example.com", models.RoleGuard)
	checkpoint := mustCheckpoint(t, database, "Main Gate", nil, nil)

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		mustLog(t, database, guard, checkpoint, models.StatusVerified, base.Add(time.Duration(i)*time.Minute))
	}

	logs, err := s.RecentLogs(ctx, 10)
	if err != nil {
		t.Fatalf("RecentLogs() error = %v", err)
	}
	if len(logs) != 10 {
		t.Fatalf("len = %d, want 10", len(logs))
	}
	if !logs[0].CheckInTime.After(logs[9].CheckInTime) {
		t.Error("RecentLogs not ordered newest first")
	}
}

func TestResolveLogIdempotent(t *testing.T) {
	s, database := newTestStore(t)
	ctx := context.Background()

	guard := mustUser(t, database, "John Doe", "john@example.com", models.RoleGuard)
	supervisor := mustUser(t, database, "Asha Verma", "asha@example.com", models.RoleSupervisor)
	checkpoint := mustCheckpoint(t, database, "Main Gate", nil, nil)

	entry := mustLog(t, database, guard, checkpoint, models.StatusSOS, time.Now().UTC())

	first, err := s.ResolveLog(ctx, entry.ID, &supervisor.ID)
	if err != nil {
		t.Fatalf("ResolveLog() error = %v", err)
	}
	if first.Status != models.StatusResolved {
		t.Errorf("Status = %q, want RESOLVED", first.Status)
	}

	second, err := s.ResolveLog(ctx, entry.ID, &supervisor.ID)
	if err != nil {
		t.Fatalf("second ResolveLog() error = %v", err)
	}
	if second.Status != models.StatusResolved {
		t.Errorf("second Status = %q, want RESOLVED", second.Status)
	}

	trail, err := s.AuditTrail(ctx, 10)
	if err != nil {
		t.Fatalf("AuditTrail() error = %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(trail))
	}
	if trail[0].Action != "log.resolve" {
		t.Errorf("audit action = %q", trail[0].Action)
	}
}

func TestResolveLogUnknownID(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.ResolveLog(context.Background(), uuid.New(), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ResolveLog() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateCheckpointOverwritesBothFields(t *testing.T) {
	s, database := newTestStore(t)
	ctx := context.Background()

	supervisor := mustUser(t, database, "Asha Verma", "asha@example.com", models.RoleSupervisor)
	checkpoint := mustCheckpoint(t, database, "Main Gate", coord(12.9716), coord(77.5946))

	updated, err := s.UpdateCheckpoint(ctx, checkpoint.ID, "Check all locks.", "https://video.example/gate", &supervisor.ID)
	if err != nil {
		t.Fatalf("UpdateCheckpoint() error = %v", err)
	}
	if updated.Instruction != "Check all locks." || updated.VideoURL != "https://video.example/gate" {
		t.Errorf("updated = (%q, %q)", updated.Instruction, updated.VideoURL)
	}

	// Omitted fields are written as empty, not preserved.
	cleared, err := s.UpdateCheckpoint(ctx, checkpoint.ID, "", "", &supervisor.ID)
	if err != nil {
		t.Fatalf("UpdateCheckpoint() error = %v", err)
	}
	if cleared.Instruction != "" || cleared.VideoURL != "" {
		t.Errorf("cleared = (%q, %q), want empty overwrite", cleared.Instruction, cleared.VideoURL)
	}
	if cleared.Latitude == nil || *cleared.Latitude != 12.9716 {
		t.Error("latitude changed by instruction update")
	}
}

func TestUpdateCheckpointUnknownID(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.UpdateCheckpoint(context.Background(), uuid.New(), "x", "y", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateCheckpoint() error = %v, want ErrNotFound", err)
	}
}

func TestUserByEmail(t *testing.T) {
	s, database := newTestStore(t)
	ctx := context.Background()

	mustUser(t, database, "Asha Verma", "asha@example.com", models.RoleSupervisor)

	user, err := s.UserByEmail(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("UserByEmail() error = %v", err)
	}
	if user.Role != models.RoleSupervisor || user.Name != "Asha Verma" {
		t.Errorf("user = (%q, %q)", user.Name, user.Role)
	}

	if _, err := s.UserByEmail(ctx, "stranger@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UserByEmail() error = %v, want ErrNotFound", err)
	}
}
