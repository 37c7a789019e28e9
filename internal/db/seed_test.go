package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sentrylog/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(context.Background(), database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func writeSeedFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestSeedDefaultsAreIdempotent(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	if err := Seed(ctx, database, ""); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if err := Seed(ctx, database, ""); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}

	var users, checkpoints int64
	if err := database.Model(&models.User{}).Count(&users).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if err := database.Model(&models.Checkpoint{}).Count(&checkpoints).Error; err != nil {
		t.Fatalf("count checkpoints: %v", err)
	}
	if users != 3 || checkpoints != 3 {
		t.Errorf("seeded (%d users, %d checkpoints), want (3, 3)", users, checkpoints)
	}
}

func TestSeedFromFile(t *testing.T) {
	database := newTestDB(t)

	path := writeSeedFile(t, `
users:
  - name: Night Shift Lead
    email: lead@example.com
    role: SUPERVISOR
checkpoints:
  - name: Loading Dock
    latitude: 12.97
    longitude: 77.59
    instruction: Check seals on all bays.
`)

	if err := Seed(context.Background(), database, path); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	var user models.User
	if err := database.First(&user, "email = ?", "lead@example.com").Error; err != nil {
		t.Fatalf("seeded user missing: %v", err)
	}
	if user.Role != models.RoleSupervisor {
		t.Errorf("Role = %q, want SUPERVISOR", user.Role)
	}

	var checkpoint models.Checkpoint
	if err := database.First(&checkpoint, "name = ?", "Loading Dock").Error; err != nil {
		t.Fatalf("seeded checkpoint missing: %v", err)
	}
	if checkpoint.Latitude == nil || *checkpoint.Latitude != 12.97 {
		t.Errorf("Latitude = %v, want 12.97", checkpoint.Latitude)
	}
}

func TestLoadSeedFileValidation(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{
			name:     "missing email",
			contents: "users:\n  - name: No Email\n    role: GUARD\n",
		},
		{
			name:     "bad role",
			contents: "users:\n  - name: X\n    email: x@example.com\n    role: ADMIN\n",
		},
		{
			name:     "nameless checkpoint",
			contents: "checkpoints:\n  - instruction: orphan\n",
		},
		{
			name:     "not yaml",
			contents: "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSeedFile(t, tt.contents)
			if _, err := LoadSeedFile(path); err == nil {
				t.Fatal("LoadSeedFile() expected error")
			}
		})
	}
}
