package db

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sentrylog/internal/models"
)

// SeedUser is one user entry in a seed document.
type SeedUser struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
}

// SeedCheckpoint is one checkpoint entry in a seed document.
type SeedCheckpoint struct {
	Name        string   `yaml:"name"`
	Latitude    *float64 `yaml:"latitude"`
	Longitude   *float64 `yaml:"longitude"`
	Instruction string   `yaml:"instruction"`
	VideoURL    string   `yaml:"videoUrl"`
}

// SeedData is the YAML document format accepted by Seed. Users and
// checkpoints are provisioned out-of-band; the API never creates them.
type SeedData struct {
	Users       []SeedUser       `yaml:"users"`
	Checkpoints []SeedCheckpoint `yaml:"checkpoints"`
}

// Seed inserts baseline users and checkpoints. When path is non-empty the
// seed set is read from that YAML file, otherwise a small default fixture
// is used. Existing rows are left untouched.
func Seed(ctx context.Context, database *gorm.DB, path string) error {
	data := defaultSeed()
	if path != "" {
		loaded, err := LoadSeedFile(path)
		if err != nil {
			return err
		}
		data = loaded
	}
	return apply(ctx, database, data)
}

// LoadSeedFile reads and validates a YAML seed document.
func LoadSeedFile(path string) (SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("read seed file: %w", err)
	}
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("parse seed file: %w", err)
	}
	for i, u := range data.Users {
		if u.Name == "" || u.Email == "" {
			return SeedData{}, fmt.Errorf("seed user %d: name and email are required", i)
		}
		switch u.Role {
		case models.RoleGuard, models.RoleSupervisor:
		default:
			return SeedData{}, fmt.Errorf("seed user %q: invalid role %q", u.Email, u.Role)
		}
	}
	for i, c := range data.Checkpoints {
		if c.Name == "" {
			return SeedData{}, fmt.Errorf("seed checkpoint %d: name is required", i)
		}
	}
	return data, nil
}

func apply(ctx context.Context, database *gorm.DB, data SeedData) error {
	for _, u := range data.Users {
		user := models.User{Name: u.Name, Email: u.Email, Role: u.Role}
		if err := database.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
			Create(&user).Error; err != nil {
			return err
		}
	}
	for _, c := range data.Checkpoints {
		checkpoint := models.Checkpoint{
			Name:        c.Name,
			Latitude:    c.Latitude,
			Longitude:   c.Longitude,
			Instruction: c.Instruction,
			VideoURL:    c.VideoURL,
		}
		if err := database.WithContext(ctx).
			Where(models.Checkpoint{Name: c.Name}).
			FirstOrCreate(&checkpoint).Error; err != nil {
			return err
		}
	}
	return nil
}

func defaultSeed() SeedData {
	coord := func(v float64) *float64 { return &v }
	return SeedData{
		Users: []SeedUser{
			{Name: "Asha Verma", Email: "asha@sentrylog.local", Role: models.RoleSupervisor},
			{Name: "John Doe", Email: "john@sentrylog.local", Role: models.RoleGuard},
			{Name: "Ravi Kumar", Email: "ravi@sentrylog.local", Role: models.RoleGuard},
		},
		Checkpoints: []SeedCheckpoint{
			{Name: "Main Gate", Latitude: coord(12.9716), Longitude: coord(77.5946), Instruction: "Verify perimeter and check locks."},
			{Name: "Parking Level B2", Instruction: "Sweep aisles and stairwell doors."},
			{Name: "Server Room Corridor", Latitude: coord(12.9721), Longitude: coord(77.5933)},
		},
	}
}
