package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PatrolLog status values. The only defined transition is SOS to RESOLVED;
// VERIFIED is terminal.
const (
	StatusVerified = "VERIFIED"
	StatusSOS      = "SOS"
	StatusResolved = "RESOLVED"
)

// PatrolLog is an immutable record of one check-in event at one checkpoint
// by one guard. GPSLatitude/GPSLongitude snapshot the checkpoint location
// at check-in time and are never re-derived, so later checkpoint edits do
// not rewrite history.
type PatrolLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	CheckpointID uuid.UUID `gorm:"type:uuid;not null;index" json:"checkpointId"`
	CheckInTime  time.Time `gorm:"not null;index" json:"checkInTime"`
	GPSLatitude  float64   `json:"gpsLatitude"`
	GPSLongitude float64   `json:"gpsLongitude"`
	Status       string    `gorm:"type:text;not null;default:VERIFIED" json:"status"`

	User       User       `gorm:"foreignKey:UserID" json:"user"`
	Checkpoint Checkpoint `gorm:"foreignKey:CheckpointID" json:"checkpoint"`
}

func (l *PatrolLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
