package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Checkpoint is a physical location a guard must visit and verify.
// Latitude and longitude are optional; logs created against a checkpoint
// without coordinates fall back to a fixed pair at check-in time.
type Checkpoint struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Instruction string    `gorm:"type:text" json:"instruction"`
	VideoURL    string    `gorm:"type:text" json:"videoUrl"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Checkpoint) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
