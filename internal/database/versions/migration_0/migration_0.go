package migration_0

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeedbackEvent struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Text           string    `gorm:"not null"`
	PredictedLabel string    `gorm:"size:20;not null"`
	Timestamp      time.Time
}

func Migration(db *gorm.DB) error {
	if err := db.AutoMigrate(&FeedbackEvent{}); err != nil {
		return fmt.Errorf("Migration0 failed: %w", err)
	}
	return nil
}
