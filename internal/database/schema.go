package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type FeedbackEvent struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Text           string    `gorm:"not null"`
	OriginalText   string
	PredictedLabel string `gorm:"size:20;not null;index"`
	Timestamp      time.Time
	Attributes     datatypes.JSONMap
}
