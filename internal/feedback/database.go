package feedback

import (
	"context"
	"fmt"
	"sentiment-backend/internal/database"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseSink stores events in the feedback_events table. Redelivered events
// are ignored by primary key so queue retries are idempotent.
type DatabaseSink struct {
	db *gorm.DB
}

func NewDatabaseSink(db *gorm.DB) *DatabaseSink {
	return &DatabaseSink{db: db}
}

func (s *DatabaseSink) Record(ctx context.Context, event Event) error {
	var attributes datatypes.JSONMap
	if len(event.Attributes) > 0 {
		attributes = make(datatypes.JSONMap, len(event.Attributes))
		for k, v := range event.Attributes {
			attributes[k] = v
		}
	}

	row := database.FeedbackEvent{
		Id:             event.Id,
		Text:           event.Text,
		OriginalText:   event.OriginalText,
		PredictedLabel: event.PredictedLabel,
		Timestamp:      event.Timestamp,
		Attributes:     attributes,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("error saving feedback event %s: %w", event.Id, err)
	}

	return nil
}
