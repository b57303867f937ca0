package migration_1

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Adds the untranslated text, request attributes, and an index on the label.
type FeedbackEvent struct {
	OriginalText   string
	PredictedLabel string `gorm:"size:20;not null;index"`
	Attributes     datatypes.JSONMap
}

func Migration(db *gorm.DB) error {
	for _, column := range []string{"OriginalText", "Attributes"} {
		if err := db.Migrator().AddColumn(&FeedbackEvent{}, column); err != nil {
			return fmt.Errorf("error adding %s column: %w", column, err)
		}
	}

	if err := db.Migrator().CreateIndex(&FeedbackEvent{}, "PredictedLabel"); err != nil {
		return fmt.Errorf("error creating predicted_label index: %w", err)
	}

	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropIndex(&FeedbackEvent{}, "PredictedLabel"); err != nil {
		return fmt.Errorf("error dropping predicted_label index: %w", err)
	}

	for _, column := range []string{"OriginalText", "Attributes"} {
		if err := db.Migrator().DropColumn(&FeedbackEvent{}, column); err != nil {
			return fmt.Errorf("error dropping %s column: %w", column, err)
		}
	}

	return nil
}
