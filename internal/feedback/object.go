package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sentiment-backend/internal/storage"
)

// ObjectSink writes one json document per event, partitioned by day:
// <bucket>/feedback/YYYY/MM/DD/<id>.json
type ObjectSink struct {
	store  storage.ObjectStore
	bucket string
}

func NewObjectSink(ctx context.Context, store storage.ObjectStore, bucket string) (*ObjectSink, error) {
	if err := store.CreateBucket(ctx, bucket); err != nil {
		return nil, fmt.Errorf("error creating feedback bucket: %w", err)
	}
	return &ObjectSink{store: store, bucket: bucket}, nil
}

func ObjectKey(event Event) string {
	return fmt.Sprintf("feedback/%s/%s.json", event.Timestamp.UTC().Format("2006/01/02"), event.Id)
}

func (s *ObjectSink) Record(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error serializing feedback event %s: %w", event.Id, err)
	}

	if err := s.store.PutObject(ctx, s.bucket, ObjectKey(event), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("error storing feedback event %s: %w", event.Id, err)
	}

	return nil
}
