package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"visuall/cmd/internal/domain/entity"

	"github.com/labstack/gommon/log"
)

type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// DefaultCollectionRepository stores a user's whole reminder collection as
// one JSON document per key.
type DefaultCollectionRepository struct {
	kv KeyValueStore
}

func NewCollectionRepository(kv KeyValueStore) *DefaultCollectionRepository {
	return &DefaultCollectionRepository{kv: kv}
}

// Read reports found=false both for a missing key and for a value that no
// longer decodes; callers treat either as an empty collection.
func (c *DefaultCollectionRepository) Read(ctx context.Context, key string) ([]entity.Reminder, bool, error) {
	raw, found, err := c.kv.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}

	var reminders []entity.Reminder
	if err := json.Unmarshal([]byte(raw), &reminders); err != nil {
		log.Warnf("discarding corrupt reminder collection %s: %v", key, err)
		return nil, false, nil
	}
	if reminders == nil {
		reminders = []entity.Reminder{}
	}
	return reminders, true, nil
}

func (c *DefaultCollectionRepository) Write(ctx context.Context, key string, reminders []entity.Reminder) error {
	if reminders == nil {
		reminders = []entity.Reminder{}
	}
	raw, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.kv.Put(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
