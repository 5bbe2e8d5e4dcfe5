package repository

import (
	"context"
	"time"
	"visuall/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultKeyValueRepository struct {
	db *gorm.DB
}

func NewKeyValueRepository(db *gorm.DB) *DefaultKeyValueRepository {
	return &DefaultKeyValueRepository{db: db}
}

// Get returns the stored value and whether the key exists.
func (k *DefaultKeyValueRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var kvs []entity.KeyValue
	err := k.db.WithContext(ctx).Where("entry_key = ?", key).Limit(1).Find(&kvs).Error
	if err != nil {
		return "", false, err
	}
	if len(kvs) == 0 {
		return "", false, nil
	}
	return kvs[0].Value, true, nil
}

func (k *DefaultKeyValueRepository) Put(ctx context.Context, key, value string) error {
	kv := &entity.KeyValue{
		Key:       key,
		Value:     value,
		WrittenAt: time.Now().UTC().UnixMilli(),
	}
	return k.db.WithContext(ctx).Save(kv).Error
}

func (k *DefaultKeyValueRepository) Delete(ctx context.Context, key string) error {
	return k.db.WithContext(ctx).Delete(&entity.KeyValue{}, "entry_key = ?", key).Error
}
