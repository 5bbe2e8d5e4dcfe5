package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"visuall/cmd/internal/domain/entity"

	"github.com/labstack/gommon/log"
)

const (
	settingsKey    = "accessibilitySettings"
	DefaultProfile = "default"
)

type DefaultSettingsRepository struct {
	kv KeyValueStore
}

func NewSettingsRepository(kv KeyValueStore) *DefaultSettingsRepository {
	return &DefaultSettingsRepository{kv: kv}
}

func SettingsKey(profile string) string {
	if profile == "" || profile == DefaultProfile {
		return settingsKey
	}
	return settingsKey + "_" + profile
}

// Find returns the stored settings, or the defaults when none (or only an
// undecodable value) is stored.
func (s *DefaultSettingsRepository) Find(ctx context.Context, profile string) (entity.AccessibilitySettings, error) {
	key := SettingsKey(profile)
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return entity.AccessibilitySettings{}, fmt.Errorf("read %s: %w", key, err)
	}
	if !found {
		return entity.DefaultAccessibilitySettings(), nil
	}

	settings := entity.DefaultAccessibilitySettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		log.Warnf("discarding corrupt settings %s: %v", key, err)
		return entity.DefaultAccessibilitySettings(), nil
	}
	return settings, nil
}

func (s *DefaultSettingsRepository) Save(ctx context.Context, profile string, settings entity.AccessibilitySettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, SettingsKey(profile), string(raw))
}

func (s *DefaultSettingsRepository) Delete(ctx context.Context, profile string) error {
	return s.kv.Delete(ctx, SettingsKey(profile))
}
