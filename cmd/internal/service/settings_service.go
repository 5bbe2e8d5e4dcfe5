package service

import (
	"context"
	"regexp"
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

type SettingsRepository interface {
	Find(ctx context.Context, profile string) (entity.AccessibilitySettings, error)
	Save(ctx context.Context, profile string, settings entity.AccessibilitySettings) error
	Delete(ctx context.Context, profile string) error
}

var profilePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,40}$`)

// DefaultSettingsService serves the accessibility preferences. They belong
// to a display profile, not to an account.
type DefaultSettingsService struct {
	SettingsRepo SettingsRepository
	Validate     FormValidator
}

func NewSettingsService(settingsRepo SettingsRepository, validate FormValidator) *DefaultSettingsService {
	return &DefaultSettingsService{SettingsRepo: settingsRepo, Validate: validate}
}

func (s *DefaultSettingsService) GetSettings(ctx context.Context, profile string) (*entity.AccessibilitySettings, apierror.ErrorResponse) {
	if !profilePattern.MatchString(profile) {
		return nil, apierror.NewInvalidParamTypeError("profile", "identifier")
	}

	settings, err := s.SettingsRepo.Find(ctx, profile)
	if err != nil {
		log.Errorf("failed to read settings of profile %s: %v", profile, err)
		return nil, apierror.InternalServerError
	}
	return &settings, nil
}

// UpdateSettings applies only the fields present in req.
func (s *DefaultSettingsService) UpdateSettings(ctx context.Context, profile string, req *forms.SettingsForm) (*entity.AccessibilitySettings, apierror.ErrorResponse) {
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	settings, apierr := s.GetSettings(ctx, profile)
	if apierr != nil {
		return nil, apierr
	}

	if req.FontSize != nil {
		settings.FontSize = *req.FontSize
	}
	if req.LineHeight != nil {
		settings.LineHeight = *req.LineHeight
	}
	if req.HighContrast != nil {
		settings.HighContrast = *req.HighContrast
	}
	if req.SimplifiedMode != nil {
		settings.SimplifiedMode = *req.SimplifiedMode
	}

	if err := s.SettingsRepo.Save(ctx, profile, *settings); err != nil {
		log.Errorf("failed to save settings of profile %s: %v", profile, err)
		return nil, apierror.PersistenceError
	}
	return settings, nil
}

// ResetSettings forgets the stored preferences and returns the defaults.
func (s *DefaultSettingsService) ResetSettings(ctx context.Context, profile string) (*entity.AccessibilitySettings, apierror.ErrorResponse) {
	if !profilePattern.MatchString(profile) {
		return nil, apierror.NewInvalidParamTypeError("profile", "identifier")
	}

	if err := s.SettingsRepo.Delete(ctx, profile); err != nil {
		log.Errorf("failed to reset settings of profile %s: %v", profile, err)
		return nil, apierror.PersistenceError
	}
	defaults := entity.DefaultAccessibilitySettings()
	return &defaults, nil
}
