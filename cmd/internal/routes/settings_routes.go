package routes

import (
	"context"
	"net/http"
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/domain/sqlite/repository"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type SettingsService interface {
	GetSettings(ctx context.Context, profile string) (*entity.AccessibilitySettings, apierror.ErrorResponse)
	UpdateSettings(ctx context.Context, profile string, req *forms.SettingsForm) (*entity.AccessibilitySettings, apierror.ErrorResponse)
	ResetSettings(ctx context.Context, profile string) (*entity.AccessibilitySettings, apierror.ErrorResponse)
}

type DefaultSettingsRoute struct {
	SettingsService SettingsService
}

func NewSettingsDefault(settingsService SettingsService) *DefaultSettingsRoute {
	return &DefaultSettingsRoute{SettingsService: settingsService}
}

func (s *DefaultSettingsRoute) GetSettings(c echo.Context) error {
	settings, apierr := s.SettingsService.GetSettings(c.Request().Context(), profileParam(c))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, settings)
}

func (s *DefaultSettingsRoute) UpdateSettings(c echo.Context) error {
	var req forms.SettingsForm
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	settings, apierr := s.SettingsService.UpdateSettings(c.Request().Context(), profileParam(c), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, settings)
}

func (s *DefaultSettingsRoute) ResetSettings(c echo.Context) error {
	settings, apierr := s.SettingsService.ResetSettings(c.Request().Context(), profileParam(c))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, settings)
}

func profileParam(c echo.Context) string {
	if profile := c.Param("profile"); profile != "" {
		return profile
	}
	return repository.DefaultProfile
}
