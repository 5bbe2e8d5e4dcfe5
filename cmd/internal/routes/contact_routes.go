package routes

import (
	"net/http"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/service"
	"visuall/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type ContactService interface {
	SendMessage(req *forms.ContactForm) (*service.ContactResponse, apierror.ErrorResponse)
}

type DirectoryService interface {
	SearchUnits(req *forms.DirectorySearch) ([]service.OmbudsmanUnit, apierror.ErrorResponse)
}

type DefaultContactRoute struct {
	ContactService   ContactService
	DirectoryService DirectoryService
}

func NewContactDefault(contactService ContactService, directoryService DirectoryService) *DefaultContactRoute {
	return &DefaultContactRoute{ContactService: contactService, DirectoryService: directoryService}
}

func (r *DefaultContactRoute) SendMessage(c echo.Context) error {
	var req forms.ContactForm
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := r.ContactService.SendMessage(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (r *DefaultContactRoute) SearchDirectory(c echo.Context) error {
	var req forms.DirectorySearch
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	units, apierr := r.DirectoryService.SearchUnits(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"unidades": units}
	return c.JSON(http.StatusOK, &resp)
}
