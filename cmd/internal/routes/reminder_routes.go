package routes

import (
	"context"
	"net/http"
	"visuall/cmd/internal/announce"
	"visuall/cmd/internal/reminder"
	"visuall/cmd/internal/service"
	"visuall/cmd/internal/utils"
	"visuall/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type ReminderService interface {
	GetReminders(ctx context.Context, callerID, ownerID int) ([]*service.ReminderResponse, apierror.ErrorResponse)
	GetActive(ctx context.Context, callerID, ownerID int) ([]reminder.DisplayModel, apierror.ErrorResponse)
	GetHistory(ctx context.Context, callerID, ownerID int) ([]reminder.DisplayModel, apierror.ErrorResponse)
	CreateReminder(ctx context.Context, callerID int, req *service.ReminderRequest) (*service.ReminderResponse, apierror.ErrorResponse)
	UpdateReminder(ctx context.Context, callerID, id int, req *service.ReminderRequest) (*service.ReminderResponse, apierror.ErrorResponse)
	DeleteReminder(ctx context.Context, callerID, id int) apierror.ErrorResponse
	CompleteReminder(ctx context.Context, callerID, id int) (*service.ReminderResponse, apierror.ErrorResponse)
	ReopenReminder(ctx context.Context, callerID, id int) (*service.ReminderResponse, apierror.ErrorResponse)
	ListenReminder(ctx context.Context, callerID, id int) (*announce.Notice, apierror.ErrorResponse)
	ShareReminder(ctx context.Context, callerID, id int) (*announce.Notice, apierror.ErrorResponse)
}

type DefaultReminderRoute struct {
	ReminderService ReminderService
}

func NewReminderDefault(reminderService ReminderService) *DefaultReminderRoute {
	return &DefaultReminderRoute{ReminderService: reminderService}
}

// GetReminders answers with a bare JSON array, which is what the web client
// expects from this endpoint.
func (r *DefaultReminderRoute) GetReminders(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}
	ownerID, apierr := intParam(c, "userId")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	reminders, apierr := r.ReminderService.GetReminders(c.Request().Context(), data.UserID, ownerID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, reminders)
}

func (r *DefaultReminderRoute) GetActive(c echo.Context) error {
	return r.view(c, r.ReminderService.GetActive)
}

func (r *DefaultReminderRoute) GetHistory(c echo.Context) error {
	return r.view(c, r.ReminderService.GetHistory)
}

func (r *DefaultReminderRoute) CreateReminder(c echo.Context) error {
	var req service.ReminderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	created, apierr := r.ReminderService.CreateReminder(c.Request().Context(), data.UserID, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, created)
}

func (r *DefaultReminderRoute) UpdateReminder(c echo.Context) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.ReminderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	updated, apierr := r.ReminderService.UpdateReminder(c.Request().Context(), data.UserID, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, updated)
}

func (r *DefaultReminderRoute) DeleteReminder(c echo.Context) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	serr := r.ReminderService.DeleteReminder(c.Request().Context(), data.UserID, id)
	if serr != nil {
		return c.JSON(serr.Code(), serr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (r *DefaultReminderRoute) CompleteReminder(c echo.Context) error {
	return r.transition(c, r.ReminderService.CompleteReminder)
}

func (r *DefaultReminderRoute) ReopenReminder(c echo.Context) error {
	return r.transition(c, r.ReminderService.ReopenReminder)
}

func (r *DefaultReminderRoute) ListenReminder(c echo.Context) error {
	return r.announce(c, r.ReminderService.ListenReminder)
}

func (r *DefaultReminderRoute) ShareReminder(c echo.Context) error {
	return r.announce(c, r.ReminderService.ShareReminder)
}

func (r *DefaultReminderRoute) view(c echo.Context, fetch func(context.Context, int, int) ([]reminder.DisplayModel, apierror.ErrorResponse)) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}
	ownerID, apierr := intParam(c, "userId")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	models, apierr := fetch(c.Request().Context(), data.UserID, ownerID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, models)
}

func (r *DefaultReminderRoute) transition(c echo.Context, apply func(context.Context, int, int) (*service.ReminderResponse, apierror.ErrorResponse)) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	resp, apierr := apply(c.Request().Context(), data.UserID, id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (r *DefaultReminderRoute) announce(c echo.Context, dispatch func(context.Context, int, int) (*announce.Notice, apierror.ErrorResponse)) error {
	id, apierr := intParam(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	notice, apierr := dispatch(c.Request().Context(), data.UserID, id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, notice)
}
