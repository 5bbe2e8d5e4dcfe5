package routes

import (
	"errors"
	"net/http"
	"strconv"
	"visuall/cmd/internal/utils"
	"visuall/cmd/internal/utils/apierror"
	"visuall/cmd/internal/utils/token"

	"github.com/labstack/echo/v4"
)

type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

var expiredTokenError = apierror.NewSimple(http.StatusUnauthorized, "Your session has expired, please sign in again")

// RequireAuth rejects requests without a valid bearer token and leaves the
// parsed claims in the context for utils.ParseTokenDataCtx.
func RequireAuth(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parser.Parse(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				if errors.Is(err, token.ErrExpiredToken) {
					return c.JSON(expiredTokenError.Code(), expiredTokenError)
				}
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			c.Set(utils.ClaimsContextKey, claims)
			return next(c)
		}
	}
}

func intParam(c echo.Context, name string) (int, apierror.ErrorResponse) {
	raw := c.Param(name)
	if raw == "" {
		return 0, apierror.NewMissingParamError(name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierror.NewInvalidParamTypeError(name, "int")
	}
	return id, nil
}
