package utils

import (
	"errors"
	"reflect"
	"strings"
	"time"
	"visuall/cmd/internal/utils/token"

	"github.com/labstack/echo/v4"
)

// ClaimsContextKey is where the auth middleware leaves the parsed token.
const ClaimsContextKey = "token_claims"

// EpochLayout is RFC 3339 with millisecond precision, so FormatEpoch and
// ParseEpoch round-trip exactly.
const EpochLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrNoTokenData = errors.New("no token data in request context")

func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(EpochLayout)
}

func ParseEpoch(value string) (int64, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

func NowUTC() int64 {
	return time.Now().
		UTC().
		UnixMilli()
}

func ParseTokenDataCtx(c echo.Context) (*token.Claims, error) {
	claims, ok := c.Get(ClaimsContextKey).(*token.Claims)
	if !ok || claims == nil {
		return nil, ErrNoTokenData
	}
	return claims, nil
}

// Sanitize trims every string (and []string element) of the struct o points to.
func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		switch field.Kind() {
		case reflect.String:
			field.SetString(sanitizeString(field.String()))

		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.String {
				field.Elem().SetString(sanitizeString(field.Elem().String()))
			}

		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					field.Index(j).SetString(sanitizeString(field.Index(j).String()))
				}
			}
		}
	}
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}
