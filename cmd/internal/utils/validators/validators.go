package validators

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var phonePattern = regexp.MustCompile(`^[()\s\-+\d]+$`)

// IsIsoDate accepts calendar dates such as 2025-09-12.
func IsIsoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// IsClockTime accepts a 24h time of day such as 09:30.
func IsClockTime(fl validator.FieldLevel) bool {
	_, err := time.Parse(ClockLayout, fl.Field().String())
	return err == nil
}

func IsPhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

// NotPast builds a validator that rejects dates before today, compared at
// day granularity in loc. Unparseable values pass; "isodate" reports them.
func NotPast(now func() time.Time, loc *time.Location) validator.Func {
	return func(fl validator.FieldLevel) bool {
		date, err := time.ParseInLocation(DateLayout, fl.Field().String(), loc)
		if err != nil {
			return true
		}
		y, m, d := now().In(loc).Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return !date.Before(today)
	}
}
