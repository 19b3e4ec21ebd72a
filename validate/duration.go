package validate

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// validateMinDuration validates a minimum duration.
// Tag usage: mindur=1s
func validateMinDuration(fl validator.FieldLevel) bool {
	d, ok := durationValue(fl)
	if !ok {
		return false
	}

	if d == 0 {
		return true // zero = use default
	}

	minDur, err := time.ParseDuration(fl.Param())
	if err != nil {
		return false
	}

	return d >= minDur
}

// validateMaxDuration validates a maximum duration.
// Tag usage: maxdur=1h
func validateMaxDuration(fl validator.FieldLevel) bool {
	d, ok := durationValue(fl)
	if !ok {
		return false
	}

	if d == 0 {
		return true
	}

	maxDur, err := time.ParseDuration(fl.Param())
	if err != nil {
		return false
	}

	return d <= maxDur
}

func durationValue(fl validator.FieldLevel) (time.Duration, bool) {
	d, ok := fl.Field().Interface().(time.Duration)

	return d, ok
}
