// Package util holds small shared helpers.
package util

import (
	"context"
	"time"
)

// WithTimeout runs fn with a derived context that expires after dur.
func WithTimeout(ctx context.Context, dur time.Duration, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, dur)
	defer cancelTimeout()

	return fn(timeoutCtx)
}
