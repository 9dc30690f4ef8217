package repository

import (
	"context"
	"time"
)

// RateCounter counts hits per key inside fixed windows shared by every
// server instance.
type RateCounter interface {
	// Hit records one hit for key and returns the count in the current
	// window together with the time the window resets.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
}
