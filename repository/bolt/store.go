// Package bolt stores users and tasks as JSON documents in a bbolt file.
//
// Tasks live in a nested bucket per owner (tasks/<owner>/<task>), so a lookup
// with the wrong owner id cannot reach another user's document.
package bolt

import (
	"time"

	"github.com/google/uuid"
)

// Option customizes a repository.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
