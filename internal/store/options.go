package store

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces notes.NewID.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithToastTTL sets how long a notification stays up. Zero disables expiry.
func WithToastTTL(d time.Duration) Option {
	return func(s *Store) { s.toastTTL = d }
}

func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) { s.saveTimeout = d }
}
