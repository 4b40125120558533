package objectstore

import (
	"time"

	"github.com/google/uuid"
)

type Option func(*ObjectStore)

// Location sets the zone used for the date partition of storage paths.
func Location(loc *time.Location) Option {
	return func(s *ObjectStore) {
		if loc != nil {
			s.location = loc
		}
	}
}

func Clock(now func() time.Time) Option {
	return func(s *ObjectStore) {
		s.now = now
	}
}

func IDGenerator(gen func() uuid.UUID) Option {
	return func(s *ObjectStore) {
		s.newID = gen
	}
}
