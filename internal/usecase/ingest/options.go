package ingest

import (
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure"
)

type Option func(*UseCase)

// Publisher enables image events; without it nothing is published.
func Publisher(p infrastructure.EventPublisher) Option {
	return func(uc *UseCase) {
		uc.publisher = p
	}
}

func Metrics(m infrastructure.Metrics) Option {
	return func(uc *UseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

func UploadSource(source string) Option {
	return func(uc *UseCase) {
		if source != "" {
			uc.uploadSource = source
		}
	}
}

func Clock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}
