package reconcile

import (
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure"
)

type Option func(*UseCase)

func Metrics(m infrastructure.Metrics) Option {
	return func(uc *UseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

func Clock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}
