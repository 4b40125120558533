package v1

import (
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
)

type V1 struct {
	ingest usecase.IngestUseCase
	query  usecase.QueryUseCase
	logger logger.Interface
}
