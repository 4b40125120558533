package v1

import (
	"net/http"

	"github.com/andreyxaxa/Photo-Ingest/internal/usecase"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

func NewImageRoutes(apiV1Group fiber.Router, ingest usecase.IngestUseCase, query usecase.QueryUseCase, l logger.Interface) {
	r := &V1{ingest: ingest, query: query, logger: l}

	{
		apiV1Group.Post("/upload", r.upload)
		apiV1Group.Get("/images", r.listImages)
		apiV1Group.Get("/images/:id", r.getImage)
		apiV1Group.Delete("/images/:id", r.deleteImage)
		apiV1Group.Get("/stats", r.stats)

		// всё остальное на известных путях
		for _, path := range []string{"/upload", "/images", "/images/:id", "/stats"} {
			apiV1Group.Options(path, preflight)
			apiV1Group.All(path, methodNotAllowed)
		}
	}
}

func preflight(ctx *fiber.Ctx) error {
	return ctx.SendStatus(http.StatusNoContent)
}

func methodNotAllowed(ctx *fiber.Ctx) error {
	return errorResponse(ctx, http.StatusMethodNotAllowed, errs.MethodNotAllowed,
		"method "+ctx.Method()+" is not allowed")
}
