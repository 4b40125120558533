package v1

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/Photo-Ingest/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

func errorResponse(ctx *fiber.Ctx, code int, errCode errs.Code, msg string) error {
	return ctx.Status(code).JSON(response.NewError(errCode, msg))
}

// failure maps a use case error onto the error envelope. Server side failures
// are logged with op as context.
func (r *V1) failure(ctx *fiber.Ctx, err error, op string) error {
	var ve *errs.ValidationError

	switch {
	case errors.As(err, &ve):
		if ve.Code == errs.FileTooLarge {
			return errorResponse(ctx, http.StatusRequestEntityTooLarge, ve.Code, ve.Reason)
		}
		return errorResponse(ctx, http.StatusBadRequest, ve.Code, ve.Reason)
	case errors.Is(err, errs.ErrRecordNotFound):
		return errorResponse(ctx, http.StatusNotFound, errs.ImageNotFound, "image not found")
	case errors.Is(err, errs.ErrStorage):
		r.logger.Error(err, op)
		return errorResponse(ctx, http.StatusServiceUnavailable, errs.StorageError, "image storage failed")
	case errors.Is(err, errs.ErrDatabase):
		r.logger.Error(err, op)
		return errorResponse(ctx, http.StatusServiceUnavailable, errs.DatabaseError, "image metadata store failed")
	default:
		r.logger.Error(err, op)
		return errorResponse(ctx, http.StatusInternalServerError, errs.InternalError, "internal error")
	}
}

// ErrorHandler renders errors fiber raises before a handler runs (unknown
// route, body limit) with the same envelope.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return errorResponse(ctx, http.StatusInternalServerError, errs.InternalError, "internal error")
	}

	switch fe.Code {
	case http.StatusMethodNotAllowed:
		return errorResponse(ctx, fe.Code, errs.MethodNotAllowed, fe.Message)
	case http.StatusRequestEntityTooLarge:
		return errorResponse(ctx, fe.Code, errs.FileTooLarge, fe.Message)
	case http.StatusServiceUnavailable:
		return errorResponse(ctx, fe.Code, errs.ServiceUnavailable, fe.Message)
	case http.StatusInternalServerError:
		return errorResponse(ctx, fe.Code, errs.InternalError, fe.Message)
	default:
		return errorResponse(ctx, fe.Code, errs.InvalidRequest, fe.Message)
	}
}
