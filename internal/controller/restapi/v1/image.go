package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/andreyxaxa/Photo-Ingest/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// @Summary 	List photos
// @Description Lists records by upload time, or searches the most recent window when search is set
// @Tags 		images
// @Produce 	json
// @Param 		limit  query int    false "Page size, at most 100" default(20)
// @Param 		offset query int    false "Rank offset" default(0)
// @Param 		order  query string false "Sort order" Enums(asc, desc) default(desc)
// @Param 		search query string false "Case-insensitive keyword over names and tags"
// @Success 	200 {object} response.Success{data=[]response.ImageItem}
// @Failure 	503 {object} response.Error "Index unavailable"
// @Router 		/v1/images [get]
func (r *V1) listImages(ctx *fiber.Ctx) error {
	opts := entity.ListOptions{
		Limit:  queryInt(ctx, "limit", entity.DefaultListLimit),
		Offset: queryInt(ctx, "offset", 0),
		Order:  entity.Order(ctx.Query("order")),
	}.Normalize()

	search := ctx.Query("search")

	var (
		records []*entity.ImageRecord
		total   int64
		err     error
	)

	if search != "" {
		records, err = r.query.Search(ctx.UserContext(), search, opts.Limit)
	} else {
		records, err = r.query.List(ctx.UserContext(), opts)
		total = r.query.Stats(ctx.UserContext()).TotalImages
	}
	if err != nil {
		return r.failure(ctx, err, "restapi - v1 - listImages")
	}

	items := response.NewImageItems(records)

	resp := response.NewSuccess(items, fmt.Sprintf("获取到 %d 张豆包照片", len(items)))
	resp.Pagination = response.NewPagination(total, len(items), opts.Limit, opts.Offset, search != "")
	resp.Query = &response.Query{Order: string(opts.Order)}
	if search != "" {
		resp.Query.Search = &search
		resp.Message = fmt.Sprintf("找到 %d 张匹配的豆包照片", len(items))
	}

	return ctx.Status(http.StatusOK).JSON(resp)
}

// @Summary 	Get photo
// @Description Returns the full record with merged summary and extracted EXIF
// @Tags 		images
// @Produce 	json
// @Param 		id path string true "Image ID(uuid)"
// @Success 	200 {object} response.Success{data=response.ImageDetail}
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	503 {object} response.Error "Index unavailable"
// @Router 		/v1/images/{id} [get]
func (r *V1) getImage(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, errs.InvalidParameter, "invalid id")
	}

	rec, err := r.query.Get(ctx.UserContext(), id)
	if err != nil {
		return r.failure(ctx, err, "restapi - v1 - getImage")
	}

	return ctx.Status(http.StatusOK).JSON(response.NewSuccess(
		response.NewImageDetail(rec),
		fmt.Sprintf("豆包照片详情 - %s", rec.OriginalName),
	))
}

// @Summary 	Delete photo
// @Description Removes the record from the index and the payload from object storage
// @Tags 		images
// @Produce 	json
// @Param		id 	path	 string true "Image ID(uuid)"
// @Success		200 {object} response.Success{data=response.Deleted}
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	503 {object} response.Error "Index unavailable"
// @Router 		/v1/images/{id} [delete]
func (r *V1) deleteImage(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, errs.InvalidParameter, "invalid id")
	}

	rec, err := r.ingest.Delete(ctx.UserContext(), id)
	if err != nil {
		return r.failure(ctx, err, "restapi - v1 - deleteImage")
	}

	return ctx.Status(http.StatusOK).JSON(response.NewSuccess(
		response.Deleted{ID: rec.ID},
		fmt.Sprintf("豆包照片已删除 - %s", rec.OriginalName),
	))
}

// @Summary 	Collection statistics
// @Description Always answers 200; when counters cannot be read the figures are zero and error is set
// @Tags 		stats
// @Produce 	json
// @Success 	200 {object} response.Success{data=response.Stats}
// @Router 		/v1/stats [get]
func (r *V1) stats(ctx *fiber.Ctx) error {
	s := r.query.Stats(ctx.UserContext())

	msg := "统计信息获取成功"
	if s.Error != "" {
		msg = "统计信息获取成功（部分数据不可用）"
	}

	return ctx.Status(http.StatusOK).JSON(response.NewSuccess(response.NewStats(s), msg))
}

// queryInt falls back to def when the parameter is absent or not a number.
func queryInt(ctx *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return def
	}

	return v
}
