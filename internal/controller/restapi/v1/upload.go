package v1

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/andreyxaxa/Photo-Ingest/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

var fileFields = []string{"image", "file"}

// @Summary  	Upload photo
// @Description Validates the photo, extracts EXIF, merges the caller metadata, stores the payload and indexes the record
// @Tags 		images
// @Accept 		mpfd
// @Produce 	json
// @Param 		image 	   formData file   true  "Photo (jpeg, png, webp, heic, heif); the field may also be named file"
// @Param 		name 	   formData string false "Original file name"
// @Param 		size 	   formData int    false "Declared size in bytes"
// @Param 		type 	   formData string false "Declared content type"
// @Param 		extension  formData string false "Declared extension"
// @Param 		width 	   formData int    false "Declared width"
// @Param 		height 	   formData int    false "Declared height"
// @Param 		shotTime   formData string false "Capture time, e.g. 2025年9月25日 22:15"
// @Param 		createDate formData string false "Creation time"
// @Param 		modifyDate formData string false "Modification time"
// @Param 		device 	   formData string false "Device name"
// @Param 		location   formData string false "Multi-line location block"
// @Success 	201 {object} response.Success{data=response.Upload}
// @Failure 	400 {object} response.Error "Missing, extra or invalid file"
// @Failure 	413 {object} response.Error "File too large"
// @Failure 	503 {object} response.Error "Storage or index unavailable"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/upload [post]
func (r *V1) upload(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, errs.InvalidRequest, "multipart form data expected")
	}
	defer func() {
		if err := form.RemoveAll(); err != nil {
			r.logger.Warn("restapi - v1 - upload - form.RemoveAll: %v", err)
		}
	}()

	// 1. ровно один файл в поле image или file
	file, code, msg := pickFile(form)
	if file == nil {
		return errorResponse(ctx, http.StatusBadRequest, code, msg)
	}

	// 2. читаем содержимое; размер и тип проверяет валидатор, лишнее не читаем
	maxSize := r.ingest.MaxUploadSize()

	f, err := file.Open()
	if err != nil {
		r.logger.Error(err, "restapi - v1 - upload - file.Open")

		return errorResponse(ctx, http.StatusInternalServerError, errs.InternalError, "problems with opening the file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		r.logger.Error(err, "restapi - v1 - upload - io.ReadAll")

		return errorResponse(ctx, http.StatusInternalServerError, errs.InternalError, "problems with reading the file")
	}

	// 3. загружаем
	rec, err := r.ingest.Upload(ctx.UserContext(), entity.UploadInput{
		Data:      data,
		FileName:  file.Filename,
		MimeType:  contentType(file),
		Params:    formParams(form),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
		ClientIP:  clientIP(ctx),
	})
	if err != nil {
		return r.failure(ctx, err, "restapi - v1 - upload")
	}

	// 4. ответ
	city := ""
	if loc, ok := rec.Summary.Location.Get(); ok {
		city = loc.City.OrElse("")
	}
	msg = fmt.Sprintf("豆包照片上传成功！📸 来自 %s %s 🐱", rec.Summary.Device.OrElse("未知设备"), city)

	return ctx.Status(http.StatusCreated).JSON(response.NewSuccess(response.NewUpload(rec), msg))
}

func pickFile(form *multipart.Form) (*multipart.FileHeader, errs.Code, string) {
	total := 0
	for _, files := range form.File {
		total += len(files)
	}

	switch {
	case total == 0:
		return nil, errs.NoFileUploaded, `no image file found, use the "image" or "file" field`
	case total > 1:
		return nil, errs.InvalidRequest, "only one file per request is accepted"
	}

	for _, field := range fileFields {
		if files := form.File[field]; len(files) == 1 {
			return files[0], "", ""
		}
	}

	return nil, errs.InvalidField, `upload the image with the "image" or "file" field`
}

func contentType(file *multipart.FileHeader) string {
	if ct := file.Header.Get(fiber.HeaderContentType); ct != "" && ct != fiber.MIMEOctetStream {
		return ct
	}

	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(file.Filename))); ct != "" {
		return ct
	}

	return fiber.MIMEOctetStream
}

func formParams(form *multipart.Form) map[string]string {
	params := make(map[string]string, len(form.Value))
	for k, v := range form.Value {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	return params
}

func clientIP(ctx *fiber.Ctx) string {
	if fwd := ctx.Get(fiber.HeaderXForwardedFor); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	return ctx.IP()
}
