package restapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/config"
	"github.com/andreyxaxa/Photo-Ingest/internal/controller/restapi"
	v1 "github.com/andreyxaxa/Photo-Ingest/internal/controller/restapi/v1"
	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure/extractor"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/inmemory"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/objectstore"
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase/ingest"
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase/query"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxUpload = 64 * 1024

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Code       string          `json:"code"`
	Pagination *struct {
		Total      int64 `json:"total"`
		Count      int   `json:"count"`
		Limit      int   `json:"limit"`
		Offset     int   `json:"offset"`
		HasMore    bool  `json:"hasMore"`
		NextOffset *int  `json:"nextOffset"`
	} `json:"pagination"`
}

type item struct {
	ID           uuid.UUID `json:"id"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	ShotTime     *string   `json:"shotTime"`
	Device       *string   `json:"device"`
	Tags         []string  `json:"tags"`
}

// brokenCounters fails every counter read.
type brokenCounters struct {
	*inmemory.RecordIndex
}

func (brokenCounters) Counters(context.Context) (entity.Counters, error) {
	return entity.Counters{}, errors.New("connection refused")
}

func newApp(t *testing.T, index repo.RecordIndex) *fiber.App {
	t.Helper()

	loc := time.FixedZone("CST", 8*3600)
	l := logger.Nop()
	objects := objectstore.New(inmemory.NewBlobStorage(), "https://cdn.example.com", objectstore.Location(loc))

	ingestUseCase := ingest.New(
		ingest.NewValidator(maxUpload),
		ingest.NewMerger(loc, time.Now),
		extractor.New(loc),
		objects,
		index,
		l,
	)
	queryUseCase := query.New(index, 100, l)

	cfg := &config.Config{}
	cfg.HTTP.CORSOrigins = []string{"*"}
	cfg.Metrics.Enabled = true

	app := fiber.New(fiber.Config{ErrorHandler: v1.ErrorHandler})
	restapi.NewRouter(app, cfg, ingestUseCase, queryUseCase, prometheus.NewRegistry(), l)

	return app
}

type filePart struct {
	field, name, contentType string
	data                     []byte
}

func multipartBody(t *testing.T, files []filePart, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func jpegBytes(size int) []byte {
	b := make([]byte, size)
	copy(b, []byte{0xFF, 0xD8, 0xFF, 0xE0})

	return b
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &env), string(body))
	}

	return resp.StatusCode, env
}

func upload(t *testing.T, app *fiber.App, files []filePart, fields map[string]string) (int, envelope) {
	t.Helper()

	body, ct := multipartBody(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, "/v1/upload", body)
	req.Header.Set("Content-Type", ct)

	return do(t, app, req)
}

func TestUpload_Created(t *testing.T) {
	app := newApp(t, inmemory.NewRecordIndex())

	status, env := upload(t, app,
		[]filePart{{field: "image", name: "IMG_0001.JPG", contentType: "image/jpeg", data: jpegBytes(10 * 1024)}},
		map[string]string{
			"device":   "iPhone 15",
			"shotTime": "2025年9月25日 22:15",
			"location": "中国\n浙江省\n杭州市\n西湖区",
		},
	)

	require.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)
	assert.Contains(t, env.Message, "iPhone 15")

	var got item
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, int64(10*1024), got.Size)
	require.NotNil(t, got.ShotTime)
	assert.Equal(t, "2025-09-25T22:15:00+08:00", *got.ShotTime)
	assert.Contains(t, got.Tags, "iPhone")
	assert.Contains(t, got.Tags, "深夜")
}

func TestUpload_FileField(t *testing.T) {
	app := newApp(t, inmemory.NewRecordIndex())

	status, _ := upload(t, app,
		[]filePart{{field: "file", name: "a.jpg", contentType: "image/jpeg", data: jpegBytes(512)}}, nil)

	assert.Equal(t, http.StatusCreated, status)
}

func TestUpload_Rejected(t *testing.T) {
	jpg := func(field string, size int) filePart {
		return filePart{field: field, name: "a.jpg", contentType: "image/jpeg", data: jpegBytes(size)}
	}

	tests := []struct {
		name   string
		files  []filePart
		status int
		code   string
	}{
		{"no file", nil, http.StatusBadRequest, "NO_FILE_UPLOADED"},
		{"two files", []filePart{jpg("image", 10), jpg("file", 10)}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"wrong field", []filePart{jpg("photo", 10)}, http.StatusBadRequest, "INVALID_FIELD"},
		{"too large", []filePart{jpg("image", maxUpload+1)}, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"not an image", []filePart{{field: "image", name: "a.txt", contentType: "text/plain", data: []byte("hi")}}, http.StatusBadRequest, "INVALID_IMAGE"},
		{"bad signature", []filePart{{field: "image", name: "a.png", contentType: "image/png", data: []byte("GIF89a")}}, http.StatusBadRequest, "CORRUPTED_IMAGE"},
		{"oversized gif", []filePart{{field: "image", name: "a.gif", contentType: "image/gif", data: append([]byte("GIF89a"), make([]byte, maxUpload)...)}}, http.StatusBadRequest, "INVALID_IMAGE"},
		{"oversized corrupted jpeg", []filePart{{field: "image", name: "a.jpg", contentType: "image/jpeg", data: make([]byte, maxUpload+1)}}, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(t, inmemory.NewRecordIndex())

			status, env := upload(t, app, tt.files, map[string]string{"device": "iPhone 15"})

			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestImages_ListGetDelete(t *testing.T) {
	app := newApp(t, inmemory.NewRecordIndex())

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		status, env := upload(t, app,
			[]filePart{{field: "image", name: fmt.Sprintf("IMG_%d.JPG", i), contentType: "image/jpeg", data: jpegBytes(1024)}}, nil)
		require.Equal(t, http.StatusCreated, status)

		var got item
		require.NoError(t, json.Unmarshal(env.Data, &got))
		ids = append(ids, got.ID)
		time.Sleep(2 * time.Millisecond)
	}

	// первая страница
	status, env := do(t, app, httptest.NewRequest(http.MethodGet, "/v1/images?limit=2", nil))
	require.Equal(t, http.StatusOK, status)

	var items []item
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, ids[2], items[0].ID)
	assert.Equal(t, ids[1], items[1].ID)

	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(3), env.Pagination.Total)
	assert.True(t, env.Pagination.HasMore)
	require.NotNil(t, env.Pagination.NextOffset)
	assert.Equal(t, 2, *env.Pagination.NextOffset)

	// поиск
	status, env = do(t, app, httptest.NewRequest(http.MethodGet, "/v1/images?search=img_1", nil))
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, ids[1], items[0].ID)
	assert.Equal(t, int64(1), env.Pagination.Total)
	assert.False(t, env.Pagination.HasMore)
	assert.Nil(t, env.Pagination.NextOffset)

	// детали
	status, env = do(t, app, httptest.NewRequest(http.MethodGet, "/v1/images/"+ids[0].String(), nil))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"uploadSource":"ios-shortcuts"`)

	// удаление
	status, _ = do(t, app, httptest.NewRequest(http.MethodDelete, "/v1/images/"+ids[0].String(), nil))
	require.Equal(t, http.StatusOK, status)

	status, env = do(t, app, httptest.NewRequest(http.MethodGet, "/v1/images/"+ids[0].String(), nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "IMAGE_NOT_FOUND", env.Code)

	status, env = do(t, app, httptest.NewRequest(http.MethodDelete, "/v1/images/"+ids[0].String(), nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "IMAGE_NOT_FOUND", env.Code)
}

func TestImages_MalformedID(t *testing.T) {
	app := newApp(t, inmemory.NewRecordIndex())

	status, env := do(t, app, httptest.NewRequest(http.MethodGet, "/v1/images/42", nil))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PARAMETER", env.Code)
}

func TestStats(t *testing.T) {
	app := newApp(t, inmemory.NewRecordIndex())

	status, env := do(t, app, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"serviceStatus":"running"`)
	assert.Contains(t, string(env.Data), `"funFacts"`)
	assert.NotContains(t, string(env.Data), `"error"`)
}

func TestStats_DegradedStillOK(t *testing.T) {
	app := newApp(t, brokenCounters{inmemory.NewRecordIndex()})

	status, env := do(t, app, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"error":"connection refused"`)
	assert.Contains(t, string(env.Data), `"totalImages":0`)
}

func TestMethods(t *testing.T) {
	app := newApp(t, inmemory.NewRecordIndex())

	for _, path := range []string{"/v1/upload", "/v1/images", "/v1/stats", "/v1/images/" + uuid.NewString()} {
		resp, err := app.Test(httptest.NewRequest(http.MethodOptions, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode, path)
	}

	status, env := do(t, app, httptest.NewRequest(http.MethodPut, "/v1/stats", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "METHOD_NOT_ALLOWED", env.Code)

	status, env = do(t, app, httptest.NewRequest(http.MethodGet, "/v1/upload", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "METHOD_NOT_ALLOWED", env.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newApp(t, inmemory.NewRecordIndex())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
