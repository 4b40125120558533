package inmemory

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStorage(t *testing.T) {
	ctx := context.Background()
	b := NewBlobStorage()

	require.NoError(t, b.Upload(ctx, "images/a.jpg", strings.NewReader("aaa"), "image/jpeg", 3))
	require.NoError(t, b.Upload(ctx, "thumbnails/images/a.jpg", strings.NewReader("t"), "image/jpeg", 1))

	body, err := b.Download(ctx, "images/a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "aaa", string(data))
	assert.Equal(t, "image/jpeg", b.ContentType("images/a.jpg"))

	list, err := b.List(ctx, "images/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(3), list[0].Size)

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	b.Touch("images/a.jpg", old)
	list, err = b.List(ctx, "images/")
	require.NoError(t, err)
	assert.True(t, list[0].LastModified.Equal(old))

	require.NoError(t, b.Delete(ctx, "images/a.jpg"))
	_, err = b.Download(ctx, "images/a.jpg")
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}
