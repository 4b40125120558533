package thumbnail

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestRenderer_Thumbnail(t *testing.T) {
	r := New(32, 32)

	out, contentType, err := r.Thumbnail(context.Background(), "image/png", pngBytes(t, 200, 100))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

func TestRenderer_WebPBecomesJPEG(t *testing.T) {
	_, contentType, err := encodeImage(image.NewRGBA(image.Rect(0, 0, 4, 4)), "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestRenderer_Unsupported(t *testing.T) {
	_, _, err := New(0, 0).Thumbnail(context.Background(), "image/heic", []byte{0, 1, 2})
	assert.ErrorIs(t, err, errs.ErrUnsupported)
}

func TestRenderer_Corrupted(t *testing.T) {
	_, _, err := New(0, 0).Thumbnail(context.Background(), "image/jpeg", []byte{0xFF, 0xD8, 0})
	assert.Error(t, err)
}
