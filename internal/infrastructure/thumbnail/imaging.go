package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // imaging.Decode goes through image.Decode
)

const (
	defaultWidth  = 320
	defaultHeight = 320
)

type Renderer struct {
	width  int
	height int
}

func New(width, height int) *Renderer {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	return &Renderer{width: width, height: height}
}

// Thumbnail crops and scales data to the configured box. It returns the encoded
// bytes and their content type, which is JPEG for sources imaging cannot write.
func (p *Renderer) Thumbnail(_ context.Context, contentType string, data []byte) ([]byte, string, error) {
	if !Supported(contentType) {
		return nil, "", fmt.Errorf("Renderer - Thumbnail - %s: %w", contentType, errs.ErrUnsupported)
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, "", fmt.Errorf("Renderer - Thumbnail - decodeImage: %w", err)
	}

	thumb := imaging.Thumbnail(img, p.width, p.height, imaging.Lanczos)

	res, outType, err := encodeImage(thumb, contentType)
	if err != nil {
		return nil, "", fmt.Errorf("Renderer - Thumbnail - encodeImage: %w", err)
	}

	return res, outType, nil
}

// Supported reports whether the type can be decoded; HEIC and HEIF cannot.
func Supported(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imaging.Decode: %w", err)
	}

	return img, nil
}

func encodeImage(img image.Image, contentType string) ([]byte, string, error) {
	var buf bytes.Buffer
	var format imaging.Format

	switch contentType {
	case "image/png":
		format = imaging.PNG
	default:
		format = imaging.JPEG
		contentType = "image/jpeg"
	}

	err := imaging.Encode(&buf, img, format)
	if err != nil {
		return nil, "", fmt.Errorf("imaging.Encode: %w", err)
	}

	return buf.Bytes(), contentType, nil
}
