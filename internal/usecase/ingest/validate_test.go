package ingest

import (
	"bytes"
	"testing"

	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegPayload(size int) []byte {
	b := make([]byte, size)
	b[0], b[1] = 0xFF, 0xD8

	return b
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(1024)

	tests := []struct {
		name     string
		data     []byte
		mimeType string
		code     errs.Code
	}{
		{"jpeg ok", jpegPayload(100), "image/jpeg", ""},
		{"jpeg upper case type", jpegPayload(100), "IMAGE/JPEG", ""},
		{"png ok", append([]byte{0x89, 0x50, 0x4E, 0x47}, make([]byte, 10)...), "image/png", ""},
		{"webp ok", append([]byte("RIFF"), make([]byte, 10)...), "image/webp", ""},
		{"heic has no signature", []byte{0x00, 0x01}, "image/heic", ""},
		{"gif not allowed", []byte("GIF89a"), "image/gif", errs.InvalidImage},
		{"too large", jpegPayload(1025), "image/jpeg", errs.FileTooLarge},
		{"png declared but jpeg bytes", jpegPayload(100), "image/png", errs.CorruptedImage},
		{"jpeg declared but zeros", make([]byte, 100), "image/jpeg", errs.CorruptedImage},
		{"type checked before size", bytes.Repeat([]byte{0}, 2048), "text/plain", errs.InvalidImage},
		{"size checked before signature", make([]byte, 2048), "image/jpeg", errs.FileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := v.Validate(tt.data, tt.mimeType)

			if tt.code == "" {
				assert.True(t, verdict.Valid)
				assert.NoError(t, verdict.Err())
				return
			}

			assert.False(t, verdict.Valid)
			assert.Equal(t, tt.code, verdict.Code)
			assert.NotEmpty(t, verdict.Reason)

			var ve *errs.ValidationError
			require.ErrorAs(t, verdict.Err(), &ve)
			assert.Equal(t, tt.code, ve.Code)
		})
	}
}

func TestValidator_Messages(t *testing.T) {
	v := NewValidator(4 * 1024 * 1024)

	verdict := v.Validate([]byte("x"), "image/bmp")
	for _, mt := range AllowedMimeTypes {
		assert.Contains(t, verdict.Reason, mt)
	}

	verdict = v.Validate(jpegPayload(5*1024*1024), "image/jpeg")
	assert.Contains(t, verdict.Reason, "5.0MB")
	assert.Contains(t, verdict.Reason, "4.0MB")
}

func TestValidator_FlippedSignatureByte(t *testing.T) {
	v := NewValidator(1024)

	for mt, sig := range signatures {
		for i := range sig {
			data := append(append([]byte(nil), sig...), make([]byte, 32)...)
			data[i] ^= 0xFF

			verdict := v.Validate(data, mt)

			assert.False(t, verdict.Valid, "%s byte %d", mt, i)
			assert.Equal(t, errs.CorruptedImage, verdict.Code, "%s byte %d", mt, i)
		}

		data := append(append([]byte(nil), sig...), make([]byte, 32)...)
		assert.True(t, v.Validate(data, mt).Valid, mt)
	}
}
