package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
)

var (
	// AllowedMimeTypes keeps declaration order for messages.
	AllowedMimeTypes = []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/webp",
		"image/heic",
		"image/heif",
	}

	signatures = map[string][]byte{
		"image/jpeg": {0xFF, 0xD8},
		"image/jpg":  {0xFF, 0xD8},
		"image/png":  {0x89, 0x50, 0x4E, 0x47},
		"image/webp": {0x52, 0x49, 0x46, 0x46},
	}
)

// Verdict is the outcome of Validate. Code and Reason are empty when Valid.
type Verdict struct {
	Valid  bool
	Code   errs.Code
	Reason string
}

func (v Verdict) Err() error {
	if v.Valid {
		return nil
	}

	return errs.NewValidationError(v.Code, v.Reason)
}

type Validator struct {
	maxSize int64
}

func NewValidator(maxSize int64) *Validator {
	return &Validator{maxSize: maxSize}
}

func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Validate checks the declared type, then the size ceiling, then the magic bytes.
func (v *Validator) Validate(data []byte, mimeType string) Verdict {
	mt := strings.ToLower(strings.TrimSpace(mimeType))

	if !isAllowed(mt) {
		return Verdict{
			Code:   errs.InvalidImage,
			Reason: fmt.Sprintf("unsupported image type %q, allowed: %s", mimeType, strings.Join(AllowedMimeTypes, ", ")),
		}
	}

	if size := int64(len(data)); size > v.maxSize {
		return Verdict{
			Code:   errs.FileTooLarge,
			Reason: fmt.Sprintf("image size %s exceeds the limit of %s", humanSize(size), humanSize(v.maxSize)),
		}
	}

	if sig, ok := signatures[mt]; ok && !bytes.HasPrefix(data, sig) {
		return Verdict{
			Code:   errs.CorruptedImage,
			Reason: fmt.Sprintf("content does not match the %s signature, the file is corrupted or has a wrong extension", mt),
		}
	}

	return Verdict{Valid: true}
}

func isAllowed(mt string) bool {
	for _, t := range AllowedMimeTypes {
		if t == mt {
			return true
		}
	}

	return false
}

func humanSize(n int64) string {
	const mb = 1024 * 1024
	if n >= mb {
		return fmt.Sprintf("%.1fMB (%d bytes)", float64(n)/mb, n)
	}

	return fmt.Sprintf("%d bytes", n)
}
