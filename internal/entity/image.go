package entity

import (
	"time"

	"github.com/google/uuid"
)

type (
	Dimensions struct {
		Width       Optional[int] `json:"width"`
		Height      Optional[int] `json:"height"`
		Orientation int           `json:"orientation"`
	}

	PhotoSettings struct {
		ISO          Optional[int]     `json:"iso"`
		Aperture     Optional[float64] `json:"aperture"`
		ShutterSpeed Optional[float64] `json:"shutterSpeed"`
		FocalLength  Optional[float64] `json:"focalLength"`
	}

	Summary struct {
		Device        Optional[string]    `json:"device"`
		Dimensions    Dimensions          `json:"dimensions"`
		ShotTime      Optional[time.Time] `json:"shotTime"`
		PhotoSettings PhotoSettings       `json:"photoSettings"`
		Location      Optional[Location]  `json:"location"`
		HasGPS        bool                `json:"hasGPS"`
	}

	Extra struct {
		UserAgent    string `json:"userAgent,omitempty"`
		ClientIP     string `json:"clientIP,omitempty"`
		UploadSource string `json:"uploadSource"`
		SizeMatch    bool   `json:"sizeMatch"`
	}

	// StoredObject is what the object store returns for a written payload.
	StoredObject struct {
		ID           uuid.UUID `json:"id"`
		URL          string    `json:"url"`
		StoragePath  string    `json:"storagePath"`
		FileName     string    `json:"fileName"`
		OriginalName string    `json:"originalName"`
		Size         int64     `json:"size"`
		MimeType     string    `json:"mimeType"`
	}

	ImageRecord struct {
		ID           uuid.UUID `json:"id"`
		FileName     string    `json:"fileName"`
		OriginalName string    `json:"originalName"`
		URL          string    `json:"url"`
		StoragePath  string    `json:"storagePath"`
		Size         int64     `json:"size"`
		MimeType     string    `json:"mimeType"`

		UploadTime time.Time           `json:"uploadTime"`
		ShotTime   Optional[time.Time] `json:"shotTime"`

		EmbeddedMetadata *EmbeddedMetadata `json:"embeddedMetadata,omitempty"`
		ClientMetadata   *ClientMetadata   `json:"clientMetadata,omitempty"`
		Summary          Summary           `json:"summary"`

		Tags  []string `json:"tags"`
		Extra Extra    `json:"extra"`
	}
)

// Score is the time-ordered index key of the record.
func (r *ImageRecord) Score() int64 {
	return r.UploadTime.UnixMilli()
}

// ObjectInfo describes a blob listed from the backend.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}
