package response

import (
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/google/uuid"
)

type (
	ImageItem struct {
		ID           uuid.UUID                  `json:"id"`
		FileName     string                     `json:"fileName"`
		OriginalName string                     `json:"originalName"`
		URL          string                     `json:"url"`
		Size         int64                      `json:"size"`
		MimeType     string                     `json:"mimeType"`
		UploadTime   time.Time                  `json:"uploadTime"`
		ShotTime     entity.Optional[time.Time] `json:"shotTime"`
		Device       entity.Optional[string]    `json:"device"`
		Dimensions   entity.Dimensions          `json:"dimensions"`
		Tags         []string                   `json:"tags"`
	}

	Upload struct {
		ImageItem
		Location   *LocationBrief `json:"location"`
		ClientInfo ClientInfo     `json:"clientInfo"`
	}

	LocationBrief struct {
		City      entity.Optional[string] `json:"city"`
		Province  entity.Optional[string] `json:"province"`
		Country   entity.Optional[string] `json:"country"`
		Formatted string                  `json:"formatted"`
	}

	ClientInfo struct {
		Device         entity.Optional[string]    `json:"device"`
		Extension      entity.Optional[string]    `json:"extension"`
		CreateDate     entity.Optional[time.Time] `json:"createDate"`
		ModifyDate     entity.Optional[time.Time] `json:"modifyDate"`
		OriginalWidth  entity.Optional[int]       `json:"originalWidth"`
		OriginalHeight entity.Optional[int]       `json:"originalHeight"`
	}

	ImageDetail struct {
		ImageItem
		PhotoSettings entity.PhotoSettings `json:"photoSettings"`
		Location      *LocationBrief       `json:"location"`
		Exif          *Exif                `json:"exif"`
		UploadSource  string               `json:"uploadSource"`
		UploadPath    string               `json:"uploadPath"`
	}

	Exif struct {
		Camera   entity.Camera           `json:"camera"`
		Settings entity.ExposureSettings `json:"settings"`
		Image    entity.ImageInfo        `json:"image"`
		HasGPS   bool                    `json:"hasGPS"`
	}

	Deleted struct {
		ID uuid.UUID `json:"id"`
	}
)

func NewImageItem(rec *entity.ImageRecord) ImageItem {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	return ImageItem{
		ID:           rec.ID,
		FileName:     rec.FileName,
		OriginalName: rec.OriginalName,
		URL:          rec.URL,
		Size:         rec.Size,
		MimeType:     rec.MimeType,
		UploadTime:   rec.UploadTime,
		ShotTime:     rec.ShotTime,
		Device:       rec.Summary.Device,
		Dimensions:   rec.Summary.Dimensions,
		Tags:         tags,
	}
}

func NewImageItems(recs []*entity.ImageRecord) []ImageItem {
	items := make([]ImageItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, NewImageItem(rec))
	}

	return items
}

func NewUpload(rec *entity.ImageRecord) Upload {
	u := Upload{
		ImageItem: NewImageItem(rec),
		Location:  newLocationBrief(rec.Summary.Location),
	}

	if c := rec.ClientMetadata; c != nil {
		u.ClientInfo = ClientInfo{
			Device:         c.Device,
			Extension:      c.Extension,
			CreateDate:     c.CreateDate,
			ModifyDate:     c.ModifyDate,
			OriginalWidth:  c.Width,
			OriginalHeight: c.Height,
		}
	}

	return u
}

func NewImageDetail(rec *entity.ImageRecord) ImageDetail {
	d := ImageDetail{
		ImageItem:     NewImageItem(rec),
		PhotoSettings: rec.Summary.PhotoSettings,
		Location:      newLocationBrief(rec.Summary.Location),
		UploadSource:  rec.Extra.UploadSource,
		UploadPath:    rec.StoragePath,
	}

	if d.UploadSource == "" {
		d.UploadSource = "unknown"
	}

	if m := rec.EmbeddedMetadata; m != nil {
		d.Exif = &Exif{
			Camera:   m.Camera,
			Settings: m.Settings,
			Image:    m.Image,
			HasGPS:   m.GPS.HasGPS,
		}
	}

	return d
}

func newLocationBrief(loc entity.Optional[entity.Location]) *LocationBrief {
	l, ok := loc.Get()
	if !ok {
		return nil
	}

	return &LocationBrief{
		City:      l.City,
		Province:  l.Province,
		Country:   l.Country,
		Formatted: l.Formatted,
	}
}
