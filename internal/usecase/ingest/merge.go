package ingest

import (
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
)

// Caller form fields.
const (
	FieldName       = "name"
	FieldSize       = "size"
	FieldType       = "type"
	FieldExtension  = "extension"
	FieldWidth      = "width"
	FieldHeight     = "height"
	FieldShotTime   = "shotTime"
	FieldCreateDate = "createDate"
	FieldModifyDate = "modifyDate"
	FieldDevice     = "device"
	FieldLocation   = "location"
)

// Merger turns caller fields into ClientMetadata and folds them with embedded
// metadata into a record summary.
type Merger struct {
	location *time.Location
	now      func() time.Time
}

func NewMerger(loc *time.Location, now func() time.Time) *Merger {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}

	return &Merger{location: loc, now: now}
}

// ParseClientFields reads the caller form. fileName is the uploaded file name,
// used when no name field was sent.
func (m *Merger) ParseClientFields(params map[string]string, fileName string) entity.ClientMetadata {
	originalName := strings.TrimSpace(params[FieldName])
	if originalName == "" {
		originalName = fileName
	}

	return entity.ClientMetadata{
		OriginalName: originalName,
		ClientSize:   parseSize(params[FieldSize]),
		ClientType:   optionalString(params[FieldType]),
		Extension:    optionalString(params[FieldExtension]),
		Width:        parsePositiveInt(params[FieldWidth]),
		Height:       parsePositiveInt(params[FieldHeight]),
		ShotTime:     ParseClientTime(params[FieldShotTime], m.location),
		CreateDate:   ParseClientTime(params[FieldCreateDate], m.location),
		ModifyDate:   ParseClientTime(params[FieldModifyDate], m.location),
		Device:       optionalString(params[FieldDevice]),
		Location:     ParseLocation(params[FieldLocation]),
		RawParams:    params,
	}
}

func (m *Merger) Merge(client entity.ClientMetadata, embedded entity.EmbeddedMetadata) entity.Summary {
	return entity.Summary{
		Device:        MergeDevice(client, embedded),
		Dimensions:    MergeDimensions(client, embedded),
		ShotTime:      entity.Some(MergeShotTime(client, embedded, m.now()).In(m.location)),
		PhotoSettings: MergePhotoSettings(embedded),
		Location:      client.Location,
		HasGPS:        embedded.GPS.HasGPS,
	}
}

// MergeShotTime: caller shot time, caller create date, embedded capture time, now.
func MergeShotTime(client entity.ClientMetadata, embedded entity.EmbeddedMetadata, now time.Time) time.Time {
	return client.ShotTime.
		Or(client.CreateDate).
		Or(embedded.DateTime).
		OrElse(now)
}

// MergeDimensions prefers caller width and height; orientation only comes from
// the embedded block.
func MergeDimensions(client entity.ClientMetadata, embedded entity.EmbeddedMetadata) entity.Dimensions {
	orientation := embedded.Image.Orientation
	if orientation == 0 {
		orientation = entity.DefaultOrientation
	}

	return entity.Dimensions{
		Width:       client.Width.Or(embedded.Image.Width),
		Height:      client.Height.Or(embedded.Image.Height),
		Orientation: orientation,
	}
}

func MergeDevice(client entity.ClientMetadata, embedded entity.EmbeddedMetadata) entity.Optional[string] {
	if client.Device.IsPresent() {
		return client.Device
	}

	var parts []string
	for _, p := range []string{embedded.Camera.Make.OrElse(""), embedded.Camera.Model.OrElse("")} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	return optionalString(strings.Join(parts, " "))
}

func MergePhotoSettings(embedded entity.EmbeddedMetadata) entity.PhotoSettings {
	return entity.PhotoSettings{
		ISO:          embedded.Settings.ISO,
		Aperture:     embedded.Settings.FNumber,
		ShutterSpeed: embedded.Settings.ExposureTime,
		FocalLength:  embedded.Settings.FocalLength,
	}
}
