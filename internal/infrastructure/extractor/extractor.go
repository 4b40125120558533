package extractor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	_ "golang.org/x/image/webp"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// ExifExtractor reads embedded camera metadata. It never fails: parse errors
// come back as an unavailable result with the shape still populated. A broken
// sub-IFD only costs its own tags and is noted in Metadata.Error.
type ExifExtractor struct {
	location *time.Location
}

func New(loc *time.Location) *ExifExtractor {
	if loc == nil {
		loc = time.Local
	}

	return &ExifExtractor{location: loc}
}

func (e *ExifExtractor) Extract(data []byte) (res entity.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = entity.Unavailable(fmt.Sprintf("exif parser panic: %v", r))
			e.probeHeader(data, &res.Metadata)
		}
	}()

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		res = entity.Unavailable(fmt.Sprintf("ExifExtractor - Extract - exif.Decode: %v", err))
		e.probeHeader(data, &res.Metadata)

		return res
	}

	m := entity.EmptyEmbeddedMetadata()
	if err != nil {
		// битый под-IFD (GPS, Interop), остальные теги читаются
		m.Error = fmt.Sprintf("ExifExtractor - Extract - exif.Decode: %s", strings.TrimSpace(err.Error()))
	}

	m.Camera = entity.Camera{
		Make:     stringTag(x, exif.Make),
		Model:    stringTag(x, exif.Model),
		Software: stringTag(x, exif.Software),
	}

	m.Settings = entity.ExposureSettings{
		ISO:          intTag(x, exif.ISOSpeedRatings),
		FNumber:      ratTag(x, exif.FNumber),
		ExposureTime: ratTag(x, exif.ExposureTime),
		FocalLength:  ratTag(x, exif.FocalLength),
		Flash:        intTag(x, exif.Flash),
	}

	m.Image = entity.ImageInfo{
		Width:       intTag(x, exif.PixelXDimension),
		Height:      intTag(x, exif.PixelYDimension),
		Orientation: intTag(x, exif.Orientation).OrElse(entity.DefaultOrientation),
		ColorSpace:  intTag(x, exif.ColorSpace),
	}
	if !m.Image.Width.IsPresent() || !m.Image.Height.IsPresent() {
		e.probeHeader(data, &m)
	}

	m.DateTime = e.captureTime(x)

	lat := coordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	lon := coordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	m.GPS = entity.GPS{
		Latitude:  lat,
		Longitude: lon,
		Altitude:  ratTag(x, exif.GPSAltitude),
		HasGPS:    lat.IsPresent() && lon.IsPresent(),
	}

	return entity.Available(m)
}

// captureTime prefers DateTimeOriginal over DateTime; both carry no zone, so
// they are read as wall time in the configured location.
func (e *ExifExtractor) captureTime(x *exif.Exif) entity.Optional[time.Time] {
	for _, name := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		s, ok := stringTag(x, name).Get()
		if !ok {
			continue
		}

		t, err := time.ParseInLocation(exifTimeLayout, s, e.location)
		if err == nil {
			return entity.Some(t)
		}
	}

	return entity.None[time.Time]()
}

// probeHeader fills missing dimensions from the image header.
func (e *ExifExtractor) probeHeader(data []byte, m *entity.EmbeddedMetadata) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return
	}

	if !m.Image.Width.IsPresent() {
		m.Image.Width = entity.Some(cfg.Width)
	}
	if !m.Image.Height.IsPresent() {
		m.Image.Height = entity.Some(cfg.Height)
	}
}

func stringTag(x *exif.Exif, name exif.FieldName) entity.Optional[string] {
	tag, err := x.Get(name)
	if err != nil || tag.Format() != tiff.StringVal {
		return entity.None[string]()
	}

	s, err := tag.StringVal()
	if err != nil {
		return entity.None[string]()
	}

	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if s == "" {
		return entity.None[string]()
	}

	return entity.Some(s)
}

func intTag(x *exif.Exif, name exif.FieldName) entity.Optional[int] {
	tag, err := x.Get(name)
	if err != nil || tag.Format() != tiff.IntVal {
		return entity.None[int]()
	}

	v, err := tag.Int(0)
	if err != nil {
		return entity.None[int]()
	}

	return entity.Some(v)
}

func ratTag(x *exif.Exif, name exif.FieldName) entity.Optional[float64] {
	tag, err := x.Get(name)
	if err != nil {
		return entity.None[float64]()
	}

	v, ok := ratAt(tag, 0)
	if !ok {
		return entity.None[float64]()
	}

	return entity.Some(v)
}

func ratAt(tag *tiff.Tag, i int) (float64, bool) {
	if tag.Format() != tiff.RatVal || i >= int(tag.Count) {
		return 0, false
	}

	num, den, err := tag.Rat2(i)
	if err != nil || den == 0 {
		return 0, false
	}

	return float64(num) / float64(den), true
}

// coordinate converts degrees, minutes and seconds to decimal degrees. Southern
// and western hemispheres are negative.
func coordinate(x *exif.Exif, valueName, refName exif.FieldName) entity.Optional[float64] {
	tag, err := x.Get(valueName)
	if err != nil {
		return entity.None[float64]()
	}

	var dms [3]float64
	for i := range dms {
		v, ok := ratAt(tag, i)
		if !ok {
			return entity.None[float64]()
		}
		dms[i] = v
	}

	deg := dms[0] + dms[1]/60 + dms[2]/3600

	return entity.Some(hemisphereSign(stringTag(x, refName).OrElse("")) * deg)
}

func hemisphereSign(ref string) float64 {
	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "S", "W":
		return -1
	default:
		return 1
	}
}
