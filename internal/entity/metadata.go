package entity

import "time"

// DefaultOrientation is the EXIF "normal" orientation.
const DefaultOrientation = 1

type (
	Camera struct {
		Make     Optional[string] `json:"make"`
		Model    Optional[string] `json:"model"`
		Software Optional[string] `json:"software"`
	}

	ExposureSettings struct {
		ISO          Optional[int]     `json:"iso"`
		FNumber      Optional[float64] `json:"fNumber"`
		ExposureTime Optional[float64] `json:"exposureTime"`
		FocalLength  Optional[float64] `json:"focalLength"`
		Flash        Optional[int]     `json:"flash"`
	}

	// GPS keeps coordinates in memory only; they never reach JSON, so persisted
	// records carry nothing more precise than HasGPS.
	GPS struct {
		Latitude  Optional[float64] `json:"-"`
		Longitude Optional[float64] `json:"-"`
		Altitude  Optional[float64] `json:"altitude"`
		HasGPS    bool              `json:"hasGPS"`
	}

	ImageInfo struct {
		Width       Optional[int] `json:"width"`
		Height      Optional[int] `json:"height"`
		Orientation int           `json:"orientation"`
		ColorSpace  Optional[int] `json:"colorSpace"`
	}

	// EmbeddedMetadata is the fixed-shape extractor output. Every field exists even
	// when nothing could be parsed.
	EmbeddedMetadata struct {
		DateTime Optional[time.Time] `json:"dateTime"`
		Camera   Camera              `json:"camera"`
		Settings ExposureSettings    `json:"settings"`
		GPS      GPS                 `json:"gps"`
		Image    ImageInfo           `json:"image"`
		Error    string              `json:"error,omitempty"`
	}

	// ExtractionResult is either available metadata or an unavailable reason; the
	// metadata shape is populated in both cases.
	ExtractionResult struct {
		Metadata          EmbeddedMetadata
		UnavailableReason string
	}
)

func EmptyEmbeddedMetadata() EmbeddedMetadata {
	return EmbeddedMetadata{
		Image: ImageInfo{Orientation: DefaultOrientation},
	}
}

func Available(m EmbeddedMetadata) ExtractionResult {
	return ExtractionResult{Metadata: m}
}

func Unavailable(reason string) ExtractionResult {
	m := EmptyEmbeddedMetadata()
	m.Error = reason

	return ExtractionResult{Metadata: m, UnavailableReason: reason}
}

func (r ExtractionResult) IsAvailable() bool {
	return r.UnavailableReason == ""
}
