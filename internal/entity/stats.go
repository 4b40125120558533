package entity

import "time"

const ServiceRunning = "running"

type (
	// Counters are the two aggregate values maintained next to the index.
	Counters struct {
		TotalImages int64 `json:"totalImages"`
		TotalSize   int64 `json:"totalSize"`
	}

	Stats struct {
		TotalImages   int64     `json:"totalImages"`
		TotalSize     int64     `json:"totalSize"`
		TotalSizeMB   float64   `json:"totalSizeMB"`
		AverageSizeKB float64   `json:"averageSizeKB"`
		LastUpdated   time.Time `json:"lastUpdated"`
		ServiceStatus string    `json:"serviceStatus"`
		Error         string    `json:"error,omitempty"`
	}
)
