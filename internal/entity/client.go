package entity

import "time"

type (
	// Location is parsed from the caller's free-text location block.
	Location struct {
		Raw       string           `json:"raw"`
		Formatted string           `json:"formatted"`
		Country   Optional[string] `json:"country"`
		Province  Optional[string] `json:"province"`
		City      Optional[string] `json:"city"`
		Detail    Optional[string] `json:"detail"`
	}

	// ClientMetadata holds caller declared fields after parsing.
	ClientMetadata struct {
		OriginalName string              `json:"originalName"`
		ClientSize   Optional[int64]     `json:"clientSize"`
		ClientType   Optional[string]    `json:"clientType"`
		Extension    Optional[string]    `json:"extension"`
		Width        Optional[int]       `json:"width"`
		Height       Optional[int]       `json:"height"`
		ShotTime     Optional[time.Time] `json:"shotTime"`
		CreateDate   Optional[time.Time] `json:"createDate"`
		ModifyDate   Optional[time.Time] `json:"modifyDate"`
		Device       Optional[string]    `json:"device"`
		Location     Optional[Location]  `json:"location"`
		RawParams    map[string]string   `json:"rawParams,omitempty"`
	}
)
