package api

import "time"

// Report describes one generated report artifact available for preview.
type Report struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}
