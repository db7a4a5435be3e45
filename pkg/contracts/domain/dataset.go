package domain

import "time"

// DatasetStatus describes the currently cached dataset.
type DatasetStatus struct {
	Path        string    `json:"path"`
	Encoding    string    `json:"encoding"`
	HeaderFixed bool      `json:"header_fixed"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
	LoadedAt    time.Time `json:"loaded_at"`
}
