package model

import "time"

// Run is a persisted viewshed computation: the observer parameters, the
// model configuration, and the resulting mask summary.
type Run struct {
	ID          string    `json:"id"`
	Cell        string    `json:"cell"` // H3 cell of the observer position
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	EyeHeight   float64   `json:"eye_height"`
	AzimuthMin  float64   `json:"azimuth_min"`
	AzimuthMax  float64   `json:"azimuth_max"`
	Refraction  bool      `json:"refraction"`
	Coefficient float64   `json:"coefficient"`
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	Visible     int       `json:"visible"`
	Mask        [][]bool  `json:"mask,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
