// Package sensor holds the plant readings the device reports and their
// sqlite-backed store.
package sensor

import (
	"time"

	"github.com/google/uuid"
)

// Reading is one sample set from a plant monitor.
type Reading struct {
	Uuid         uuid.UUID `json:"id"`
	Device       string    `json:"device"`
	SoilMoisture float64   `json:"soil_moisture"`
	Temperature  float64   `json:"temperature"`
	AirHumidity  float64   `json:"humidity"`
	Brightness   float64   `json:"brightness"`
	RecordedAt   time.Time `json:"recorded_at"`
}
