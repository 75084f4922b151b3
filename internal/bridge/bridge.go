// Package bridge ingests the newline-delimited JSON readings the plant
// monitor writes to its serial port. The device also prints boot chatter
// and debug text on the same line discipline, so anything that doesn't
// look like JSON is skipped rather than treated as an error.
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"plantlink/internal/sensor"
)

type Store interface {
	Insert(reading *sensor.Reading) error
}

type Bridge struct {
	// Device is the name stamped onto stored readings.
	Device string
	Store  Store
	// Publish, when set, is called after each reading is stored.
	Publish func(reading sensor.Reading)
	Logger  *slog.Logger
}

// the subset of the reading the firmware actually reports
type payload struct {
	SoilMoisture float64 `json:"soil_moisture"`
	Temperature  float64 `json:"temperature"`
	AirHumidity  float64 `json:"humidity"`
	Brightness   float64 `json:"brightness"`
}

// Run consumes lines from r until it is exhausted or ctx is cancelled.
// In production r is the serial port; tests feed it from memory.
func (b *Bridge) Run(ctx context.Context, r io.Reader) error {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			if line != "" {
				logger.Debug("Skipping non-JSON serial line", "line", line)
			}
			continue
		}

		var p payload
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			logger.Warn("Couldn't parse serial reading", "err", err, "line", line)
			continue
		}

		reading := sensor.Reading{
			Device:       b.Device,
			SoilMoisture: p.SoilMoisture,
			Temperature:  p.Temperature,
			AirHumidity:  p.AirHumidity,
			Brightness:   p.Brightness,
		}
		if err := b.Store.Insert(&reading); err != nil {
			logger.Error("Couldn't store reading", "err", err)
			continue
		}
		logger.Info("Stored reading",
			"device", reading.Device,
			"soilMoisture", reading.SoilMoisture,
		)

		if b.Publish != nil {
			b.Publish(reading)
		}
	}

	return scanner.Err()
}
