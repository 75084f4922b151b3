package sensor

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	Db *sql.DB
}

func (r *Repository) Close() error {
	return r.Db.Close()
}

// Insert stores a reading, assigning a uuid and timestamp if the caller
// left them zero.
func (r *Repository) Insert(reading *Reading) error {
	if reading.Uuid == uuid.Nil {
		reading.Uuid = uuid.New()
	}
	if reading.RecordedAt.IsZero() {
		reading.RecordedAt = time.Now().UTC()
	}

	_, err := r.Db.Exec(`
	  INSERT INTO reading (uuid, device, soil_moisture, temperature, air_humidity, brightness, recorded_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reading.Uuid.String(),
		reading.Device,
		reading.SoilMoisture,
		reading.Temperature,
		reading.AirHumidity,
		reading.Brightness,
		reading.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("Failed to insert reading:\n%w", err)
	}
	return nil
}

// Latest returns the most recent reading across all devices, or nil when
// the store is empty.
func (r *Repository) Latest() (*Reading, error) {
	row := r.Db.QueryRow(`
	  SELECT uuid, device, soil_moisture, temperature, air_humidity, brightness, recorded_at
	  FROM reading
	  ORDER BY recorded_at DESC, id DESC
	  LIMIT 1`)
	return scanReading(row)
}

// LatestForDevice returns the most recent reading for one device, or nil
// when it has never reported.
func (r *Repository) LatestForDevice(device string) (*Reading, error) {
	row := r.Db.QueryRow(`
	  SELECT uuid, device, soil_moisture, temperature, air_humidity, brightness, recorded_at
	  FROM reading
	  WHERE device = ?
	  ORDER BY recorded_at DESC, id DESC
	  LIMIT 1`, device)
	return scanReading(row)
}

// List returns up to limit readings, newest first.
func (r *Repository) List(limit int) ([]Reading, error) {
	rows, err := r.Db.Query(`
	  SELECT uuid, device, soil_moisture, temperature, air_humidity, brightness, recorded_at
	  FROM reading
	  ORDER BY recorded_at DESC, id DESC
	  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("Query execution failed:\n%w", err)
	}
	defer rows.Close()

	readings := []Reading{}
	for rows.Next() {
		reading := Reading{}
		var uuidString string
		if err := rows.Scan(
			&uuidString,
			&reading.Device,
			&reading.SoilMoisture,
			&reading.Temperature,
			&reading.AirHumidity,
			&reading.Brightness,
			&reading.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("Row scanning failed:\n%w", err)
		}
		reading.Uuid = uuid.MustParse(uuidString)
		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Error iterating rows:\n%w", err)
	}

	return readings, nil
}

func scanReading(row *sql.Row) (*Reading, error) {
	reading := Reading{}
	var uuidString string
	if err := row.Scan(
		&uuidString,
		&reading.Device,
		&reading.SoilMoisture,
		&reading.Temperature,
		&reading.AirHumidity,
		&reading.Brightness,
		&reading.RecordedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("Failed to read reading:\n%w", err)
	}
	reading.Uuid = uuid.MustParse(uuidString)
	return &reading, nil
}
