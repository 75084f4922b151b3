// Package server exposes the bridge over HTTP: reading ingest for WiFi
// devices, reading queries for dashboards, and the QR-to-display pipeline.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"plantlink/bitmap"
	"plantlink/internal/display"
	"plantlink/internal/render"
	"plantlink/internal/sensor"
)

// The OLED is 128x64; a square QR code can only ever be panel-height wide.
const qrDisplaySize = 64

type ReadingStore interface {
	Insert(reading *sensor.Reading) error
	Latest() (*sensor.Reading, error)
	List(limit int) ([]sensor.Reading, error)
}

type QRFetcher interface {
	Fetch(ctx context.Context, text string, size int) (image.Image, error)
}

type Server struct {
	Logger *slog.Logger
	Store  ReadingStore
	QR     QRFetcher
	// Display is nil when no device is attached; QR pushes then fail with 503.
	Display display.Connection
	// Publish, when set, mirrors ingested readings to MQTT.
	Publish func(reading sensor.Reading)
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.HandleFunc("/readings", s.handleCreateReading).Methods("POST")
	r.HandleFunc("/readings", s.handleListReadings).Methods("GET")
	r.HandleFunc("/readings/latest", s.handleLatestReading).Methods("GET")
	r.HandleFunc("/display/qr", s.handleDisplayQR).Methods("POST")
	r.HandleFunc("/display/qr.h", s.handleQRHeader).Methods("GET")
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

type readingRequest struct {
	Device       string  `json:"device"`
	SoilMoisture float64 `json:"soil_moisture"`
	Temperature  float64 `json:"temperature"`
	AirHumidity  float64 `json:"humidity"`
	Brightness   float64 `json:"brightness"`
}

func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Device == "" {
		http.Error(w, "device is required", http.StatusBadRequest)
		return
	}
	if req.SoilMoisture < 0 || req.SoilMoisture > 100 {
		http.Error(w, "soil_moisture must be 0..100", http.StatusBadRequest)
		return
	}
	if req.AirHumidity < 0 || req.AirHumidity > 100 {
		http.Error(w, "humidity must be 0..100", http.StatusBadRequest)
		return
	}

	reading := sensor.Reading{
		Device:       req.Device,
		SoilMoisture: req.SoilMoisture,
		Temperature:  req.Temperature,
		AirHumidity:  req.AirHumidity,
		Brightness:   req.Brightness,
	}
	if err := s.Store.Insert(&reading); err != nil {
		s.Logger.Error("Couldn't store reading", "err", err)
		http.Error(w, "storage failure", http.StatusInternalServerError)
		return
	}
	if s.Publish != nil {
		s.Publish(reading)
	}

	writeJSON(w, http.StatusCreated, reading)
}

func (s *Server) handleLatestReading(w http.ResponseWriter, r *http.Request) {
	reading, err := s.Store.Latest()
	if err != nil {
		s.Logger.Error("Couldn't fetch latest reading", "err", err)
		http.Error(w, "storage failure", http.StatusInternalServerError)
		return
	}
	if reading == nil {
		http.Error(w, "no readings yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		if n > 500 {
			n = 500
		}
		limit = n
	}

	readings, err := s.Store.List(limit)
	if err != nil {
		s.Logger.Error("Couldn't list readings", "err", err)
		http.Error(w, "storage failure", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

type displayQRRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleDisplayQR(w http.ResponseWriter, r *http.Request) {
	var req displayQRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if s.Display == nil {
		http.Error(w, "display not connected", http.StatusServiceUnavailable)
		return
	}

	b, err := s.packQR(r.Context(), req.Text)
	if err != nil {
		s.Logger.Error("Couldn't build QR bitmap", "err", err)
		http.Error(w, "QR rendering failed", http.StatusBadGateway)
		return
	}

	if err := display.WriteBitmap(s.Display, b); err != nil {
		s.Logger.Error("Couldn't write bitmap to display", "err", err)
		http.Error(w, "display write failed", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleQRHeader(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "qr_code"
	}

	b, err := s.packQR(r.Context(), text)
	if err != nil {
		s.Logger.Error("Couldn't build QR bitmap", "err", err)
		http.Error(w, "QR rendering failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := bitmap.WriteHeader(w, name, b, nil); err != nil {
		s.Logger.Error("Couldn't write header", "err", err)
	}
}

// packQR runs the whole pipeline: fetch the rendered code, binarize it at
// panel size, pack it. QR codes are already black and white, so a fixed
// threshold is used rather than dithering.
func (s *Server) packQR(ctx context.Context, text string) (*bitmap.PackedBitmap, error) {
	i, err := s.QR.Fetch(ctx, text, qrDisplaySize)
	if err != nil {
		return nil, err
	}

	grid, err := render.ToGrid(i, render.Options{TargetWidth: qrDisplaySize})
	if err != nil {
		return nil, err
	}
	return bitmap.Pack(grid, nil), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
