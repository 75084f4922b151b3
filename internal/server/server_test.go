package server

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantlink/internal/sensor"
)

type fakeStore struct {
	readings []sensor.Reading
	inserted []sensor.Reading
}

func (s *fakeStore) Insert(r *sensor.Reading) error {
	s.inserted = append(s.inserted, *r)
	return nil
}

func (s *fakeStore) Latest() (*sensor.Reading, error) {
	if len(s.readings) == 0 {
		return nil, nil
	}
	r := s.readings[0]
	return &r, nil
}

func (s *fakeStore) List(limit int) ([]sensor.Reading, error) {
	if limit > len(s.readings) {
		limit = len(s.readings)
	}
	return s.readings[:limit], nil
}

type fakeQR struct{}

func (fakeQR) Fetch(ctx context.Context, text string, size int) (image.Image, error) {
	// a white image with a black square, enough to survive thresholding
	i := image.NewGray(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			if x >= size/4 && x < size/2 && y >= size/4 && y < size/2 {
				i.SetGray(x, y, color.Gray{Y: 0})
			} else {
				i.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return i, nil
}

type fakeConnection struct {
	writes [][]byte
}

func (c *fakeConnection) Write(data []byte) error {
	c.writes = append(c.writes, data)
	return nil
}

func (c *fakeConnection) Close() error { return nil }

func aTestServer(store *fakeStore) *Server {
	return &Server{
		Logger: slog.Default(),
		Store:  store,
		QR:     fakeQR{},
	}
}

func TestCreateReading(t *testing.T) {
	store := &fakeStore{}
	s := aTestServer(store)
	var published []sensor.Reading
	s.Publish = func(r sensor.Reading) { published = append(published, r) }

	body := `{"device":"balcony","soil_moisture":41.5,"temperature":22.1,"humidity":58,"brightness":77}`
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest("POST", "/readings", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "balcony", store.inserted[0].Device)
	assert.Equal(t, 41.5, store.inserted[0].SoilMoisture)
	assert.Len(t, published, 1)
}

func TestCreateReadingValidation(t *testing.T) {
	s := aTestServer(&fakeStore{})

	for name, body := range map[string]string{
		"bad json":       `{"device":`,
		"missing device": `{"soil_moisture":10}`,
		"moisture range": `{"device":"x","soil_moisture":140}`,
		"humidity range": `{"device":"x","humidity":-2}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.Router().ServeHTTP(w, httptest.NewRequest("POST", "/readings", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLatestReading(t *testing.T) {
	store := &fakeStore{}
	s := aTestServer(store)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest("GET", "/readings/latest", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	store.readings = []sensor.Reading{{Device: "balcony", SoilMoisture: 33}}
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest("GET", "/readings/latest", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"soil_moisture":33`)
}

func TestListReadings(t *testing.T) {
	store := &fakeStore{readings: []sensor.Reading{
		{Device: "balcony"}, {Device: "kitchen"}, {Device: "attic"},
	}}
	s := aTestServer(store)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest("GET", "/readings?limit=2", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, strings.Count(w.Body.String(), `"device"`))

	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest("GET", "/readings?limit=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisplayQRWithoutDevice(t *testing.T) {
	s := aTestServer(&fakeStore{})

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest("POST", "/display/qr", strings.NewReader(`{"text":"hi"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDisplayQRWritesFrames(t *testing.T) {
	s := aTestServer(&fakeStore{})
	conn := &fakeConnection{}
	s.Display = conn

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest("POST", "/display/qr", strings.NewReader(`{"text":"https://example.org/p/1"}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, conn.writes)
	// 64x64 bitmap: one header and one data slice
	assert.Len(t, conn.writes, 2)
	assert.Len(t, conn.writes[1], 8*64)
}

func TestQRHeaderEndpoint(t *testing.T) {
	s := aTestServer(&fakeStore{})

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest("GET", "/display/qr.h?text=hello&name=plant_qr", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "#define plant_qr_width 64")
	assert.Contains(t, body, "#define plant_qr_height 64")
	assert.Contains(t, body, "static const unsigned char plant_qr[] = {")

	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest("GET", "/display/qr.h", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
