package service

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"rainwatch-server/internal/modules/telemetry/types"
)

type mockDevices struct {
	devices map[string]*types.Device
	err     error
}

func (m *mockDevices) GetByCode(code string) (*types.Device, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.devices[code], nil
}

func (m *mockDevices) GetByID(id int64) (*types.Device, error) { return nil, nil }

func (m *mockDevices) ListWithCoordinates() ([]types.Device, error) { return nil, nil }

func (m *mockDevices) ListByOwner(ownerID int64) ([]types.Device, error) { return nil, nil }

func (m *mockDevices) Register(code, name string, lat, lon *float64, ownerID int64) (*types.Device, error) {
	return nil, nil
}

type mockReadings struct {
	appended []types.Reading
	err      error
}

func (m *mockReadings) Append(deviceID int64, temperature, humidity float64, pressure *float64, ts time.Time) (*types.Reading, error) {
	if m.err != nil {
		return nil, m.err
	}
	r := types.Reading{
		ID:          int64(len(m.appended) + 1),
		DeviceID:    deviceID,
		Time:        time.Now().UTC(),
		Temperature: temperature,
		Humidity:    humidity,
		Pressure:    pressure,
	}
	m.appended = append(m.appended, r)
	return &r, nil
}

func (m *mockReadings) LatestForDevice(deviceID int64) (*types.Reading, error) { return nil, nil }

func (m *mockReadings) ListForDevice(deviceID int64, limit int) ([]types.Reading, error) {
	return nil, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(f float64) *float64 { return &f }

func TestIngest_storesReading(t *testing.T) {
	devices := &mockDevices{devices: map[string]*types.Device{
		"DEV001": {ID: 7, Code: "DEV001", Name: "Station"},
	}}
	readings := &mockReadings{}
	svc := NewIngestService(devices, readings, discardLogger())

	got, err := svc.Ingest("dev001", Payload{
		Temperature: ptr(21.5),
		Humidity:    ptr(63),
		Pressure:    ptr(1012.3),
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got.DeviceID != 7 {
		t.Errorf("DeviceID = %d; want 7", got.DeviceID)
	}
	if len(readings.appended) != 1 {
		t.Fatalf("appended %d readings; want 1", len(readings.appended))
	}
	stored := readings.appended[0]
	if stored.Temperature != 21.5 || stored.Humidity != 63 {
		t.Errorf("stored = %+v; want temperature 21.5, humidity 63", stored)
	}
	if stored.Pressure == nil || *stored.Pressure != 1012.3 {
		t.Errorf("stored pressure = %v; want 1012.3", stored.Pressure)
	}
}

func TestIngest_missingDeviceCode(t *testing.T) {
	svc := NewIngestService(&mockDevices{}, &mockReadings{}, discardLogger())

	for _, code := range []string{"", "   "} {
		_, err := svc.Ingest(code, Payload{Temperature: ptr(20), Humidity: ptr(50)})
		if !errors.Is(err, ErrMissingDeviceCode) {
			t.Errorf("Ingest(%q) = %v; want ErrMissingDeviceCode", code, err)
		}
	}
}

func TestIngest_unknownDevice(t *testing.T) {
	svc := NewIngestService(&mockDevices{}, &mockReadings{}, discardLogger())

	_, err := svc.Ingest("GHOST1", Payload{Temperature: ptr(20), Humidity: ptr(50)})
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Ingest = %v; want ErrDeviceNotFound", err)
	}
}

func TestIngest_missingRequiredFields(t *testing.T) {
	devices := &mockDevices{devices: map[string]*types.Device{
		"DEV001": {ID: 1, Code: "DEV001"},
	}}

	tests := []struct {
		name    string
		payload Payload
	}{
		{"no temperature", Payload{Humidity: ptr(50)}},
		{"no humidity", Payload{Temperature: ptr(20)}},
		{"empty payload", Payload{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readings := &mockReadings{}
			svc := NewIngestService(devices, readings, discardLogger())
			_, err := svc.Ingest("DEV001", tt.payload)
			if !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("Ingest = %v; want ErrInvalidPayload", err)
			}
			if len(readings.appended) != 0 {
				t.Errorf("appended %d readings; want 0", len(readings.appended))
			}
		})
	}
}

func TestIngest_storageError(t *testing.T) {
	devices := &mockDevices{devices: map[string]*types.Device{
		"DEV001": {ID: 1, Code: "DEV001"},
	}}
	readings := &mockReadings{err: errors.New("disk full")}
	svc := NewIngestService(devices, readings, discardLogger())

	_, err := svc.Ingest("DEV001", Payload{Temperature: ptr(20), Humidity: ptr(50)})
	if err == nil {
		t.Fatal("Ingest = nil error; want storage error")
	}
	if errors.Is(err, ErrInvalidPayload) || errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("storage error mapped to client sentinel: %v", err)
	}
}

func TestIngest_lookupError(t *testing.T) {
	devices := &mockDevices{err: errors.New("db gone")}
	svc := NewIngestService(devices, &mockReadings{}, discardLogger())

	_, err := svc.Ingest("DEV001", Payload{Temperature: ptr(20), Humidity: ptr(50)})
	if err == nil {
		t.Fatal("Ingest = nil error; want lookup error")
	}
	if errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("lookup failure mapped to ErrDeviceNotFound: %v", err)
	}
}
