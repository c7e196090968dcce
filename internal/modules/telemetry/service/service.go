package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rainwatch-server/internal/modules/telemetry/repository"
	"rainwatch-server/internal/modules/telemetry/types"
)

var (
	ErrMissingDeviceCode = errors.New("missing device code")
	ErrDeviceNotFound    = errors.New("device not found")
	ErrInvalidPayload    = errors.New("invalid payload")
)

// Payload is a single telemetry submission. Temperature and humidity are
// required, pressure is optional. Pointer fields distinguish absent values
// from zero.
type Payload struct {
	Temperature *float64 `json:"temperature_c"`
	Humidity    *float64 `json:"humidity"`
	Pressure    *float64 `json:"pressure"`
}

type IngestService interface {
	Ingest(deviceCode string, payload Payload) (*types.Reading, error)
}

type ingestServiceImpl struct {
	devices  repository.DeviceRepository
	readings repository.ReadingRepository
	logger   *slog.Logger
}

func NewIngestService(
	devices repository.DeviceRepository,
	readings repository.ReadingRepository,
	logger *slog.Logger,
) IngestService {
	return &ingestServiceImpl{devices: devices, readings: readings, logger: logger}
}

func (s *ingestServiceImpl) Ingest(deviceCode string, payload Payload) (*types.Reading, error) {
	code := repository.CanonicalCode(deviceCode)
	if code == "" {
		return nil, ErrMissingDeviceCode
	}
	device, err := s.devices.GetByCode(code)
	if err != nil {
		return nil, fmt.Errorf("lookup device: %w", err)
	}
	if device == nil {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, code)
	}
	if payload.Temperature == nil || payload.Humidity == nil {
		return nil, fmt.Errorf("%w: temperature_c and humidity are required", ErrInvalidPayload)
	}
	reading, err := s.readings.Append(
		device.ID,
		*payload.Temperature,
		*payload.Humidity,
		payload.Pressure,
		time.Time{},
	)
	if err != nil {
		return nil, fmt.Errorf("store reading: %w", err)
	}
	s.logger.Debug("reading stored",
		slog.String("device_code", device.Code),
		slog.Int64("reading_id", reading.ID),
	)
	return reading, nil
}
