package controller

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"rainwatch-server/internal/modules/telemetry/forecast"
	"rainwatch-server/internal/modules/telemetry/service"
	"rainwatch-server/internal/utils"
)

// deviceCodeHeader identifies the sending device on the ingestion endpoint.
const deviceCodeHeader = "deviceCode"

type deviceInfo struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type latestReadingResponse struct {
	DeviceName  string     `json:"device_name"`
	Temperature *float64   `json:"temperature"`
	Humidity    *float64   `json:"humidity"`
	Pressure    *float64   `json:"pressure"`
	Timestamp   *time.Time `json:"timestamp"`
	RainChance  int        `json:"rain_chance"`
}

func (c *telemetryControllerImpl) handleSensorData(w http.ResponseWriter, r *http.Request) {
	code := r.Header.Get(deviceCodeHeader)
	if code == "" {
		utils.WriteError(w, http.StatusBadRequest, "deviceCode header is required")
		return
	}

	var payload service.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reading, err := c.ingest.Ingest(code, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingDeviceCode), errors.Is(err, service.ErrInvalidPayload):
			utils.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDeviceNotFound):
			utils.WriteError(w, http.StatusNotFound, "device not found")
		default:
			slog.Error("sensor data ingestion failed", "device_code", code, "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to store reading")
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":    "Reading stored",
		"reading_id": reading.ID,
	})
}

func (c *telemetryControllerImpl) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := c.devices.ListWithCoordinates()
	if err != nil {
		slog.Error("device list failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to list devices")
		return
	}

	infos := make([]deviceInfo, 0, len(devices))
	for _, dev := range devices {
		// ListWithCoordinates only returns devices with both set.
		infos = append(infos, deviceInfo{
			ID:        dev.ID,
			Name:      dev.Name,
			Latitude:  *dev.Latitude,
			Longitude: *dev.Longitude,
		})
	}
	utils.WriteJSON(w, http.StatusOK, infos)
}

func (c *telemetryControllerImpl) handleLatestReading(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "device id must be an integer")
		return
	}

	device, err := c.devices.GetByID(id)
	if err != nil {
		slog.Error("device lookup failed", "device_id", id, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load device")
		return
	}
	if device == nil {
		utils.WriteError(w, http.StatusNotFound, "device not found")
		return
	}

	latest, err := c.readings.LatestForDevice(device.ID)
	if err != nil {
		slog.Error("latest reading lookup failed", "device_id", id, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load reading")
		return
	}

	resp := latestReadingResponse{DeviceName: device.Name}
	if latest != nil {
		ts := latest.Time
		resp.Temperature = &latest.Temperature
		resp.Humidity = &latest.Humidity
		resp.Pressure = latest.Pressure
		resp.Timestamp = &ts
		resp.RainChance = forecast.RainChance(latest.Humidity)
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}
