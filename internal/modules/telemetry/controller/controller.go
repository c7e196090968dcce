package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authtypes "rainwatch-server/internal/modules/auth/types"
	"rainwatch-server/internal/modules/telemetry/repository"
	"rainwatch-server/internal/modules/telemetry/service"
)

// SessionResolver resolves the signed-in user from a request, nil when the
// request carries no valid session.
type SessionResolver interface {
	Resolve(req *http.Request) (*authtypes.User, error)
}

type TelemetryController interface {
	RegisterRoutes(r chi.Router)
}

type telemetryControllerImpl struct {
	sessions SessionResolver
	devices  repository.DeviceRepository
	readings repository.ReadingRepository
	ingest   service.IngestService
}

func NewTelemetryController(
	sessions SessionResolver,
	devices repository.DeviceRepository,
	readings repository.ReadingRepository,
	ingest service.IngestService,
) TelemetryController {
	return &telemetryControllerImpl{
		sessions: sessions,
		devices:  devices,
		readings: readings,
		ingest:   ingest,
	}
}

func (c *telemetryControllerImpl) RegisterRoutes(r chi.Router) {
	r.Get("/", c.handleIndex)
	r.Get("/account", c.handleAccount)
	r.Post("/account/register-device", c.handleRegisterDevice)
	r.Get("/readings", c.handleReadings)

	r.Post("/api/sensor-data", c.handleSensorData)
	r.Get("/api/devices", c.handleListDevices)
	r.Get("/api/devices/{id}/latest", c.handleLatestReading)
}
