package telemetry

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"rainwatch-server/internal/modules/telemetry/controller"
	"rainwatch-server/internal/modules/telemetry/repository"
	"rainwatch-server/internal/modules/telemetry/service"
	"rainwatch-server/internal/mqtt"
)

// RegisterFeature wires the telemetry stores, ingestion service and routes.
// subscriber may be nil when no MQTT broker is configured.
func RegisterFeature(r chi.Router, db *sql.DB, sessions controller.SessionResolver, subscriber mqtt.MQTTSubscriber, logger *slog.Logger) {
	devices := repository.NewDeviceRepository(db)
	readings := repository.NewReadingRepository(db)
	ingest := service.NewIngestService(devices, readings, logger)

	if subscriber != nil {
		service.RegisterMQTTHandler(subscriber, ingest, logger)
	}

	telemetryController := controller.NewTelemetryController(sessions, devices, readings, ingest)
	telemetryController.RegisterRoutes(r)
}
