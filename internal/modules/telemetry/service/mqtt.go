package service

import (
	"log/slog"

	"rainwatch-server/internal/mqtt"
)

// RegisterMQTTHandler routes broker telemetry through the same ingestion
// path as the HTTP API.
func RegisterMQTTHandler(subscriber mqtt.MQTTSubscriber, ingest IngestService, logger *slog.Logger) {
	subscriber.SetMessageHandler(func(telemetry mqtt.Telemetry) error {
		logger.Debug("processing telemetry message",
			"device_code", telemetry.DeviceCode,
		)

		_, err := ingest.Ingest(telemetry.DeviceCode, Payload{
			Temperature: telemetry.Temperature,
			Humidity:    telemetry.Humidity,
			Pressure:    telemetry.Pressure,
		})
		if err != nil {
			logger.Error("failed to store telemetry",
				"device_code", telemetry.DeviceCode,
				"error", err,
			)
			return err
		}
		return nil
	})
}
