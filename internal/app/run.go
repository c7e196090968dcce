package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"rainwatch-server/internal/config"
	"rainwatch-server/internal/db"
	"rainwatch-server/internal/db/migrate"
	"rainwatch-server/internal/httpapi"
	"rainwatch-server/internal/modules/auth"
	authviews "rainwatch-server/internal/modules/auth/views"
	"rainwatch-server/internal/modules/telemetry"
	telemetryviews "rainwatch-server/internal/modules/telemetry/views"
	"rainwatch-server/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"authTokenTTL", cfg.AuthTokenTTL,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(dbConn); err != nil {
		return err
	}

	var ok int
	err = dbConn.QueryRow(`SELECT 1`).Scan(&ok)
	if err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	slog.Info("database connection successful")

	if err := authviews.LoadTemplates(); err != nil {
		return err
	}
	if err := telemetryviews.LoadTemplates(); err != nil {
		return err
	}

	router := httpapi.NewRouter(dbConn, cfg.StaticDir)
	sessions := auth.RegisterFeature(router, dbConn, cfg)

	// Set the MQTT handler before Connect so OnConnectHandler can subscribe
	// immediately. The broker may send queued messages right after CONNACK;
	// we must be subscribed before that to receive them.
	var subscriber *mqtt.Subscriber
	if cfg.MQTTBroker != "" {
		subscriber, err = mqtt.NewSubscriber(cfg, slog.Default())
		if err != nil {
			return err
		}
		telemetry.RegisterFeature(router, dbConn, sessions, subscriber, slog.Default())

		// Use a short timeout for initial MQTT connect so we don't block startup
		// when the broker is down (e.g. E2E).
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	} else {
		telemetry.RegisterFeature(router, dbConn, sessions, nil, slog.Default())
	}

	srv := httpapi.NewServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if subscriber != nil {
		slog.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
