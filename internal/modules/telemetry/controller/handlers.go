package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	authtypes "rainwatch-server/internal/modules/auth/types"
	"rainwatch-server/internal/modules/telemetry/forecast"
	"rainwatch-server/internal/modules/telemetry/repository"
	"rainwatch-server/internal/modules/telemetry/views"
	"rainwatch-server/internal/utils"
)

// readingsPageLimit caps how many readings show per device on the readings page.
const readingsPageLimit = 20

func (c *telemetryControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	user, err := c.sessions.Resolve(r)
	if err != nil {
		slog.Error("index: session resolution failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load page")
		return
	}
	data := views.IndexData{}
	if user != nil {
		data.Username = user.Username
	}
	c.renderIndex(w, data)
}

func (c *telemetryControllerImpl) handleAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := c.requireUser(w, r, "account")
	if !ok {
		return
	}
	c.renderAccountForUser(w, http.StatusOK, user, "")
}

func (c *telemetryControllerImpl) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	user, ok := c.requireUser(w, r, "register device")
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		c.renderAccountForUser(w, http.StatusBadRequest, user, "Invalid form submission")
		return
	}

	code := strings.TrimSpace(r.PostFormValue("device_code"))
	if code == "" {
		c.renderAccountForUser(w, http.StatusBadRequest, user, "Device code is required")
		return
	}
	name := strings.TrimSpace(r.PostFormValue("device_name"))
	if name == "" {
		name = "My Weather Station"
	}
	lat, err := parseOptionalFloat(r.PostFormValue("latitude"))
	if err != nil {
		c.renderAccountForUser(w, http.StatusBadRequest, user, "Latitude must be a number")
		return
	}
	lon, err := parseOptionalFloat(r.PostFormValue("longitude"))
	if err != nil {
		c.renderAccountForUser(w, http.StatusBadRequest, user, "Longitude must be a number")
		return
	}

	if _, err := c.devices.Register(code, name, lat, lon, user.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicateDeviceCode) {
			c.renderAccountForUser(w, http.StatusBadRequest, user, "Device code already registered.")
			return
		}
		slog.Error("register device failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to register device")
		return
	}

	utils.Redirect(w, r, "/account")
}

func (c *telemetryControllerImpl) handleReadings(w http.ResponseWriter, r *http.Request) {
	user, ok := c.requireUser(w, r, "readings")
	if !ok {
		return
	}

	devices, err := c.devices.ListByOwner(user.ID)
	if err != nil {
		slog.Error("readings: device list failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}

	data := views.ReadingsData{Username: user.Username}
	for _, dev := range devices {
		recent, err := c.readings.ListForDevice(dev.ID, readingsPageLimit)
		if err != nil {
			slog.Error("readings: reading list failed", "device_id", dev.ID, "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
			return
		}
		entry := views.DeviceReadings{Device: dev, Readings: recent}
		if len(recent) > 0 {
			entry.RainChance = forecast.RainChance(recent[0].Humidity)
		}
		data.Devices = append(data.Devices, entry)
	}

	var buf bytes.Buffer
	if err := views.RenderReadings(&buf, data); err != nil {
		slog.Error("readings template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// requireUser resolves the session and redirects to /login when absent.
// The bool reports whether the caller should continue.
func (c *telemetryControllerImpl) requireUser(w http.ResponseWriter, r *http.Request, what string) (*authtypes.User, bool) {
	user, err := c.sessions.Resolve(r)
	if err != nil {
		slog.Error("session resolution failed", "page", what, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load page")
		return nil, false
	}
	if user == nil {
		utils.Redirect(w, r, "/login")
		return nil, false
	}
	return user, true
}

func (c *telemetryControllerImpl) renderIndex(w http.ResponseWriter, data views.IndexData) {
	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, data); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (c *telemetryControllerImpl) renderAccountForUser(w http.ResponseWriter, status int, user *authtypes.User, errMsg string) {
	devices, err := c.devices.ListByOwner(user.ID)
	if err != nil {
		slog.Error("account: device list failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load page")
		return
	}
	var buf bytes.Buffer
	data := views.AccountData{Username: user.Username, Devices: devices, Error: errMsg}
	if err := views.RenderAccount(&buf, data); err != nil {
		slog.Error("account template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("write response failed", "error", err)
	}
}
