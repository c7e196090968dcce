package repository

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"rainwatch-server/internal/modules/telemetry/types"
)

//go:embed sql/get-device-by-code.sql
var getDeviceByCodeSQL string

//go:embed sql/get-device-by-id.sql
var getDeviceByIDSQL string

//go:embed sql/list-devices-with-coordinates.sql
var listDevicesWithCoordinatesSQL string

//go:embed sql/list-devices-by-owner.sql
var listDevicesByOwnerSQL string

//go:embed sql/insert-device.sql
var insertDeviceSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-latest-reading.sql
var getLatestReadingSQL string

//go:embed sql/list-readings-by-device.sql
var listReadingsByDeviceSQL string

// ErrDuplicateDeviceCode is produced only by the UNIQUE constraint on
// devices.device_code; codes are canonicalized before insert, so the
// constraint is effectively case-insensitive.
var ErrDuplicateDeviceCode = errors.New("device code already registered")

type DeviceRepository interface {
	// GetByCode case-folds its argument before lookup. Returns nil when no
	// device matches.
	GetByCode(code string) (*types.Device, error)
	GetByID(id int64) (*types.Device, error)
	// ListWithCoordinates returns devices with both latitude and longitude
	// set, for the map listing.
	ListWithCoordinates() ([]types.Device, error)
	ListByOwner(ownerID int64) ([]types.Device, error)
	Register(code string, name string, lat *float64, lon *float64, ownerID int64) (*types.Device, error)
}

type ReadingRepository interface {
	// Append stores one reading; a zero ts defaults to the current time.
	Append(deviceID int64, temperature float64, humidity float64, pressure *float64, ts time.Time) (*types.Reading, error)
	// LatestForDevice returns the most recent reading by timestamp, nil when
	// none exists. Equal timestamps break arbitrarily.
	LatestForDevice(deviceID int64) (*types.Reading, error)
	ListForDevice(deviceID int64, limit int) ([]types.Reading, error)
}

// CanonicalCode is the stored form of a device code: trimmed, upper-cased.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type deviceRepositoryImpl struct {
	db *sql.DB
}

func NewDeviceRepository(db *sql.DB) DeviceRepository {
	return &deviceRepositoryImpl{db: db}
}

func (r *deviceRepositoryImpl) GetByCode(code string) (*types.Device, error) {
	return r.getDevice(getDeviceByCodeSQL, CanonicalCode(code))
}

func (r *deviceRepositoryImpl) GetByID(id int64) (*types.Device, error) {
	return r.getDevice(getDeviceByIDSQL, id)
}

func (r *deviceRepositoryImpl) getDevice(query string, arg any) (*types.Device, error) {
	var d types.Device
	err := r.db.QueryRow(query, arg).Scan(&d.ID, &d.Code, &d.Name, &d.Latitude, &d.Longitude, &d.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deviceRepositoryImpl) ListWithCoordinates() ([]types.Device, error) {
	return r.listDevices(listDevicesWithCoordinatesSQL)
}

func (r *deviceRepositoryImpl) ListByOwner(ownerID int64) ([]types.Device, error) {
	return r.listDevices(listDevicesByOwnerSQL, ownerID)
}

func (r *deviceRepositoryImpl) listDevices(query string, args ...any) ([]types.Device, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close device rows", "error", err)
		}
	}()
	var out []types.Device
	for rows.Next() {
		var d types.Device
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.Latitude, &d.Longitude, &d.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *deviceRepositoryImpl) Register(code string, name string, lat *float64, lon *float64, ownerID int64) (*types.Device, error) {
	canonical := CanonicalCode(code)
	res, err := r.db.Exec(insertDeviceSQL, canonical, name, lat, lon, ownerID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateDeviceCode
		}
		return nil, fmt.Errorf("insert device: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert device id: %w", err)
	}
	return &types.Device{
		ID:        id,
		Code:      canonical,
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		OwnerID:   ownerID,
	}, nil
}

type readingRepositoryImpl struct {
	db *sql.DB
}

func NewReadingRepository(db *sql.DB) ReadingRepository {
	return &readingRepositoryImpl{db: db}
}

// readingTimeFormat pads the fractional second to full width so the TEXT
// column sorts lexicographically in chronological order. RFC3339Nano trims
// trailing zeros, which would sort ...00.5Z after ...00.52Z.
const readingTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func (r *readingRepositoryImpl) Append(deviceID int64, temperature float64, humidity float64, pressure *float64, ts time.Time) (*types.Reading, error) {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	res, err := r.db.Exec(insertReadingSQL, deviceID, ts.UTC().Format(readingTimeFormat), temperature, humidity, pressure)
	if err != nil {
		return nil, fmt.Errorf("insert reading: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert reading id: %w", err)
	}
	return &types.Reading{
		ID:          id,
		DeviceID:    deviceID,
		Time:        ts.UTC(),
		Temperature: temperature,
		Humidity:    humidity,
		Pressure:    pressure,
	}, nil
}

func (r *readingRepositoryImpl) LatestForDevice(deviceID int64) (*types.Reading, error) {
	rows, err := r.db.Query(getLatestReadingSQL, deviceID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close latest reading rows", "error", err)
		}
	}()
	readings, err := scanReadings(rows)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return &readings[0], nil
}

func (r *readingRepositoryImpl) ListForDevice(deviceID int64, limit int) ([]types.Reading, error) {
	rows, err := r.db.Query(listReadingsByDeviceSQL, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()
	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]types.Reading, error) {
	var out []types.Reading
	for rows.Next() {
		var rec types.Reading
		var ts string
		if err := rows.Scan(&rec.ID, &rec.DeviceID, &ts, &rec.Temperature, &rec.Humidity, &rec.Pressure); err != nil {
			return nil, err
		}
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		rec.Time = t
		out = append(out, rec)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint && serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		var err2 error
		t, err2 = time.Parse(time.RFC3339, ts)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: RFC3339Nano: %w; RFC3339: %w", ts, err, err2)
		}
	}
	return t, nil
}
