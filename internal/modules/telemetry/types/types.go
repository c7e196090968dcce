package types

import "time"

// Device is a registered weather-station unit. Code is stored upper-cased;
// lookups case-fold, so "dev001" and "DEV001" name the same device.
// Latitude and longitude are independent and optional; devices missing
// either are excluded from map listings.
type Device struct {
	ID        int64
	Code      string
	Name      string
	Latitude  *float64
	Longitude *float64
	OwnerID   int64
}

// Reading is a single immutable sensor sample.
type Reading struct {
	ID          int64
	DeviceID    int64
	Time        time.Time
	Temperature float64
	Humidity    float64
	Pressure    *float64
}
