// Package seed fills an empty database with demo users, devices and readings
// for local development.
package seed

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type seedDevice struct {
	code      string
	name      string
	latitude  float64
	longitude float64
	owner     string
}

var seedDevices = []seedDevice{
	{"DEV001", "London Weather Station", 51.5074, -0.1278, "test"},
	{"DEV002", "New York Weather Station", 40.7128, -74.0060, "test"},
	{"DEV003", "Tokyo Weather Station", 35.6895, 139.6917, "test2"},
	{"DEV004", "Chennai Station", 12.896, 80.224, "test"},
}

// Run inserts demo data. A database that already has users is left untouched.
func Run(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	userIDs := make(map[string]int64)
	for _, username := range []string{"test", "test2"} {
		hash, err := bcrypt.GenerateFromPassword([]byte(username), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", username, err)
		}
		res, err := db.Exec(
			`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
			username, string(hash),
		)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", username, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("user id for %s: %w", username, err)
		}
		userIDs[username] = id
	}

	deviceIDs := make(map[string]int64)
	for _, dev := range seedDevices {
		res, err := db.Exec(
			`INSERT INTO devices (device_code, name, latitude, longitude, user_id) VALUES (?, ?, ?, ?, ?)`,
			dev.code, dev.name, dev.latitude, dev.longitude, userIDs[dev.owner],
		)
		if err != nil {
			return fmt.Errorf("insert device %s: %w", dev.code, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("device id for %s: %w", dev.code, err)
		}
		deviceIDs[dev.code] = id
	}

	now := time.Now().UTC()
	insertReading := func(deviceCode string, hoursAgo int, temperature, humidity, pressure float64) error {
		ts := now.Add(-time.Duration(hoursAgo) * time.Hour)
		_, err := db.Exec(
			`INSERT INTO readings (device_id, ts, temperature_c, humidity_pct, pressure_hpa) VALUES (?, ?, ?, ?, ?)`,
			deviceIDs[deviceCode], ts.Format("2006-01-02T15:04:05.000000000Z07:00"), temperature, humidity, pressure,
		)
		if err != nil {
			return fmt.Errorf("insert reading for %s: %w", deviceCode, err)
		}
		return nil
	}

	for i := 0; i < 10; i++ {
		if err := insertReading("DEV001", i, 20+float64(i)*0.5, 60-float64(i)*1.5, 1010+float64(i)*0.2); err != nil {
			return err
		}
	}
	for i := 0; i < 5; i++ {
		if err := insertReading("DEV002", i, 25-float64(i)*0.8, 70+float64(i)*1.2, 1005+float64(i)*0.5); err != nil {
			return err
		}
	}

	return nil
}
