package controller

import (
	"strconv"
	"strings"
)

// parseOptionalFloat returns nil for an empty field and an error for a
// non-numeric one.
func parseOptionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
