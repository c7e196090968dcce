// Package forecast maps humidity to the rain-chance percentage shown to
// users. The bands are a fixed heuristic carried over for compatibility,
// not a predictive model.
package forecast

// RainChance buckets relative humidity into a percentage. Callers that have
// no reading at all report 0 without calling this.
func RainChance(humidity float64) int {
	switch {
	case humidity > 80:
		return 75
	case humidity > 60:
		return 45
	case humidity > 40:
		return 20
	default:
		return 5
	}
}
