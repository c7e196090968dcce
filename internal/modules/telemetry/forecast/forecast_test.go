package forecast

import "testing"

func TestRainChance(t *testing.T) {
	tests := []struct {
		humidity float64
		want     int
	}{
		{0, 5},
		{40, 5},
		{40.1, 20},
		{55, 20},
		{60, 20},
		{60.1, 45},
		{75, 45},
		{80, 45},
		{80.1, 75},
		{95, 75},
		{100, 75},
	}

	for _, tt := range tests {
		if got := RainChance(tt.humidity); got != tt.want {
			t.Errorf("RainChance(%v) = %d; want %d", tt.humidity, got, tt.want)
		}
	}
}
