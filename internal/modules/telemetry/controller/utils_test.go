package controller

import "testing"

func TestParseOptionalFloat(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *float64
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"whitespace only", "   ", nil, false},
		{"integer", "51", ptr(51), false},
		{"decimal", "-0.1278", ptr(-0.1278), false},
		{"padded", " 35.6895 ", ptr(35.6895), false},
		{"garbage", "north", nil, true},
		{"trailing unit", "51.5N", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOptionalFloat(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v; wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("got %v; want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("got %v; want %v", *got, *tt.want)
			}
		})
	}
}
