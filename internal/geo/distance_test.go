package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_KnownPairs(t *testing.T) {
	tests := map[string]struct {
		latA, lngA, latB, lngB float64
		expected               float64
		delta                  float64
	}{
		"same point": {
			latA: -23.55, lngA: -46.63, latB: -23.55, lngB: -46.63,
			expected: 0, delta: 0,
		},
		"one degree of latitude": {
			latA: 0, lngA: 0, latB: 1, lngB: 0,
			expected: 111.19, delta: 0.01,
		},
		"sao paulo to rio de janeiro": {
			latA: -23.5505, lngA: -46.6333, latB: -22.9068, lngB: -43.1729,
			expected: 360.75, delta: 0.05,
		},
		"antipodal": {
			latA: 0, lngA: 0, latB: 0, lngB: 180,
			expected: math.Pi * earthRadiusKm, delta: 0.001,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Distance(tc.latA, tc.lngA, tc.latB, tc.lngB)
			assert.InDelta(t, tc.expected, got, tc.delta)
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	points := [][2]float64{
		{-23.5505, -46.6333},
		{-23.4, -46.5},
		{40.7128, -74.0060},
		{51.5074, -0.1278},
		{-33.8688, 151.2093},
		{89.9, 179.9},
	}

	for _, a := range points {
		for _, b := range points {
			ab := Distance(a[0], a[1], b[0], b[1])
			ba := Distance(b[0], b[1], a[0], a[1])
			assert.InDelta(t, ab, ba, 1e-9, "distance(%v,%v)", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
		}
	}
}

func TestDistance_OutOfRangeStillNumeric(t *testing.T) {
	got := Distance(120, 0, 0, 0)
	assert.False(t, math.IsNaN(got))
	assert.GreaterOrEqual(t, got, 0.0)
}

func TestEstimatedMinutes(t *testing.T) {
	assert.InDelta(t, 36.0, EstimatedMinutes(30), 1e-9)
	assert.InDelta(t, 60.0, EstimatedMinutes(50), 1e-9)
	assert.Equal(t, 0.0, EstimatedMinutes(0))
}

func TestValidateCoordinates(t *testing.T) {
	valid := [][2]float64{{0, 0}, {90, 180}, {-90, -180}, {-23.55, -46.63}}
	for _, c := range valid {
		if err := ValidateCoordinates(c[0], c[1]); err != nil {
			t.Errorf("expected %v to be valid, got %v", c, err)
		}
	}

	invalid := [][2]float64{{90.1, 0}, {-91, 0}, {0, 180.5}, {0, -181}, {math.NaN(), 0}, {0, math.NaN()}}
	for _, c := range invalid {
		err := ValidateCoordinates(c[0], c[1])
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("expected ErrInvalidCoordinates for %v, got %v", c, err)
		}
	}
}
