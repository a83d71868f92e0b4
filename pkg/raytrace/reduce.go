package raytrace

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Channel weights applied to RGB irradiance rows.
var (
	luminousWeights = []float64{0.265, 0.67, 0.065}
	radiantWeights  = []float64{0.333, 0.333, 0.333}
)

// LuminousEfficacy converts weighted irradiance to lux.
const LuminousEfficacy = 179.0

func weigh(rows [][]float64, w []float64, scale float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) < len(w) {
			return nil, fmt.Errorf("raytrace: row %d: %d values, want %d", i, len(row), len(w))
		}
		out[i] = floats.Dot(row[:len(w)], w) * scale
	}
	return out, nil
}

// Illuminance converts RGB irradiance rows to lux.
func Illuminance(rows [][]float64) ([]float64, error) {
	return weigh(rows, luminousWeights, LuminousEfficacy)
}

// DaylightFactor converts RGB irradiance rows under a 10000 lux overcast
// sky to a daylight factor in percent.
func DaylightFactor(rows [][]float64) ([]float64, error) {
	return weigh(rows, luminousWeights, LuminousEfficacy/100)
}

// Irradiance converts RGB irradiance rows to W/m2.
func Irradiance(rows [][]float64) ([]float64, error) {
	return weigh(rows, radiantWeights, 1)
}

// Summary holds the extremes and mean of a result set.
type Summary struct {
	Min, Max, Mean float64
}

// Summarize reduces vals. An empty set summarizes to zero.
func Summarize(vals []float64) Summary {
	if len(vals) == 0 {
		return Summary{}
	}
	return Summary{Min: floats.Min(vals), Max: floats.Max(vals), Mean: stat.Mean(vals, nil)}
}
