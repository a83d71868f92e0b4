package raytrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReductions(t *testing.T) {
	rows := [][]float64{{1, 1, 1}, {0, 0, 0}, {2, 2, 2}}

	lux, err := Illuminance(rows)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{179, 0, 358}, lux, 1e-9)

	df, err := DaylightFactor(rows)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.79, 0, 3.58}, df, 1e-9)

	irr, err := Irradiance(rows)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.999, 0, 1.998}, irr, 1e-9)

	_, err = Illuminance([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 8, 5})
	assert.Equal(t, Summary{Min: 2, Max: 8, Mean: 5}, s)
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestDaylightFactorScale(t *testing.T) {
	// 0.265*1 + 0.67*2 + 0.065*4 = 1.865 W/m2 -> 333.835 lux over a 10000 lux sky.
	rows := [][]float64{{1, 2, 4}, {2, 2, 2}}

	df, err := DaylightFactor(rows)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3.33835, 3.58}, df, 1e-9)

	lux, err := Illuminance(rows)
	require.NoError(t, err)
	for i := range rows {
		assert.InDelta(t, lux[i]*100/10000, df[i], 1e-9, "row %d", i)
	}
}
