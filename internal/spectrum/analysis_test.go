package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateBaseline_SinglePoint(t *testing.T) {
	tests := []struct {
		name       string
		spec       Spectrum
		value      float64
		wavelength float64
	}{
		{
			name:       "exact match",
			spec:       Spectrum{{700, 0.8}, {850, 0.123}, {900, 0.05}},
			value:      0.123,
			wavelength: 850,
		},
		{
			name:       "nearest below",
			spec:       Spectrum{{700, 0.8}, {849, 0.2}, {852, 0.3}},
			value:      0.2,
			wavelength: 849,
		},
		{
			name:       "tie goes to the first in ascending order",
			spec:       Spectrum{{845, 0.11}, {855, 0.22}},
			value:      0.11,
			wavelength: 845,
		},
		{
			name:       "duplicate exact match takes the first",
			spec:       Spectrum{{850, 0.3}, {850, 0.4}},
			value:      0.3,
			wavelength: 850,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := EstimateBaseline(tt.spec, BaselineSinglePoint)
			require.NoError(t, err)
			assert.Equal(t, tt.value, b.Value)
			require.NotNil(t, b.Wavelength)
			assert.Equal(t, tt.wavelength, *b.Wavelength)
			assert.Nil(t, b.Window)
		})
	}
}

func TestCorrect_ForcesReferenceToZero(t *testing.T) {
	spec := Spectrum{{700, 0.3}, {849.5, 0.1 + 0.2}, {900, 1.0}}

	b, err := EstimateBaseline(spec, BaselineSinglePoint)
	require.NoError(t, err)

	corrected := Correct(spec, b)
	require.Len(t, corrected, 3)

	for i, s := range corrected {
		assert.Equal(t, spec[i], s.Sample)
		assert.InDelta(t, spec[i].Intensity-b.Value, s.Corrected, 1e-6)
	}
	assert.Equal(t, 0.0, corrected[1].Corrected)
	assert.Equal(t, 0.7, corrected[2].Corrected)
}

func TestCorrect_HugeValuesStayFinite(t *testing.T) {
	spec := Spectrum{{700, 1e303}, {850, 0.1}}

	b, err := EstimateBaseline(spec, BaselineSinglePoint)
	require.NoError(t, err)

	corrected := Correct(spec, b)
	assert.False(t, math.IsInf(corrected[0].Corrected, 0))
	assert.InDelta(t, 1e303, corrected[0].Corrected, 1e290)

	peak, ok := FindPeak(corrected)
	require.True(t, ok)
	assert.False(t, math.IsInf(peak.Intensity, 0))
}

func TestRound6(t *testing.T) {
	assert.Equal(t, 0.123457, round6(0.1234567))
	assert.Equal(t, 1e303, round6(1e303))
	assert.Equal(t, -math.MaxFloat64, round6(-math.MaxFloat64))
}

func TestCorrectedSpectrum_MaxWavelength(t *testing.T) {
	assert.Equal(t, 0.0, CorrectedSpectrum(nil).MaxWavelength())

	corrected := Correct(Spectrum{{250, 0.9}, {700, 0.8}, {850, 0.2}}, Baseline{Value: 0.2})
	assert.Equal(t, 850.0, corrected.MaxWavelength())
}

func TestEstimateBaseline_WindowMean(t *testing.T) {
	spec := Spectrum{{730, 9}, {740, 0.1}, {750, 0.2}, {760, 0.3}, {770, 9}}

	b, err := EstimateBaseline(spec, BaselineWindowMean)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, b.Value, tolerance)
	assert.Equal(t, &Band{Lower: 740, Upper: 760}, b.Window)
	assert.Nil(t, b.Wavelength)

	_, err = EstimateBaseline(Spectrum{{700, 0.1}, {800, 0.2}}, BaselineWindowMean)
	var rErr *DataRangeError
	require.True(t, errors.As(err, &rErr))
	assert.Equal(t, "baseline", rErr.Window)
	assert.Equal(t, "no samples in the baseline window (740-760 nm)", rErr.Error())
}

func TestEstimateBaseline_UnknownMethod(t *testing.T) {
	_, err := EstimateBaseline(Spectrum{{700, 0.1}}, "median")
	assert.Error(t, err)
}

func TestFindPeak(t *testing.T) {
	spec := CorrectedSpectrum{
		{Sample: Sample{640, 0}, Corrected: 5},
		{Sample: Sample{650, 0}, Corrected: 0.2},
		{Sample: Sample{680, 0}, Corrected: 0.6},
		{Sample: Sample{690, 0}, Corrected: 0.6},
		{Sample: Sample{750, 0}, Corrected: 0.5},
		{Sample: Sample{760, 0}, Corrected: 7},
	}

	peak, ok := FindPeak(spec)
	require.True(t, ok)
	assert.Equal(t, Peak{Wavelength: 680, Intensity: 0.6}, peak)

	again, _ := FindPeak(spec)
	assert.Equal(t, peak, again)

	_, ok = FindPeak(spec[:1])
	assert.False(t, ok)
}

func TestFindPeak_NegativeValues(t *testing.T) {
	spec := CorrectedSpectrum{
		{Sample: Sample{660, 0}, Corrected: -0.4},
		{Sample: Sample{670, 0}, Corrected: -0.1},
	}

	peak, ok := FindPeak(spec)
	require.True(t, ok)
	assert.Equal(t, 670.0, peak.Wavelength)
}

func TestNewODWindow(t *testing.T) {
	tests := []struct {
		peak      float64
		low, high float64
	}{
		{652, 650, 660},
		{655, 650, 660},
		{656, 660, 670},
		{700, 700, 710},
		{681.3, 680, 690},
	}

	for _, tt := range tests {
		w := NewODWindow(tt.peak)
		assert.Equal(t, ODWindow{Low: tt.low, High: tt.high}, w, "peak %g", tt.peak)
	}
}

func TestEstimateOD(t *testing.T) {
	spec := CorrectedSpectrum{
		{Sample: Sample{645, 0.1}, Corrected: 0.0},
		{Sample: Sample{650, 0.4}, Corrected: 0.3},
		{Sample: Sample{655, 0.6}, Corrected: 0.5},
		{Sample: Sample{660, 0.5}, Corrected: 0.4},
		{Sample: Sample{665, 0.9}, Corrected: 0.8},
	}
	peak := &Peak{Wavelength: 652, Intensity: 0.5}

	raw, err := EstimateOD(spec, peak, ODFromRaw)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, raw.Value, tolerance)
	assert.Equal(t, ODWindow{650, 660}, raw.Window)

	corrected, err := EstimateOD(spec, peak, ODFromCorrected)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, corrected.Value, tolerance)

	none, err := EstimateOD(spec, nil, ODFromRaw)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTrapezoid(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"empty", nil, nil, 0},
		{"single sample", []float64{660}, []float64{0.4}, 0},
		{"constant", []float64{660, 662, 665, 670}, []float64{0.25, 0.25, 0.25, 0.25}, 0.25 * 10},
		{"non-uniform ramp", []float64{0, 1, 3}, []float64{0, 1, 3}, 4.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Trapezoid(tt.x, tt.y), tolerance)
		})
	}
}

func TestIntegrateBand(t *testing.T) {
	const c = 0.42

	var spec CorrectedSpectrum
	for wl := 650.0; wl <= 680; wl++ {
		spec = append(spec, CorrectedSample{Sample: Sample{wl, c}, Corrected: c - 0.02})
	}

	integrals := IntegrateBand(spec)
	assert.Equal(t, Band{660, 670}, integrals.Band)
	assert.InDelta(t, c*10, integrals.Raw, tolerance)
	assert.InDelta(t, (c-0.02)*10, integrals.Corrected, tolerance)

	sparse := CorrectedSpectrum{{Sample: Sample{665, 1}, Corrected: 1}}
	assert.Equal(t, 0.0, IntegrateBand(sparse).Raw)
}
