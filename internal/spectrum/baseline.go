package spectrum

import (
	"fmt"
	"math"
)

// EstimateBaseline computes the reference intensity using the given method.
func EstimateBaseline(spec Spectrum, method BaselineMethod) (Baseline, error) {
	if len(spec) == 0 {
		return Baseline{}, NewValidationError("the spectrum is empty")
	}

	switch method {
	case BaselineSinglePoint:
		ref := nearest(spec, BaselineTarget)
		wavelength := spec[ref].Wavelength
		return Baseline{
			Method:     method,
			Value:      spec[ref].Intensity,
			Wavelength: &wavelength,
		}, nil

	case BaselineWindowMean:
		var sum float64
		var n int
		for _, s := range spec {
			if s.Wavelength >= BaselineWindowLow && s.Wavelength <= BaselineWindowHigh {
				sum += s.Intensity
				n++
			}
		}
		if n == 0 {
			return Baseline{}, NewDataRangeError("baseline", BaselineWindowLow, BaselineWindowHigh)
		}
		return Baseline{
			Method: method,
			Value:  sum / float64(n),
			Window: &Band{Lower: BaselineWindowLow, Upper: BaselineWindowHigh},
		}, nil

	default:
		return Baseline{}, fmt.Errorf("unknown baseline method '%s'", method)
	}
}

// Correct subtracts the baseline from every sample, rounding to 6 decimals.
// With a single-point baseline, every sample at the reference wavelength is
// set to exactly zero.
func Correct(spec Spectrum, b Baseline) CorrectedSpectrum {
	out := make(CorrectedSpectrum, len(spec))
	for i, s := range spec {
		corrected := s.Intensity - b.Value
		if b.Wavelength != nil && s.Wavelength == *b.Wavelength {
			corrected = 0.0
		}
		out[i] = CorrectedSample{Sample: s, Corrected: round6(corrected)}
	}
	return out
}

// nearest returns the index of the first sample closest to target. An exact
// match is always the closest.
func nearest(spec Spectrum, target float64) int {
	best := 0
	bestDist := math.Abs(spec[0].Wavelength - target)
	for i := 1; i < len(spec); i++ {
		if d := math.Abs(spec[i].Wavelength - target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// round6 rounds half to even at 6 decimals. Magnitudes where scaling would
// overflow are returned unchanged.
func round6(v float64) float64 {
	if math.Abs(v) > math.MaxFloat64/1e6 {
		return v
	}
	return math.RoundToEven(v*1e6) / 1e6
}
