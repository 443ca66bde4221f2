package spectrum

import (
	"fmt"
	"math"
)

// NewODWindow snaps peak±5 nm up to the next multiple of 10 on each side.
// Both bounds use a ceiling, so the window is generally not centred on the
// peak, and for peaks just above a multiple of 5 it may not contain it.
func NewODWindow(peakWavelength float64) ODWindow {
	return ODWindow{
		Low:  math.Ceil((peakWavelength-ODHalfWidth)/ODSnap) * ODSnap,
		High: math.Ceil((peakWavelength+ODHalfWidth)/ODSnap) * ODSnap,
	}
}

// EstimateOD averages the chosen intensity series over the OD window of the
// peak. A nil peak yields a nil OD.
func EstimateOD(spec CorrectedSpectrum, peak *Peak, source ODSource) (*OD, error) {
	if peak == nil {
		return nil, nil
	}

	window := NewODWindow(peak.Wavelength)
	region := spec.Within(window.Low, window.High)
	if len(region) == 0 {
		return nil, NewDataRangeError("od", window.Low, window.High)
	}

	var sum float64
	for _, s := range region {
		switch source {
		case ODFromRaw:
			sum += s.Intensity
		case ODFromCorrected:
			sum += s.Corrected
		default:
			return nil, fmt.Errorf("unknown OD source '%s'", source)
		}
	}

	return &OD{
		Window: window,
		Source: source,
		Value:  sum / float64(len(region)),
	}, nil
}
