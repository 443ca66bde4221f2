package spectrum

// Sample is a single absorbance measurement at a specific wavelength.
type Sample struct {
	Wavelength float64 `json:"wavelength" msgpack:"wavelength"` // Wavelength in nm
	Intensity  float64 `json:"intensity" msgpack:"intensity"`   // Measured absorbance in a.u.
}

// Spectrum is an ordered sequence of samples, ascending by wavelength.
type Spectrum []Sample

// MaxWavelength returns the largest wavelength in the spectrum, 0 when empty.
func (s Spectrum) MaxWavelength() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Wavelength
}

// CorrectedSample extends Sample with the baseline-corrected intensity.
type CorrectedSample struct {
	Sample    `msgpack:",inline"`
	Corrected float64 `json:"corrected" msgpack:"corrected"` // Intensity minus baseline, 6 decimals
}

// CorrectedSpectrum is a Spectrum after baseline correction. It is computed
// once per upload and never modified afterwards.
type CorrectedSpectrum []CorrectedSample

// MaxWavelength returns the largest wavelength in the spectrum, 0 when empty.
func (s CorrectedSpectrum) MaxWavelength() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Wavelength
}

// Within returns the samples whose wavelength lies in [low, high], keeping order.
func (s CorrectedSpectrum) Within(low, high float64) CorrectedSpectrum {
	var out CorrectedSpectrum
	for _, sample := range s {
		if sample.Wavelength >= low && sample.Wavelength <= high {
			out = append(out, sample)
		}
	}
	return out
}

// Baseline is the reference intensity subtracted from every sample.
type Baseline struct {
	Method     BaselineMethod `json:"method" msgpack:"method"`
	Value      float64        `json:"value" msgpack:"value"`
	Wavelength *float64       `json:"wavelength,omitempty" msgpack:"wavelength,omitempty"` // Reference sample (single-point)
	Window     *Band          `json:"window,omitempty" msgpack:"window,omitempty"`         // Averaging window (window-mean)
}

// Peak is the arg-max of the corrected intensity inside the peak search window.
type Peak struct {
	Wavelength float64 `json:"wavelength" msgpack:"wavelength"`
	Intensity  float64 `json:"intensity" msgpack:"intensity"` // Corrected intensity at the peak
}

// ODWindow is the wavelength interval averaged for the optical density.
type ODWindow struct {
	Low  float64 `json:"low" msgpack:"low"`
	High float64 `json:"high" msgpack:"high"`
}

// OD is the optical density estimated around the detected peak.
type OD struct {
	Window ODWindow `json:"window" msgpack:"window"`
	Source ODSource `json:"source" msgpack:"source"`
	Value  float64  `json:"value" msgpack:"value"`
}

// Band is a closed wavelength interval [Lower, Upper].
type Band struct {
	Lower float64 `json:"lower" msgpack:"lower"`
	Upper float64 `json:"upper" msgpack:"upper"`
}

// Integrals holds the trapezoidal band integrals of both intensity series.
type Integrals struct {
	Band      Band    `json:"band" msgpack:"band"`
	Raw       float64 `json:"raw" msgpack:"raw"`
	Corrected float64 `json:"corrected" msgpack:"corrected"`
}

// Result is everything derived from a single uploaded spectrum.
type Result struct {
	FileName  string            `json:"fileName" msgpack:"fileName"`
	Policy    string            `json:"policy" msgpack:"policy"`
	Spectrum  CorrectedSpectrum `json:"spectrum" msgpack:"spectrum"`
	Baseline  Baseline          `json:"baseline" msgpack:"baseline"`
	Peak      *Peak             `json:"peak,omitempty" msgpack:"peak,omitempty"` // nil when the search window is empty
	OD        *OD               `json:"od,omitempty" msgpack:"od,omitempty"`     // nil when the peak is undefined
	Integrals Integrals         `json:"integrals" msgpack:"integrals"`
}
