package spectrum

// FindPeak returns the sample with the highest corrected intensity inside
// [PeakWindowLow, PeakWindowHigh]. The first maximum in wavelength order
// wins. The boolean is false when the window holds no samples.
func FindPeak(spec CorrectedSpectrum) (Peak, bool) {
	var peak Peak
	found := false
	for _, s := range spec {
		if s.Wavelength < PeakWindowLow || s.Wavelength > PeakWindowHigh {
			continue
		}
		if !found || s.Corrected > peak.Intensity {
			peak = Peak{Wavelength: s.Wavelength, Intensity: s.Corrected}
			found = true
		}
	}
	return peak, found
}
