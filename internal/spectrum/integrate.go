package spectrum

// Trapezoid integrates y over x with the trapezoidal rule using the actual
// sample spacing. Fewer than two points integrate to 0.
func Trapezoid(x, y []float64) float64 {
	n := min(len(x), len(y))
	if n < 2 {
		return 0
	}

	var area float64
	for i := 1; i < n; i++ {
		area += (x[i] - x[i-1]) * (y[i] + y[i-1]) / 2
	}
	return area
}

// IntegrateBand integrates raw and corrected intensity over the fixed band.
func IntegrateBand(spec CorrectedSpectrum) Integrals {
	band := Band{Lower: BandLower, Upper: BandUpper}
	region := spec.Within(band.Lower, band.Upper)

	x := make([]float64, len(region))
	raw := make([]float64, len(region))
	corrected := make([]float64, len(region))
	for i, s := range region {
		x[i] = s.Wavelength
		raw[i] = s.Intensity
		corrected[i] = s.Corrected
	}

	return Integrals{
		Band:      band,
		Raw:       Trapezoid(x, raw),
		Corrected: Trapezoid(x, corrected),
	}
}
