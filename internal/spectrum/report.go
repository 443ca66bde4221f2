package spectrum

import "fmt"

const notAvailable = "n/a"

// Summary renders the computed fields as human-readable lines in a fixed
// order: baseline, peak, OD, raw integral, corrected integral.
func (r *Result) Summary() []string {
	lines := make([]string, 0, 5)

	switch {
	case r.Baseline.Wavelength != nil:
		lines = append(lines, fmt.Sprintf("Baseline at %.2f nm: %.6f (corrected to exactly 0)",
			*r.Baseline.Wavelength, r.Baseline.Value))
	case r.Baseline.Window != nil:
		lines = append(lines, fmt.Sprintf("Baseline (mean %g-%g nm): %.6f",
			r.Baseline.Window.Lower, r.Baseline.Window.Upper, r.Baseline.Value))
	default:
		lines = append(lines, fmt.Sprintf("Baseline: %.6f", r.Baseline.Value))
	}

	if r.Peak != nil {
		lines = append(lines, fmt.Sprintf("Peak: %.2f nm, intensity: %.2f", r.Peak.Wavelength, r.Peak.Intensity))
	} else {
		lines = append(lines, fmt.Sprintf("Peak (%g-%g nm): %s", PeakWindowLow, PeakWindowHigh, notAvailable))
	}

	lines = append(lines, r.ODLabel())

	lines = append(lines,
		fmt.Sprintf("Integral (uncorrected, %s nm): %.4f", r.Integrals.Band, r.Integrals.Raw),
		fmt.Sprintf("Integral (corrected, %s nm): %.4f", r.Integrals.Band, r.Integrals.Corrected),
	)

	return lines
}

// ODLabel formats the OD window and value, or marks it unavailable.
func (r *Result) ODLabel() string {
	if r.OD == nil {
		return "OD (peak ±5 nm): " + notAvailable
	}
	return fmt.Sprintf("OD (%g-%g nm): %.4f", r.OD.Window.Low, r.OD.Window.High, r.OD.Value)
}

func (b Band) String() string {
	return fmt.Sprintf("%g-%g", b.Lower, b.Upper)
}
