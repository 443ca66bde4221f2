package spectrum

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Normalize keeps the first two columns of the table as wavelength and
// intensity, drops every row where either cell is not a finite number, and
// sorts the result by ascending wavelength. Rows with equal wavelengths keep
// their file order.
func Normalize(t *Table) (Spectrum, error) {
	if t == nil || t.Columns < 2 {
		return nil, NewValidationError("the file must contain at least two columns")
	}

	spec := make(Spectrum, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) < 2 {
			continue
		}

		wavelength, ok := parseNumber(row[0])
		if !ok {
			continue
		}
		intensity, ok := parseNumber(row[1])
		if !ok {
			continue
		}

		spec = append(spec, Sample{Wavelength: wavelength, Intensity: intensity})
	}

	if len(spec) == 0 {
		return nil, NewValidationError("the file contains no numeric rows")
	}

	sort.SliceStable(spec, func(i, j int) bool {
		return spec[i].Wavelength < spec[j].Wavelength
	})

	return spec, nil
}

func parseNumber(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
