package spectrum

import "path/filepath"

// Process runs the whole feature-extraction pipeline over one uploaded file.
// It holds no state between calls. Any returned error is terminal and comes
// without a partial result; bad input yields a PipelineError.
func Process(data []byte, filename string, policy Policy) (*Result, error) {
	table, err := Load(data, filename, policy.Marker, policy.CommaProbeLines)
	if err != nil {
		return nil, err
	}

	spec, err := Normalize(table)
	if err != nil {
		return nil, err
	}

	baseline, err := EstimateBaseline(spec, policy.Baseline)
	if err != nil {
		return nil, err
	}
	corrected := Correct(spec, baseline)

	var peak *Peak
	if p, ok := FindPeak(corrected); ok {
		peak = &p
	}

	od, err := EstimateOD(corrected, peak, policy.ODSource)
	if err != nil {
		return nil, err
	}

	return &Result{
		FileName:  filepath.Base(filename),
		Policy:    policy.Name,
		Spectrum:  corrected,
		Baseline:  baseline,
		Peak:      peak,
		OD:        od,
		Integrals: IntegrateBand(corrected),
	}, nil
}
