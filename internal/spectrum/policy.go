package spectrum

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	BaselineSinglePoint BaselineMethod = "single-point"
	BaselineWindowMean  BaselineMethod = "window-mean"

	ODFromRaw       ODSource = "raw"
	ODFromCorrected ODSource = "corrected"

	MarkerLiteral MarkerKind = "literal"
	MarkerPrefix  MarkerKind = "prefix"
)

// Fixed pipeline constants, in nm.
const (
	BaselineTarget     = 850.0
	BaselineWindowLow  = 740.0
	BaselineWindowHigh = 760.0

	PeakWindowLow  = 650.0
	PeakWindowHigh = 750.0

	ODHalfWidth = 5.0
	ODSnap      = 10.0

	BandLower = 660.0
	BandUpper = 670.0

	SpectralDataMarker = "Begin Spectral Data"
	NumericDataPrefix  = "190"
)

type BaselineMethod string

func (m BaselineMethod) String() string {
	return string(m)
}

type ODSource string

func (s ODSource) String() string {
	return string(s)
}

type MarkerKind string

// MarkerRule tells the text loader which line precedes the numeric data.
type MarkerRule struct {
	Kind  MarkerKind
	Value string
}

// Matches reports whether line is the data-start marker. A prefix marker
// must be the whole first field of the line, compared numerically when both
// sides are numbers, so "190.0" matches and "1900-01-01" does not.
func (m MarkerRule) Matches(line string) bool {
	switch m.Kind {
	case MarkerPrefix:
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return false
		}
		if fields[0] == m.Value {
			return true
		}
		got, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return false
		}
		want, err := strconv.ParseFloat(m.Value, 64)
		return err == nil && got == want
	default:
		return strings.Contains(line, m.Value)
	}
}

func (m MarkerRule) String() string {
	if m.Kind == MarkerPrefix {
		return fmt.Sprintf("line whose first field is '%s'", m.Value)
	}
	return fmt.Sprintf("'%s'", m.Value)
}

// Policy is one pipeline revision. The revisions disagree on the baseline
// method, the text marker and the OD source, so each is kept whole and
// selected by name.
type Policy struct {
	Name            string
	Baseline        BaselineMethod
	Marker          MarkerRule
	ODSource        ODSource
	CommaProbeLines int // Data lines inspected for decimal commas
}

var (
	// ReferencePolicy is the revision shipped with the desktop workflow.
	ReferencePolicy = Policy{
		Name:            "reference",
		Baseline:        BaselineSinglePoint,
		Marker:          MarkerRule{Kind: MarkerLiteral, Value: SpectralDataMarker},
		ODSource:        ODFromRaw,
		CommaProbeLines: 5,
	}

	// RevisedPolicy averages the baseline over a window and reads OD from
	// the corrected series.
	RevisedPolicy = Policy{
		Name:            "revised",
		Baseline:        BaselineWindowMean,
		Marker:          MarkerRule{Kind: MarkerPrefix, Value: NumericDataPrefix},
		ODSource:        ODFromCorrected,
		CommaProbeLines: 10,
	}

	policies = map[string]Policy{
		ReferencePolicy.Name: ReferencePolicy,
		RevisedPolicy.Name:   RevisedPolicy,
	}
)

// PolicyByName returns the named pipeline revision.
func PolicyByName(name string) (Policy, error) {
	p, ok := policies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Policy{}, fmt.Errorf("unknown pipeline revision '%s', expected one of [%s]",
			name, strings.Join(PolicyNames(), ", "))
	}
	return p, nil
}

// PolicyNames lists the known revision names in sorted order.
func PolicyNames() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
