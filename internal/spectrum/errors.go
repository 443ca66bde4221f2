package spectrum

import "fmt"

const (
	KindFormat     ErrorKind = "format"
	KindValidation ErrorKind = "validation"
	KindDataRange  ErrorKind = "data_range"
)

// ErrorKind classifies a terminal pipeline failure.
type ErrorKind string

// PipelineError is implemented by every error Process returns for bad input.
// All kinds are terminal: no partial result accompanies them.
type PipelineError interface {
	error
	Kind() ErrorKind
}

// FormatError reports an unsupported file type or a missing data marker
type FormatError struct {
	msg string
}

func NewFormatError(format string, args ...any) *FormatError {
	return &FormatError{fmt.Sprintf(format, args...)}
}

func (e *FormatError) Error() string {
	return e.msg
}

func (e *FormatError) Kind() ErrorKind {
	return KindFormat
}

// ValidationError reports a table that cannot be turned into a spectrum
type ValidationError struct {
	msg string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.msg
}

func (e *ValidationError) Kind() ErrorKind {
	return KindValidation
}

// DataRangeError reports a required wavelength window without samples
type DataRangeError struct {
	Window string // Which window was empty, e.g. "baseline"
	Low    float64
	High   float64
}

func NewDataRangeError(window string, low, high float64) *DataRangeError {
	return &DataRangeError{Window: window, Low: low, High: high}
}

func (e *DataRangeError) Error() string {
	return fmt.Sprintf("no samples in the %s window (%g-%g nm)", e.Window, e.Low, e.High)
}

func (e *DataRangeError) Kind() ErrorKind {
	return KindDataRange
}
