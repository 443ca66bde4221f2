// errors.go - Structured error responses for the spectrum API
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roman-kulish/greensight/internal/spectrum"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-" msgpack:"-"`
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"message" msgpack:"message"`
	Details string `json:"details,omitempty" msgpack:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewInvalidFieldError creates a 400 error for a form field with a bad value
func NewInvalidFieldError(field, value string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_FIELD",
		Message: fmt.Sprintf("invalid value for field %s: '%s'", field, value),
	}
}

// NewPayloadTooLargeError creates a 413 error for uploads over the body limit
func NewPayloadTooLargeError(limit string) *APIError {
	return &APIError{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    "PAYLOAD_TOO_LARGE",
		Message: fmt.Sprintf("the uploaded file exceeds the limit of %s", limit),
	}
}

// NewPipelineError maps a terminal analysis failure to a 422 response. The
// message is shown to the user as is.
func NewPipelineError(err spectrum.PipelineError) *APIError {
	code := "ANALYSIS_ERROR"
	switch err.Kind() {
	case spectrum.KindFormat:
		code = "FORMAT_ERROR"
	case spectrum.KindValidation:
		code = "VALIDATION_ERROR"
	case spectrum.KindDataRange:
		code = "DATA_RANGE_ERROR"
	}

	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    code,
		Message: err.Error(),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// classify turns any error returned by the pipeline into an APIError.
func classify(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var pipelineErr spectrum.PipelineError
	if errors.As(err, &pipelineErr) {
		return NewPipelineError(pipelineErr)
	}

	return NewInternalError("analysis failed", err)
}

// ErrorHandler returns an echo.HTTPErrorHandler writing APIError bodies.
// Unexpected errors are logged and reported without internals.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *APIError
		var httpErr *echo.HTTPError

		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &httpErr):
			apiErr = &APIError{
				Status:  httpErr.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", httpErr.Message),
			}
			if httpErr.Code == http.StatusRequestEntityTooLarge {
				apiErr.Code = "PAYLOAD_TOO_LARGE"
			}
		default:
			apiErr = &APIError{
				Status:  http.StatusInternalServerError,
				Code:    "UNKNOWN_ERROR",
				Message: "An unexpected error occurred",
			}
		}

		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"error", err)
		}

		if err = c.JSON(apiErr.Status, apiErr); err != nil {
			logger.Error("writing error response", "error", err)
		}
	}
}
