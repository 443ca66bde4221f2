package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const scenarioCSV = "850,0.20\n700,0.85\n660,0.5\n665,0.6\n670,0.5\n250,0.9\n"

func newTestServer(t *testing.T, bodyLimit uint64) *echo.Echo {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h, err := NewHandler(Options{
		Version:     "test",
		DownloadDPI: 50,
		BodyLimit:   bodyLimit,
		Logger:      logger,
		Now:         func() time.Time { return time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)

	e := echo.New()
	SetupMiddleware(e, MiddlewareConfig{Logger: logger, BodyLimit: bodyLimit})
	RegisterRoutes(e, h)
	return e
}

// uploadRequest builds a multipart request. An empty file name omits the file part.
func uploadRequest(t *testing.T, target, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()

	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

func TestHandleHealth(t *testing.T) {
	e := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"revision":"reference"`)
}

func TestHandleAnalyze_JSON(t *testing.T) {
	e := newTestServer(t, 0)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "/api/spectrum/analyze", "culture.csv", scenarioCSV, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp analysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, resp.ID, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "culture.csv", resp.FileName)
	assert.Equal(t, len(scenarioCSV), resp.Size)
	assert.Equal(t, "reference", resp.Revision)
	assert.Equal(t, []string{
		"Baseline at 850.00 nm: 0.200000 (corrected to exactly 0)",
		"Peak: 700.00 nm, intensity: 0.65",
		"OD (700-710 nm): 0.8500",
		"Integral (uncorrected, 660-670 nm): 5.5000",
		"Integral (corrected, 660-670 nm): 3.5000",
	}, resp.Summary)

	require.NotNil(t, resp.Peak)
	assert.Equal(t, 700.0, resp.Peak.Wavelength)
	require.NotNil(t, resp.Figure)
	assert.Len(t, resp.Figure.Legend, 8)
	assert.True(t, strings.HasPrefix(resp.Preview, "data:image/png;base64,"))
}

func TestHandleAnalyze_Msgpack(t *testing.T) {
	e := newTestServer(t, 0)

	req := uploadRequest(t, "/api/spectrum/analyze", "culture.csv", scenarioCSV, nil)
	req.Header.Set(echo.HeaderAccept, "application/msgpack, application/json;q=0.5")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, MIMEApplicationMsgpack, rec.Header().Get(echo.HeaderContentType))

	var resp analysisResponse
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "culture.csv", resp.FileName)
	require.NotNil(t, resp.OD)
	assert.InDelta(t, 0.85, resp.OD.Value, 1e-9)
	assert.InDelta(t, 3.5, resp.Integrals.Corrected, 1e-9)
}

func TestHandleAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  string
		fields   map[string]string
		status   int
		code     string
	}{
		{
			name:     "unsupported extension",
			fileName: "culture.xlsx",
			content:  scenarioCSV,
			status:   http.StatusUnprocessableEntity,
			code:     "FORMAT_ERROR",
		},
		{
			name:     "missing marker",
			fileName: "culture.txt",
			content:  "700 0.5\n850 0.2\n",
			status:   http.StatusUnprocessableEntity,
			code:     "FORMAT_ERROR",
		},
		{
			name:     "single column",
			fileName: "culture.csv",
			content:  "700\n850\n",
			status:   http.StatusUnprocessableEntity,
			code:     "VALIDATION_ERROR",
		},
		{
			name:     "empty baseline window",
			fileName: "culture.csv",
			content:  scenarioCSV,
			fields:   map[string]string{"revision": "revised"},
			status:   http.StatusUnprocessableEntity,
			code:     "DATA_RANGE_ERROR",
		},
		{
			name:     "unknown revision",
			fileName: "culture.csv",
			content:  scenarioCSV,
			fields:   map[string]string{"revision": "latest"},
			status:   http.StatusBadRequest,
			code:     "INVALID_FIELD",
		},
		{
			name:   "missing file",
			status: http.StatusBadRequest,
			code:   "BAD_REQUEST",
		},
	}

	e := newTestServer(t, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, uploadRequest(t, "/api/spectrum/analyze", tt.fileName, tt.content, tt.fields))

			assert.Equal(t, tt.status, rec.Code)
			apiErr := decodeError(t, rec)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestHandleAnalyze_DataRangeMessage(t *testing.T) {
	e := newTestServer(t, 0)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "/api/spectrum/analyze", "culture.csv", scenarioCSV,
		map[string]string{"revision": "revised"}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "no samples in the baseline window (740-760 nm)", decodeError(t, rec).Message)
}

func TestHandleAnalyze_BodyLimit(t *testing.T) {
	e := newTestServer(t, 64)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "/api/spectrum/analyze", "culture.csv", strings.Repeat(scenarioCSV, 10), nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeError(t, rec).Code)
}

func TestHandlePlot(t *testing.T) {
	e := newTestServer(t, 0)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "/api/spectrum/plot", "culture.csv", scenarioCSV, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="spectrum.png"`, rec.Header().Get(echo.HeaderContentDisposition))

	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 250, cfg.Height)
}

func TestHandlePlot_PipelineError(t *testing.T) {
	e := newTestServer(t, 0)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "/api/spectrum/plot", "culture.csv", "a,b\nc,d\n", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
}
