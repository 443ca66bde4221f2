// handlers.go - Spectrum analysis handlers
package api

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/roman-kulish/greensight/internal/plot"
	"github.com/roman-kulish/greensight/internal/spectrum"
)

const (
	MIMEApplicationMsgpack = "application/msgpack"

	formFieldFile     = "file"
	formFieldRevision = "revision"
	downloadFileName  = "spectrum.png"
)

// Options configure the spectrum handlers
type Options struct {
	Version     string
	Policy      spectrum.Policy // Default pipeline revision
	PreviewDPI  float64
	DownloadDPI float64
	BodyLimit   uint64 // Bytes, only used in error messages
	Logger      *slog.Logger
	Now         func() time.Time // Date printed in the legend header
}

// Handler serves the analysis endpoints. It keeps no per-request state.
type Handler struct {
	version   string
	policy    spectrum.Policy
	preview   *plot.Renderer
	download  *plot.Renderer
	bodyLimit uint64
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandler creates a handler, applying defaults for the zero values
func NewHandler(opts Options) (*Handler, error) {
	if opts.Policy.Name == "" {
		opts.Policy = spectrum.ReferencePolicy
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DownloadDPI == 0 {
		opts.DownloadDPI = 600
	}

	preview, err := plot.NewRenderer(plot.RenderConfig{DPI: opts.PreviewDPI})
	if err != nil {
		return nil, fmt.Errorf("preview renderer: %w", err)
	}
	download, err := plot.NewRenderer(plot.RenderConfig{DPI: opts.DownloadDPI})
	if err != nil {
		return nil, fmt.Errorf("download renderer: %w", err)
	}

	return &Handler{
		version:   opts.Version,
		policy:    opts.Policy,
		preview:   preview,
		download:  download,
		bodyLimit: opts.BodyLimit,
		logger:    opts.Logger,
		now:       opts.Now,
	}, nil
}

// analysisResponse is the payload of a successful analysis
type analysisResponse struct {
	ID        string             `json:"id" msgpack:"id"`
	FileName  string             `json:"fileName" msgpack:"fileName"`
	Size      int                `json:"size" msgpack:"size"`
	Revision  string             `json:"revision" msgpack:"revision"`
	Summary   []string           `json:"summary" msgpack:"summary"`
	Baseline  spectrum.Baseline  `json:"baseline" msgpack:"baseline"`
	Peak      *spectrum.Peak     `json:"peak" msgpack:"peak"`
	OD        *spectrum.OD       `json:"od" msgpack:"od"`
	Integrals spectrum.Integrals `json:"integrals" msgpack:"integrals"`
	Figure    *plot.Figure       `json:"figure" msgpack:"figure"`
	Preview   string             `json:"preview" msgpack:"preview"` // PNG data URL
}

// upload is a file received in the multipart form
type upload struct {
	id     string
	name   string
	data   []byte
	policy spectrum.Policy
}

// HandleHealth returns server health status
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  h.version,
		"revision": h.policy.Name,
	})
}

// HandleAnalyze runs the pipeline over the uploaded file and returns the
// summary, the figure instructions and a preview image.
func (h *Handler) HandleAnalyze(c echo.Context) error {
	up, err := h.readUpload(c)
	if err != nil {
		return err
	}

	res, err := h.process(up)
	if err != nil {
		return err
	}

	fig := plot.NewFigure(res, h.now())

	var buf bytes.Buffer
	if err = h.preview.RenderPNG(&buf, fig); err != nil {
		return NewInternalError("failed to render preview", err)
	}

	resp := analysisResponse{
		ID:        up.id,
		FileName:  res.FileName,
		Size:      len(up.data),
		Revision:  res.Policy,
		Summary:   res.Summary(),
		Baseline:  res.Baseline,
		Peak:      res.Peak,
		OD:        res.OD,
		Integrals: res.Integrals,
		Figure:    fig,
		Preview:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}

	if acceptsMsgpack(c.Request()) {
		b, err := msgpack.Marshal(&resp)
		if err != nil {
			return NewInternalError("failed to encode response", err)
		}
		return c.Blob(http.StatusOK, MIMEApplicationMsgpack, b)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandlePlot returns the chart as a high resolution PNG attachment.
func (h *Handler) HandlePlot(c echo.Context) error {
	up, err := h.readUpload(c)
	if err != nil {
		return err
	}

	res, err := h.process(up)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = h.download.RenderPNG(&buf, plot.NewFigure(res, h.now())); err != nil {
		return NewInternalError("failed to render plot", err)
	}

	h.logger.Debug("plot rendered",
		"id", up.id,
		"dpi", h.download.DPI(),
		"size", humanize.Bytes(uint64(buf.Len())))

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", downloadFileName))
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (h *Handler) process(up *upload) (*spectrum.Result, error) {
	res, err := spectrum.Process(up.data, up.name, up.policy)
	if err != nil {
		apiErr := classify(err)
		h.logger.Warn("analysis rejected",
			"id", up.id,
			"file", up.name,
			"revision", up.policy.Name,
			"code", apiErr.Code,
			"error", err)
		return nil, apiErr
	}

	attrs := []any{
		"id", up.id,
		"file", res.FileName,
		"size", humanize.Bytes(uint64(len(up.data))),
		"revision", res.Policy,
		"samples", len(res.Spectrum),
		"baseline", res.Baseline.Value,
	}
	if res.Peak != nil {
		attrs = append(attrs, "peak", res.Peak.Wavelength)
	}
	h.logger.Info("spectrum analyzed", attrs...)

	return res, nil
}

// readUpload reads the "file" form field and the optional revision override.
func (h *Handler) readUpload(c echo.Context) (*upload, error) {
	id := uuid.NewString()
	c.Response().Header().Set(echo.HeaderXRequestID, id)

	fh, err := c.FormFile(formFieldFile)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusRequestEntityTooLarge {
			return nil, NewPayloadTooLargeError(humanize.Bytes(h.bodyLimit))
		}
		return nil, NewBadRequestError("no file uploaded in field 'file'", err)
	}

	policy := h.policy
	if name := c.FormValue(formFieldRevision); name != "" {
		p, err := spectrum.PolicyByName(name)
		if err != nil {
			return nil, NewInvalidFieldError(formFieldRevision, name)
		}
		policy = p
	}

	f, err := fh.Open()
	if err != nil {
		return nil, NewBadRequestError("failed to open uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, NewBadRequestError("failed to read uploaded file", err)
	}

	return &upload{id: id, name: fh.Filename, data: data, policy: policy}, nil
}

func acceptsMsgpack(r *http.Request) bool {
	for _, accept := range strings.Split(r.Header.Get(echo.HeaderAccept), ",") {
		mediaType, _, _ := strings.Cut(strings.TrimSpace(accept), ";")
		if mediaType == MIMEApplicationMsgpack || mediaType == "application/x-msgpack" {
			return true
		}
	}
	return false
}
