package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultDPI = 100.0
	MinDPI     = 20.0
	MaxDPI     = 1200.0

	// Axes placement as fractions of the figure size
	axesLeft   = 0.125
	axesRight  = 0.9
	axesBottom = 0.11
	axesTop    = 0.88

	spineWidth  = 0.8 // points
	tickLength  = 3.5 // points
	tickPadding = 3.5 // points
	labelPad    = 4.0 // points
	titlePad    = 6.0 // points

	// Legend metrics in units of the legend font size
	legendBorderAxesPad = 0.5
	legendBorderPad     = 0.4
	legendHandleLength  = 2.0
	legendHandleTextPad = 0.8
	legendLabelSpacing  = 0.6
	legendPatchHeight   = 0.7
	legendFrameAlpha    = 0.8
)

// RenderConfig holds the output resolution of the rendered figure
type RenderConfig struct {
	DPI float64 // Dots per inch, scales the image size, fonts and line widths
}

// Renderer rasterizes a Figure into an RGBA image
type Renderer struct {
	config RenderConfig
}

// NewRenderer creates a renderer, applying defaults for zero values
func NewRenderer(config RenderConfig) (*Renderer, error) {
	if config.DPI == 0 {
		config.DPI = DefaultDPI
	}
	if config.DPI < MinDPI || config.DPI > MaxDPI {
		return nil, fmt.Errorf("DPI must be between %g and %g: %g given", MinDPI, MaxDPI, config.DPI)
	}

	return &Renderer{config: config}, nil
}

// DPI returns the resolution the renderer draws at.
func (r *Renderer) DPI() float64 {
	return r.config.DPI
}

// frame maps data coordinates onto the pixel rectangle of the axes.
type frame struct {
	fig  *Figure
	axes image.Rectangle
}

func (f frame) toPixel(p Point) vec {
	xr := (p.X - f.fig.X.Min) / (f.fig.X.Max - f.fig.X.Min)
	yr := (p.Y - f.fig.Y.Min) / (f.fig.Y.Max - f.fig.Y.Min)
	return vec{
		x: float64(f.axes.Min.X) + xr*float64(f.axes.Dx()),
		y: float64(f.axes.Max.Y) - yr*float64(f.axes.Dy()),
	}
}

func (f frame) clamp(p Point) Point {
	return Point{
		X: math.Min(math.Max(p.X, f.fig.X.Min), f.fig.X.Max),
		Y: math.Min(math.Max(p.Y, f.fig.Y.Min), f.fig.Y.Max),
	}
}

// Render draws the figure: fills, traces and markers inside the axes first,
// then the axes decorations, and the legend on top.
func (r *Renderer) Render(fig *Figure) (*image.RGBA, error) {
	if fig.X.Max <= fig.X.Min || fig.Y.Max <= fig.Y.Min {
		return nil, fmt.Errorf("invalid axis range: x [%g, %g], y [%g, %g]", fig.X.Min, fig.X.Max, fig.Y.Min, fig.Y.Max)
	}

	dpi := r.config.DPI
	w := int(math.Round(fig.Width * dpi))
	h := int(math.Round(fig.Height * dpi))

	cv := newCanvas(w, h)
	draw.Draw(cv.img, cv.img.Bounds(), image.White, image.Point{}, draw.Src)

	f := frame{
		fig: fig,
		axes: image.Rect(
			int(math.Round(axesLeft*float64(w))),
			int(math.Round((1-axesTop)*float64(h))),
			int(math.Round(axesRight*float64(w))),
			int(math.Round((1-axesBottom)*float64(h))),
		),
	}

	ann, err := newAnnotator(dpi)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	ops := []struct {
		msg string
		fn  func(*canvas, frame, *annotator) error
	}{
		{"drawing fills", r.drawFills},
		{"drawing traces", r.drawTraces},
		{"drawing markers", r.drawMarkers},
		{"drawing axes", r.drawAxes},
		{"drawing legend", r.drawLegend},
	}
	for _, op := range ops {
		if err = op.fn(cv, f, ann); err != nil {
			return nil, fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return cv.img, nil
}

// RenderPNG renders the figure and writes it as a PNG tagged with the DPI.
func (r *Renderer) RenderPNG(w io.Writer, fig *Figure) error {
	img, err := r.Render(fig)
	if err != nil {
		return err
	}
	return EncodePNG(w, img, r.config.DPI)
}

func (r *Renderer) drawFills(cv *canvas, f frame, _ *annotator) error {
	for _, fill := range f.fig.Fills {
		if len(fill.Points) < 2 {
			continue
		}
		c, err := lookupColor(fill.Color)
		if err != nil {
			return err
		}

		first, last := fill.Points[0], fill.Points[len(fill.Points)-1]
		pts := make([]vec, 0, len(fill.Points)+2)
		pts = append(pts, f.toPixel(f.clamp(Point{X: first.X})))
		for _, p := range fill.Points {
			pts = append(pts, f.toPixel(f.clamp(p)))
		}
		pts = append(pts, f.toPixel(f.clamp(Point{X: last.X})))

		cv.polygon(pts)
		cv.paint(translucent(c, fill.Alpha))
	}
	return nil
}

func (r *Renderer) drawTraces(cv *canvas, f frame, _ *annotator) error {
	lo := vec{float64(f.axes.Min.X), float64(f.axes.Min.Y)}
	hi := vec{float64(f.axes.Max.X), float64(f.axes.Max.Y)}

	for _, trace := range f.fig.Traces {
		c, err := lookupColor(trace.Color)
		if err != nil {
			return err
		}
		width := points(trace.Width, r.config.DPI)

		for i := 1; i < len(trace.Points); i++ {
			a, b, ok := clipSegment(f.toPixel(trace.Points[i-1]), f.toPixel(trace.Points[i]), lo, hi)
			if ok {
				cv.segment(a, b, width)
			}
		}
		cv.paint(c)
	}
	return nil
}

func (r *Renderer) drawMarkers(cv *canvas, f frame, _ *annotator) error {
	for _, m := range f.fig.Markers {
		if m.At.X < f.fig.X.Min || m.At.X > f.fig.X.Max || m.At.Y < f.fig.Y.Min || m.At.Y > f.fig.Y.Max {
			continue
		}
		c, err := lookupColor(m.Color)
		if err != nil {
			return err
		}
		cv.circle(f.toPixel(m.At), points(m.Size/2, r.config.DPI))
		cv.paint(c)
	}
	return nil
}

func (r *Renderer) drawAxes(cv *canvas, f frame, ann *annotator) error {
	dpi := r.config.DPI
	spine := points(spineWidth, dpi)
	tick := points(tickLength, dpi)
	pad := points(tickPadding, dpi)
	axes := f.axes

	cv.outline(axes, spine)

	for _, x := range f.fig.X.Ticks {
		p := f.toPixel(Point{X: x, Y: f.fig.Y.Min})
		cv.segment(vec{p.x, p.y}, vec{p.x, p.y + tick}, spine)
	}
	for _, y := range f.fig.Y.Ticks {
		p := f.toPixel(Point{X: f.fig.X.Min, Y: y})
		cv.segment(vec{p.x - tick, p.y}, vec{p.x, p.y}, spine)
	}
	cv.paint(color.Black)

	// x tick labels
	ascent := ann.ascent(fontSize)
	xLabelBaseline := axes.Max.Y + int(tick+pad) + ascent
	for _, x := range f.fig.X.Ticks {
		p := f.toPixel(Point{X: x, Y: f.fig.Y.Min})
		label := strconv.FormatFloat(x, 'f', -1, 64)
		if err := ann.drawCentered(cv.img, fontSize, color.Black, label, int(p.x), xLabelBaseline); err != nil {
			return err
		}
	}

	// y tick labels, right aligned against the ticks
	var widest int
	for _, y := range f.fig.Y.Ticks {
		p := f.toPixel(Point{X: f.fig.X.Min, Y: y})
		label := strconv.FormatFloat(y, 'f', 1, 64)
		lw := ann.width(fontSize, label)
		widest = max(widest, lw)

		baseline := int(p.y) + int(points(fontSize, dpi)*0.35)
		if err := ann.drawString(cv.img, fontSize, color.Black, label, axes.Min.X-int(tick+pad)-lw, baseline); err != nil {
			return err
		}
	}

	lineHeight := ann.lineHeight(fontSize)
	labelGap := int(points(labelPad, dpi))

	if err := ann.drawCentered(cv.img, fontSize, color.Black, f.fig.X.Label,
		(axes.Min.X+axes.Max.X)/2, xLabelBaseline+labelGap+lineHeight); err != nil {
		return err
	}

	yLabelX := axes.Min.X - int(tick+pad) - widest - labelGap - lineHeight/2
	if err := ann.drawVertical(cv.img, fontSize, color.Black, f.fig.Y.Label, yLabelX, (axes.Min.Y+axes.Max.Y)/2); err != nil {
		return err
	}

	titleBaseline := axes.Min.Y - int(points(titlePad, dpi))
	return ann.drawCentered(cv.img, titleFontSize, color.Black, f.fig.Title, (axes.Min.X+axes.Max.X)/2, titleBaseline)
}

// legendRow is a laid out legend entry.
type legendRow struct {
	entry  LegendEntry
	lines  []string
	top    int
	height int
}

func (r *Renderer) drawLegend(cv *canvas, f frame, ann *annotator) error {
	if len(f.fig.Legend) == 0 {
		return nil
	}

	fs := points(fontSize, r.config.DPI)
	lineHeight := ann.lineHeight(fontSize)
	borderPad := int(fs * legendBorderPad)
	handleLength := int(fs * legendHandleLength)
	handleTextPad := int(fs * legendHandleTextPad)
	labelSpacing := int(fs * legendLabelSpacing)

	left := f.axes.Min.X + int(f.fig.LegendAnchor.X*float64(f.axes.Dx())) + int(fs*legendBorderAxesPad)
	top := f.axes.Max.Y - int(f.fig.LegendAnchor.Y*float64(f.axes.Dy())) + int(fs*legendBorderAxesPad)

	rows := make([]legendRow, len(f.fig.Legend))
	y := top + borderPad
	var textWidth int
	for i, entry := range f.fig.Legend {
		lines := strings.Split(entry.Label, "\n")
		for _, line := range lines {
			textWidth = max(textWidth, ann.width(fontSize, line))
		}

		rows[i] = legendRow{entry: entry, lines: lines, top: y, height: len(lines) * lineHeight}
		y += rows[i].height + labelSpacing
	}

	box := image.Rect(left, top, left+2*borderPad+handleLength+handleTextPad+textWidth, y-labelSpacing+borderPad)

	frameFill, err := lookupColor(ColorWhite)
	if err != nil {
		return err
	}
	cv.rect(box)
	cv.paint(translucent(frameFill, legendFrameAlpha))

	edge, err := lookupColor(ColorLegendEdge)
	if err != nil {
		return err
	}
	cv.outline(box, points(spineWidth, r.config.DPI))
	cv.paint(edge)

	handleX := box.Min.X + borderPad
	textX := handleX + handleLength + handleTextPad
	ascent := ann.ascent(fontSize)

	for _, row := range rows {
		if err = r.drawHandle(cv, row, handleX, handleLength, fs); err != nil {
			return err
		}
		for i, line := range row.lines {
			if line == "" {
				continue
			}
			if err = ann.drawString(cv.img, fontSize, color.Black, line, textX, row.top+ascent+i*lineHeight); err != nil {
				return err
			}
		}
	}

	return nil
}

// drawHandle draws the sample glyph of a legend row, centered on its first line.
func (r *Renderer) drawHandle(cv *canvas, row legendRow, x, length int, fs float64) error {
	switch row.entry.Kind {
	case LegendLine, LegendPatch, LegendMarker:
	default:
		return nil
	}

	c, err := lookupColor(row.entry.Color)
	if err != nil {
		return err
	}

	cy := float64(row.top) + fs*lineSpacing/2
	switch row.entry.Kind {
	case LegendLine:
		cv.segment(vec{float64(x), cy}, vec{float64(x + length), cy}, points(lineW, r.config.DPI))
		cv.paint(c)

	case LegendPatch:
		half := int(fs * legendPatchHeight / 2)
		cv.rect(image.Rect(x, int(cy)-half, x+length, int(cy)+half))
		cv.paint(flatten(c, row.entry.Alpha))

	case LegendMarker:
		cv.circle(vec{float64(x + length/2), cy}, points(markerSz/2, r.config.DPI))
		cv.paint(c)
	}
	return nil
}
