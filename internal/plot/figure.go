package plot

import (
	"fmt"
	"math"
	"time"

	"github.com/roman-kulish/greensight/internal/spectrum"
)

const (
	Title  = "GreenSight – Smart Monitoring for Sustainable Algal Biotechnology"
	XLabel = "Wavelength [nm]"
	YLabel = "Absorbance [a.u.]"

	LabelRawSpectrum       = "Baseline-uncorrected spectrum"
	LabelCorrectedSpectrum = "Baseline-corrected spectrum"

	headerTitle  = "Comparative absorption spectra of algae"
	headerSample = "(Scenedesmus)"
	dateFormat   = "02 January 2006"

	xMin     = 250.0
	yMin     = 0.0
	yMax     = 1.0
	yTick    = 0.1
	figureW  = 8.0 // inches
	figureH  = 5.0 // inches
	lineW    = 1.5 // points
	markerSz = 6.0 // points, diameter

	legendAnchorX = 0.435
	legendAnchorY = 1.0
)

const (
	LegendHeader LegendKind = "header"
	LegendLine   LegendKind = "line"
	LegendPatch  LegendKind = "patch"
	LegendText   LegendKind = "text"
	LegendSpacer LegendKind = "spacer"
	LegendMarker LegendKind = "marker"
)

// LegendKind decides which handle is drawn next to a legend label.
type LegendKind string

type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Axis is a fixed data range with explicit tick positions.
type Axis struct {
	Label string    `json:"label" msgpack:"label"`
	Min   float64   `json:"min" msgpack:"min"`
	Max   float64   `json:"max" msgpack:"max"`
	Ticks []float64 `json:"ticks" msgpack:"ticks"`
}

// Trace is a polyline in data coordinates.
type Trace struct {
	Label  string  `json:"label" msgpack:"label"`
	Color  string  `json:"color" msgpack:"color"`
	Width  float64 `json:"width" msgpack:"width"` // points
	Points []Point `json:"points" msgpack:"points"`
}

// Fill is the area between a curve and y = 0.
type Fill struct {
	Label  string  `json:"label" msgpack:"label"`
	Color  string  `json:"color" msgpack:"color"`
	Alpha  float64 `json:"alpha" msgpack:"alpha"`
	Points []Point `json:"points" msgpack:"points"`
}

// Marker is a filled circle at a data point.
type Marker struct {
	Label string  `json:"label" msgpack:"label"`
	Color string  `json:"color" msgpack:"color"`
	Size  float64 `json:"size" msgpack:"size"` // points, diameter
	At    Point   `json:"at" msgpack:"at"`
}

// LegendEntry is one legend row. Labels may span several lines.
type LegendEntry struct {
	Kind  LegendKind `json:"kind" msgpack:"kind"`
	Label string     `json:"label" msgpack:"label"`
	Color string     `json:"color,omitempty" msgpack:"color,omitempty"`
	Alpha float64    `json:"alpha,omitempty" msgpack:"alpha,omitempty"`
}

// Figure holds the complete rendering instructions for one analysis.
type Figure struct {
	Title        string        `json:"title" msgpack:"title"`
	Width        float64       `json:"width" msgpack:"width"`   // inches
	Height       float64       `json:"height" msgpack:"height"` // inches
	X            Axis          `json:"x" msgpack:"x"`
	Y            Axis          `json:"y" msgpack:"y"`
	Fills        []Fill        `json:"fills" msgpack:"fills"`
	Traces       []Trace       `json:"traces" msgpack:"traces"`
	Markers      []Marker      `json:"markers,omitempty" msgpack:"markers,omitempty"`
	Legend       []LegendEntry `json:"legend" msgpack:"legend"`
	LegendAnchor Point         `json:"legendAnchor" msgpack:"legendAnchor"` // axes fraction, upper-left corner
}

// NewFigure lays out the fixed chart for an analysis result. The legend is
// built directly in reading order: header, raw spectrum, raw integral, OD,
// spacer, corrected spectrum, corrected integral, then the peak if found.
func NewFigure(res *spectrum.Result, date time.Time) *Figure {
	raw := make([]Point, len(res.Spectrum))
	corrected := make([]Point, len(res.Spectrum))
	for i, s := range res.Spectrum {
		raw[i] = Point{X: s.Wavelength, Y: s.Intensity}
		corrected[i] = Point{X: s.Wavelength, Y: s.Corrected}
	}

	band := res.Spectrum.Within(res.Integrals.Band.Lower, res.Integrals.Band.Upper)
	rawBand := make([]Point, len(band))
	correctedBand := make([]Point, len(band))
	for i, s := range band {
		rawBand[i] = Point{X: s.Wavelength, Y: s.Intensity}
		correctedBand[i] = Point{X: s.Wavelength, Y: s.Corrected}
	}

	rawIntegral := integralLabel(res.Integrals.Band, res.Integrals.Raw)
	correctedIntegral := integralLabel(res.Integrals.Band, res.Integrals.Corrected)

	xMax := res.Spectrum.MaxWavelength()
	if xMax <= xMin {
		xMax = xMin + 10
	}

	fig := &Figure{
		Title:  Title,
		Width:  figureW,
		Height: figureH,
		X: Axis{
			Label: XLabel,
			Min:   xMin,
			Max:   xMax,
			Ticks: niceTicks(xMin, xMax),
		},
		Y: Axis{
			Label: YLabel,
			Min:   yMin,
			Max:   yMax,
			Ticks: linearTicks(yMin, yMax, yTick),
		},
		Fills: []Fill{
			{Label: rawIntegral, Color: ColorBlue, Alpha: 0.15, Points: rawBand},
			{Label: correctedIntegral, Color: ColorOrange, Alpha: 0.35, Points: correctedBand},
		},
		Traces: []Trace{
			{Label: LabelRawSpectrum, Color: ColorBlue, Width: lineW, Points: raw},
			{Label: LabelCorrectedSpectrum, Color: ColorGreen, Width: lineW, Points: corrected},
		},
		LegendAnchor: Point{X: legendAnchorX, Y: legendAnchorY},
	}

	fig.Legend = []LegendEntry{
		{Kind: LegendHeader, Label: fmt.Sprintf("%s\n%s, %s\n", headerTitle, headerSample, date.Format(dateFormat))},
		{Kind: LegendLine, Label: LabelRawSpectrum, Color: ColorBlue},
		{Kind: LegendPatch, Label: rawIntegral, Color: ColorBlue, Alpha: 0.15},
		{Kind: LegendText, Label: res.ODLabel()},
		{Kind: LegendSpacer},
		{Kind: LegendLine, Label: LabelCorrectedSpectrum, Color: ColorGreen},
		{Kind: LegendPatch, Label: correctedIntegral, Color: ColorOrange, Alpha: 0.35},
	}

	if res.Peak != nil {
		label := fmt.Sprintf("Peak: %.2f nm | %.2f a.u.", res.Peak.Wavelength, res.Peak.Intensity)
		fig.Markers = append(fig.Markers, Marker{
			Label: label,
			Color: ColorRed,
			Size:  markerSz,
			At:    Point{X: res.Peak.Wavelength, Y: res.Peak.Intensity},
		})
		fig.Legend = append(fig.Legend, LegendEntry{Kind: LegendMarker, Label: label, Color: ColorRed})
	}

	return fig
}

func integralLabel(band spectrum.Band, value float64) string {
	return fmt.Sprintf("Integral (%s nm): %.4f", band, value)
}

// linearTicks returns min, min+step, ... up to max inclusive. Ticks are
// computed by index so accumulated rounding does not drop the last one.
func linearTicks(min, max, step float64) []float64 {
	n := int(math.Floor((max-min)/step + 1e-9))
	ticks := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		ticks = append(ticks, math.Round((min+float64(i)*step)*1e9)/1e9)
	}
	return ticks
}

// niceTicks picks a 1/2/5 step giving between 4 and 10 ticks in [min, max].
func niceTicks(min, max float64) []float64 {
	span := max - min
	if span <= 0 {
		return []float64{min}
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(span)))
	step := magnitude
	for _, m := range []float64{0.1, 0.2, 0.5, 1, 2, 5} {
		step = magnitude * m
		if span/step <= 10 {
			break
		}
	}

	first := math.Ceil(min/step) * step
	return linearTicks(first, max, step)
}
