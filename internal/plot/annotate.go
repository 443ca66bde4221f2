package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	titleFontSize = 12.0 // points
	fontSize      = 10.0 // points
	lineSpacing   = 1.2  // line height as a multiple of the font size
)

// annotator draws text onto the figure at a fixed DPI.
type annotator struct {
	context *freetype.Context
	font    *truetype.Font
	dpi     float64
	faces   map[float64]font.Face
}

func newAnnotator(dpi float64) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		font:    parsedFont,
		dpi:     dpi,
		faces:   make(map[float64]font.Face),
	}, nil
}

func (a *annotator) Close() error {
	var err error
	for size, face := range a.faces {
		if cErr := face.Close(); cErr != nil && err == nil {
			err = cErr
		}
		delete(a.faces, size)
	}
	return err
}

func (a *annotator) face(size float64) font.Face {
	face, ok := a.faces[size]
	if !ok {
		face = truetype.NewFace(a.font, &truetype.Options{
			Size:    size,
			DPI:     a.dpi,
			Hinting: font.HintingNone,
		})
		a.faces[size] = face
	}
	return face
}

// width returns the advance width of s in pixels.
func (a *annotator) width(size float64, s string) int {
	return font.MeasureString(a.face(size), s).Ceil()
}

// ascent returns the distance from the baseline to the top of the line box.
func (a *annotator) ascent(size float64) int {
	return a.face(size).Metrics().Ascent.Ceil()
}

// lineHeight returns the distance between consecutive baselines.
func (a *annotator) lineHeight(size float64) int {
	return int(points(size*lineSpacing, a.dpi) + 0.5)
}

// drawString draws s with its baseline starting at (x, y).
func (a *annotator) drawString(dst draw.Image, size float64, c color.Color, s string, x, y int) error {
	a.context.SetClip(dst.Bounds())
	a.context.SetDst(dst)
	a.context.SetSrc(image.NewUniform(c))
	a.context.SetFontSize(size)

	if _, err := a.context.DrawString(s, freetype.Pt(x, y)); err != nil {
		return fmt.Errorf("drawing '%s': %w", s, err)
	}
	return nil
}

// drawCentered draws s horizontally centered on x.
func (a *annotator) drawCentered(dst draw.Image, size float64, c color.Color, s string, x, y int) error {
	return a.drawString(dst, size, c, s, x-a.width(size, s)/2, y)
}

// drawVertical draws s rotated 90° counter-clockwise, centered on (x, y).
// The text is typeset on a scratch image and copied over pixel by pixel.
func (a *annotator) drawVertical(dst *image.RGBA, size float64, c color.Color, s string, x, y int) error {
	w := a.width(size, s)
	h := a.lineHeight(size)
	scratch := image.NewRGBA(image.Rect(0, 0, w, h))

	if err := a.drawString(scratch, size, c, s, 0, a.ascent(size)); err != nil {
		return err
	}

	rotated := image.NewRGBA(image.Rect(0, 0, h, w))
	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			rotated.SetRGBA(sy, w-1-sx, scratch.RGBAAt(sx, sy))
		}
	}

	at := image.Rect(x-h/2, y-w/2, x-h/2+h, y-w/2+w)
	draw.Draw(dst, at, rotated, image.Point{}, draw.Over)
	return nil
}
