package plot

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	ColorBlue       = "blue"
	ColorGreen      = "green"
	ColorOrange     = "orange"
	ColorRed        = "red"
	ColorWhite      = "white"
	ColorBlack      = "black"
	ColorLegendEdge = "legend-edge"
)

// named colors, CSS values
var palette = map[string]string{
	ColorBlue:       "#0000ff",
	ColorGreen:      "#008000",
	ColorOrange:     "#ffa500",
	ColorRed:        "#ff0000",
	ColorWhite:      "#ffffff",
	ColorBlack:      "#000000",
	ColorLegendEdge: "#cccccc",
}

var white = colorful.Color{R: 1, G: 1, B: 1}

// lookupColor resolves a palette name or a "#rrggbb" literal.
func lookupColor(name string) (colorful.Color, error) {
	hex, ok := palette[name]
	if !ok {
		hex = name
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("unknown color '%s': %w", name, err)
	}
	return c, nil
}

// translucent returns c with the given opacity, for compositing with draw.Over.
func translucent(c colorful.Color, alpha float64) color.Color {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}

// flatten returns the opaque color c shows when laid over white at the given opacity.
func flatten(c colorful.Color, alpha float64) color.Color {
	return white.BlendRgb(c, alpha).Clamped()
}
