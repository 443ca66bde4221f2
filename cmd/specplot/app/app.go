package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/greensight/internal/plot"
	"github.com/roman-kulish/greensight/internal/spectrum"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	data, err := os.ReadFile(config.InputFile)
	if err != nil {
		return fmt.Errorf("reading spectrum file: %w", err)
	}

	logger.Info("analyzing spectrum",
		slog.String("file", config.InputFile),
		slog.String("size", humanize.Bytes(uint64(len(data)))),
		slog.String("revision", config.Policy.Name))

	res, err := spectrum.Process(data, config.InputFile, config.Policy)
	if err != nil {
		return fmt.Errorf("analyzing '%s': %w", config.InputFile, err)
	}

	for _, line := range res.Summary() {
		logger.Info(line)
	}

	if config.Verbose {
		for _, s := range res.Spectrum {
			logger.Debug("sample",
				slog.Float64("wavelength", s.Wavelength),
				slog.Float64("intensity", s.Intensity),
				slog.Float64("corrected", s.Corrected))
		}
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	renderer, err := plot.NewRenderer(plot.RenderConfig{DPI: config.DPI})
	if err != nil {
		return fmt.Errorf("creating spectrum renderer: %w", err)
	}

	fig := plot.NewFigure(res, config.Date)

	logger.Info("rendering spectrum",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Float64("dpi", config.DPI),
			slog.Int("width", int(fig.Width*config.DPI+0.5)),
			slog.Int("height", int(fig.Height*config.DPI+0.5)),
		))

	img, err := renderer.Render(fig)
	if err != nil {
		return fmt.Errorf("rendering spectrum: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = plot.EncodePNG(out, img, config.DPI)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	if err != nil {
		return fmt.Errorf("writing '%s': %w", config.OutputFile, err)
	}

	return out.Close()
}
