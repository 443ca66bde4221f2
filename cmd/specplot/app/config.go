package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/roman-kulish/greensight/internal/plot"
	"github.com/roman-kulish/greensight/internal/spectrum"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"

	dateLayout = time.DateOnly
)

type ImageFormat string

type Config struct {
	InputFile  string
	OutputFile string
	Format     ImageFormat
	DPI        float64
	Policy     spectrum.Policy
	Date       time.Time // Printed in the legend header
	Verbose    bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format: ImagePNG,
		DPI:    600,
		Policy: spectrum.ReferencePolicy,
		Date:   time.Now(),
	}
}

func NewConfigFromCLI() (*Config, error) {
	return newConfigFromArgs(flag.CommandLine, os.Args[1:])
}

func newConfigFromArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	var imageFormat, revision, date string
	fs.StringVar(&c.InputFile, "i", "", "Path to the spectrum file (.csv, .txt, .text)")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file, without extension")
	fs.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	fs.Float64Var(&c.DPI, "dpi", c.DPI, "Output resolution in dots per inch")
	fs.StringVar(&revision, "revision", c.Policy.Name,
		fmt.Sprintf("Pipeline revision. [%s]", strings.Join(spectrum.PolicyNames(), ", ")))
	fs.StringVar(&date, "date", "", "Date shown in the legend (format YYYY-MM-DD, default today)")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	imageFormat = strings.ToLower(imageFormat)

	var err error
	if c.InputFile == "" {
		err = errors.New("input file is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if c.DPI < plot.MinDPI || c.DPI > plot.MaxDPI {
		err = fmt.Errorf("dpi must be between %g and %g: %g given", plot.MinDPI, plot.MaxDPI, c.DPI)
	} else if c.Policy, err = spectrum.PolicyByName(revision); err == nil && date != "" {
		if c.Date, err = time.ParseInLocation(dateLayout, date, time.Local); err != nil {
			err = fmt.Errorf("invalid date '%s': %w", date, err)
		}
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
