package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// Flags are the command line options of the server
type Flags struct {
	ConfigPath  string
	ShowVersion bool
}

// ParseFlags reads the command line. A configuration file is required
// unless only the version is requested.
func ParseFlags(fs *flag.FlagSet, args []string) (*Flags, error) {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "c", "", "Path to the configuration file, see config.example.yaml")
	fs.BoolVar(&f.ShowVersion, "version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if f.ShowVersion {
		return f, nil
	}
	if f.ConfigPath == "" {
		return nil, errors.New("no configuration file provided")
	}

	info, err := os.Stat(f.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("configuration file '%s': %w", f.ConfigPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("configuration file '%s' is a directory", f.ConfigPath)
	}

	return f, nil
}
