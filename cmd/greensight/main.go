package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/roman-kulish/greensight/cmd/greensight/app"
)

// set with -ldflags "-X main.version=..."
var version string

func main() {
	if version != "" {
		app.Version = version
	}

	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel}))

	flags, err := app.ParseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Error(err.Error())
		flag.Usage()
		os.Exit(2)
	}

	if flags.ShowVersion {
		fmt.Printf("greensight %s\n", app.Version)
		return
	}

	config, err := app.LoadConfig(flags.ConfigPath)
	if err != nil {
		logger.Error("failed to load configuration file",
			slog.String("path", flags.ConfigPath),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logLevel.Set(config.Settings.LogLevel.Level())
	logger.Info("starting greensight",
		slog.String("version", app.Version),
		slog.String("revision", config.Pipeline.Revision))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = app.Run(ctx, config, logger); err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}
