package main

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/mjarchive/mjconv/internal/batch"
)

// BatchCmd runs every job of an HCL configuration file.
type BatchCmd struct {
	Config string `arg:"" default:"mjconv.hcl" help:"Batch configuration file"`
}

func (cmd BatchCmd) Run(logger *log.Logger) error {
	config, err := batch.LoadConfig(cmd.Config)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	switch config.Settings.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	}

	return batch.NewRunner(config, logger).Run(context.Background())
}
