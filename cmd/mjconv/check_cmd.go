package main

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/mjarchive/mjconv/internal/batch"
)

// CheckCmd converts match logs in memory and compares each against the
// reference document of the same name.
type CheckCmd struct {
	Input     string `arg:"" help:"Glob of attribute-format match log files"`
	Reference string `arg:"" help:"Directory holding the reference documents" type:"existingdir"`
	Workers   int    `default:"4" help:"Concurrent files"`
}

func (cmd CheckCmd) Run(logger *log.Logger) error {
	config := &batch.Config{
		Settings: batch.Settings{Workers: cmd.Workers},
		Jobs: []batch.Job{{
			Name:      "check",
			Input:     cmd.Input,
			Reference: cmd.Reference,
		}},
	}
	if err := config.Validate(); err != nil {
		return err
	}
	return batch.NewRunner(config, logger).Run(context.Background())
}
