package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Verbose bool             `help:"Enable debug logging"`

	Convert ConvertCmd `cmd:"" help:"Convert attribute-format match logs to the array format"`
	Check   CheckCmd   `cmd:"" help:"Convert match logs and compare against reference documents"`
	Batch   BatchCmd   `cmd:"" help:"Run the jobs of a batch configuration file"`
	Score   ScoreCmd   `cmd:"" help:"Print the textual score of a winning hand"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("mjconv"),
		kong.Description("Converter between the two tenhou match log encodings"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	logger := log.New(os.Stderr)
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	err := ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}
