package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/mjarchive/mjconv/internal/batch"
	"github.com/mjarchive/mjconv/internal/fileutil"
)

// ConvertCmd converts one or more match log files. With a single input and
// no output directory the document goes to stdout.
type ConvertCmd struct {
	Files     []string `arg:"" name:"file" help:"Attribute-format match log files" type:"existingfile"`
	OutputDir string   `short:"o" help:"Directory for converted documents (default: next to each input)"`
	Stdout    bool     `help:"Write the converted document to stdout (single input only)"`
}

func (cmd ConvertCmd) Run(logger *log.Logger) error {
	if cmd.Stdout && len(cmd.Files) != 1 {
		return fmt.Errorf("--stdout takes exactly one input file, got %d", len(cmd.Files))
	}

	for _, path := range cmd.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out, err := batch.ConvertDocument(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if cmd.Stdout {
			_, err := os.Stdout.Write(append(out, '\n'))
			return err
		}

		dir := cmd.OutputDir
		if dir == "" {
			dir = filepath.Dir(path)
		} else if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		dest := filepath.Join(dir, batch.OutputName(path))
		if err := fileutil.WriteFileAtomic(dest, out, 0o644); err != nil {
			return err
		}
		logger.Info("converted", "src", path, "dest", dest)
	}
	return nil
}
