// Package batch converts whole directories of match logs, many files in
// flight at once, and verifies converted output against reference documents.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/mjarchive/mjconv/convert"
	"github.com/mjarchive/mjconv/internal/fileutil"
	"github.com/mjarchive/mjconv/mjlog"
	"github.com/mjarchive/mjconv/tenhou"
)

var (
	// ErrDocumentCount marks an input file that does not hold exactly one
	// match document.
	ErrDocumentCount = errors.New("batch: input is not a single match document")

	// ErrMismatch marks a converted document that differs from its
	// reference.
	ErrMismatch = errors.New("batch: output differs from reference")

	// ErrNoInput marks a job whose glob matched nothing.
	ErrNoInput = errors.New("batch: no input files")
)

// ConvertDocument transforms one attribute-format document into the
// array-format JSON bytes.
func ConvertDocument(data []byte) ([]byte, error) {
	logs, err := mjlog.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(logs) != 1 {
		return nil, fmt.Errorf("%w: found %d", ErrDocumentCount, len(logs))
	}
	doc, err := convert.Convert(logs[0].Actions)
	if err != nil {
		return nil, err
	}
	return tenhou.Export(doc)
}

// Runner executes the jobs of one configuration.
type Runner struct {
	config *Config
	logger *log.Logger
}

func NewRunner(config *Config, logger *log.Logger) *Runner {
	return &Runner{config: config, logger: logger}
}

// Run executes every job in order. Files inside a job are converted
// concurrently; the first failure cancels the job.
func (r *Runner) Run(ctx context.Context) error {
	for _, job := range r.config.Jobs {
		if err := r.runJob(ctx, job); err != nil {
			return fmt.Errorf("job %s: %w", job.Name, err)
		}
	}
	return nil
}

func (r *Runner) runJob(ctx context.Context, job Job) error {
	files, err := filepath.Glob(job.Input)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: %s", ErrNoInput, job.Input)
	}
	sort.Strings(files)

	if job.Reference != "" {
		return r.verifyFiles(ctx, job, files)
	}
	return r.convertFiles(ctx, job, files)
}

func (r *Runner) convertFiles(ctx context.Context, job Job, files []string) error {
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Settings.Workers)

	var done atomic.Int64
	for _, path := range files {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dest := filepath.Join(job.OutputDir, OutputName(path))
			if err := convertFile(path, dest); err != nil {
				return err
			}
			r.logger.Debug("converted", "src", path, "dest", dest)
			done.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.logger.Info("job complete", "job", job.Name, "files", done.Load())
	return nil
}

// verifyFiles converts every input in memory and compares it byte for byte
// with the reference document of the same name. All files are checked even
// when some differ; only I/O and parse failures stop the job early.
func (r *Runner) verifyFiles(ctx context.Context, job Job, files []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Settings.Workers)

	var bad atomic.Int64
	for _, path := range files {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ref := filepath.Join(job.Reference, OutputName(path))
			err := verifyFile(path, ref)
			if errors.Is(err, ErrMismatch) {
				r.logger.Error("mismatch", "src", path, "ref", ref)
				bad.Add(1)
				return nil
			}
			if err != nil {
				return err
			}
			r.logger.Debug("verified", "src", path, "ref", ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if n := bad.Load(); n > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrMismatch, n, len(files))
	}
	r.logger.Info("job verified", "job", job.Name, "files", len(files))
	return nil
}

func convertFile(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	out, err := ConvertDocument(data)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	return fileutil.WriteFileAtomic(dest, out, 0o644)
}

func verifyFile(src, ref string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	out, err := ConvertDocument(data)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	want, err := os.ReadFile(ref)
	if err != nil {
		return err
	}
	if !bytes.Equal(out, want) {
		return ErrMismatch
	}
	return nil
}

// OutputName is the converted filename for an input path: the base name with
// its extension swapped for .json.
func OutputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}
