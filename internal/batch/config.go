package batch

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the batch-run configuration: global settings plus one block per
// conversion job.
type Config struct {
	Settings Settings `hcl:"settings,block"`
	Jobs     []Job    `hcl:"job,block"`
}

// Settings holds the run-level knobs.
type Settings struct {
	Workers  int    `hcl:"workers,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// Job names one input glob and where its converted documents go. Reference
// points at a directory of known-good output documents; when set the job
// verifies instead of writing.
type Job struct {
	Name      string `hcl:"name,label"`
	Input     string `hcl:"input"`
	OutputDir string `hcl:"output_dir,optional"`
	Reference string `hcl:"reference,optional"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			Workers:  4,
			LogLevel: "info",
		},
	}
}

// LoadConfig reads a batch configuration from an HCL file. A missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", filename, diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", filename, diags.Error())
	}

	if config.Settings.Workers == 0 {
		config.Settings.Workers = 4
	}
	if config.Settings.LogLevel == "" {
		config.Settings.LogLevel = "info"
	}
	return &config, nil
}

// Validate rejects configurations the runner cannot execute.
func (c *Config) Validate() error {
	if c.Settings.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Settings.Workers)
	}
	if len(c.Jobs) == 0 {
		return fmt.Errorf("at least one job must be configured")
	}

	seen := map[string]bool{}
	for _, job := range c.Jobs {
		if seen[job.Name] {
			return fmt.Errorf("job %s: duplicate name", job.Name)
		}
		seen[job.Name] = true
		if job.Input == "" {
			return fmt.Errorf("job %s: input glob is required", job.Name)
		}
		if job.OutputDir == "" && job.Reference == "" {
			return fmt.Errorf("job %s: either output_dir or reference is required", job.Name)
		}
		if job.OutputDir != "" && job.Reference != "" {
			return fmt.Errorf("job %s: output_dir and reference are mutually exclusive", job.Name)
		}
	}
	return nil
}
