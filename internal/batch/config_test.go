package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configHCL = `
settings {
  workers   = 2
  log_level = "debug"
}

job "archive" {
  input      = "logs/*.mjlog"
  output_dir = "json"
}

job "verify" {
  input     = "logs/*.mjlog"
  reference = "json"
}
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.hcl")
	require.NoError(t, os.WriteFile(path, []byte(configHCL), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, 2, config.Settings.Workers)
	assert.Equal(t, "debug", config.Settings.LogLevel)
	require.Len(t, config.Jobs, 2)
	assert.Equal(t, Job{Name: "archive", Input: "logs/*.mjlog", OutputDir: "json"}, config.Jobs[0])
	assert.Equal(t, Job{Name: "verify", Input: "logs/*.mjlog", Reference: "json"}, config.Jobs[1])
}

func TestLoadConfigMissingFile(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.hcl")
	content := `
settings {}

job "archive" {
  input      = "logs/*.mjlog"
  output_dir = "json"
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, config.Settings.Workers)
	assert.Equal(t, "info", config.Settings.LogLevel)
}

func TestLoadConfigBadSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`job "x" {`), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Settings: Settings{Workers: 2},
			Jobs:     []Job{{Name: "a", Input: "*.mjlog", OutputDir: "out"}},
		}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.Settings.Workers = 0
	assert.Error(t, c.Validate())

	c = base()
	c.Jobs = nil
	assert.Error(t, c.Validate())

	c = base()
	c.Jobs[0].Input = ""
	assert.Error(t, c.Validate())

	c = base()
	c.Jobs[0].OutputDir = ""
	assert.Error(t, c.Validate())

	c = base()
	c.Jobs[0].Reference = "ref"
	assert.Error(t, c.Validate())

	c = base()
	c.Jobs = append(c.Jobs, Job{Name: "a", Input: "*.xml", OutputDir: "out2"})
	assert.Error(t, c.Validate())
}
