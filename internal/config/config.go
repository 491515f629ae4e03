package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config defines how the tool is located and how runs are supervised
type Config struct {
	// Mode is "development" (tool resolved from PATH) or "packaged"
	// (tool bundled under ResourcesDir/bin)
	Mode           string        `yaml:"mode"`
	ResourcesDir   string        `yaml:"resources_dir"`
	LogLevel       string        `yaml:"log_level"`
	TerminateGrace time.Duration `yaml:"terminate_grace"`

	// Verbose logs every tool command line at info level
	Verbose bool `yaml:"verbose"`
}

const (
	ModeDevelopment = "development"
	ModePackaged    = "packaged"

	// Environment overrides, applied after the config file
	EnvMode           = "FFCMD_MODE"
	EnvResourcesDir   = "FFCMD_RESOURCES_DIR"
	EnvLogLevel       = "FFCMD_LOG_LEVEL"
	EnvTerminateGrace = "FFCMD_TERMINATE_GRACE"

	// Tool names
	FFmpegTool  = "ffmpeg"
	FFprobeTool = "ffprobe"

	// Extract audio settings
	ExtractAudioCodec   = "libmp3lame"
	ExtractAudioQuality = "2" // VBR level, 0 best .. 9 worst
	ExtractAudioExt     = ".mp3"

	// Compress settings
	CompressPreset       = "medium"
	CompressAudioBitrate = "128k"

	// Resize settings
	ResizeCRF = "23"

	// Default time between the termination signal and a hard kill
	DefaultTerminateGrace = 5 * time.Second
)

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Mode:           ModeDevelopment,
		LogLevel:       "info",
		TerminateGrace: DefaultTerminateGrace,
	}
}

// Load reads an optional YAML file on top of the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvMode); v != "" {
		c.Mode = v
	}
	if v := os.Getenv(EnvResourcesDir); v != "" {
		c.ResourcesDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvTerminateGrace); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvTerminateGrace)
		}
		c.TerminateGrace = d
	}
	return nil
}

// Validate normalizes the mode and rejects values nothing downstream can use
func (c *Config) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = ModeDevelopment
	}
	if c.Mode != ModeDevelopment && c.Mode != ModePackaged {
		return errors.Errorf("unsupported mode: %s (supported: %s, %s)", c.Mode, ModeDevelopment, ModePackaged)
	}
	if c.TerminateGrace < 0 {
		return errors.Errorf("terminate_grace must not be negative, got %s", c.TerminateGrace)
	}
	return nil
}
