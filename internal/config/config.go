package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	TempDir string `yaml:"temp_dir"`
	Workers int    `yaml:"workers"`

	// Transition search settings
	Search SearchConfig `yaml:"search"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Metrics settings
	Metrics MetricsConfig `yaml:"metrics"`
}

// SearchConfig tunes how transitions between adjacent clips are searched.
type SearchConfig struct {
	// Window is the number of seconds searched at the tail of the earlier
	// clip and at the head of the later one.
	Window float64 `yaml:"window"`
	// SampleRate is the number of candidate timestamps per second of window.
	SampleRate float64 `yaml:"sample_rate"`
	// Epsilon keeps tail samples this many seconds away from the end of stream.
	Epsilon float64 `yaml:"epsilon"`
	// CompareHeight is the height frames are resized to before comparison.
	CompareHeight int `yaml:"compare_height"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf"`
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
}

type MetricsConfig struct {
	// Addr is the listen address of the /metrics endpoint; empty disables it.
	Addr string `yaml:"addr"`
}

// Load reads configuration from file or returns defaults.
// Environment variables override values from the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
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

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the transition search or encoder cannot work with.
func (c *Config) Validate() error {
	if c.Search.Window <= 0 {
		return fmt.Errorf("search.window must be > 0, got %g", c.Search.Window)
	}
	if c.Search.SampleRate <= 0 {
		return fmt.Errorf("search.sample_rate must be > 0, got %g", c.Search.SampleRate)
	}
	if c.Search.Epsilon < 0 {
		return fmt.Errorf("search.epsilon cannot be negative")
	}
	if c.Search.CompareHeight <= 0 {
		return fmt.Errorf("search.compare_height must be > 0")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	if c.FFmpeg.CRF < 0 || c.FFmpeg.CRF > 51 {
		return fmt.Errorf("ffmpeg.crf must be between 0 and 51")
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TempDir: os.TempDir(),
		Workers: 4,
		Search: SearchConfig{
			Window:        2.0,
			SampleRate:    10,
			Epsilon:       0.01,
			CompareHeight: 512,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
			Preset:     "medium",
			CRF:        23,
			VideoCodec: "libx264",
			AudioCodec: "aac",
		},
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CLIPSTITCH_FFMPEG"); v != "" {
		c.FFmpeg.BinaryPath = v
	}
	if v := os.Getenv("CLIPSTITCH_FFPROBE"); v != "" {
		c.FFmpeg.ProbePath = v
	}
	if v := os.Getenv("CLIPSTITCH_TEMP_DIR"); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv("CLIPSTITCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CLIPSTITCH_WORKERS: %w", err)
		}
		c.Workers = n
	}
	return nil
}

func findConfigFile() string {
	candidates := []string{
		"./clipstitch.yaml",
		"./clipstitch.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".clipstitch", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
