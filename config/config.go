// Package config loads pipeline settings from YAML, .env and SPEAKERAI_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to environment overrides, e.g. SPEAKERAI_SERVER_PORT.
const EnvPrefix = "SPEAKERAI"

type Service struct {
	URL string `yaml:"url" mapstructure:"url"`
}
type Services struct {
	ASR            Service `yaml:"asr" mapstructure:"asr"`
	Sentiment      Service `yaml:"sentiment" mapstructure:"sentiment"`
	Visualization  Service `yaml:"visualization" mapstructure:"visualization"`
	TimeoutSeconds int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}
type Audio struct {
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate"`
}
type Segmentation struct {
	MinDuration float64 `yaml:"min_duration" mapstructure:"min_duration"`
	MaxDuration float64 `yaml:"max_duration" mapstructure:"max_duration"`
}
type Matching struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
}
type Paths struct {
	Data     string `yaml:"data" mapstructure:"data"`
	Outputs  string `yaml:"outputs" mapstructure:"outputs"`
	Uploads  string `yaml:"uploads" mapstructure:"uploads"`
	Database string `yaml:"database" mapstructure:"database"`
}
type Server struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}
type Root struct {
	Pipeline struct {
		Name    string `yaml:"name" mapstructure:"name"`
		Version string `yaml:"version" mapstructure:"version"`
		LogLvl  string `yaml:"log_level" mapstructure:"log_level"`
	} `yaml:"pipeline" mapstructure:"pipeline"`
	Audio        Audio        `yaml:"audio" mapstructure:"audio"`
	Segmentation Segmentation `yaml:"segmentation" mapstructure:"segmentation"`
	Matching     Matching     `yaml:"matching" mapstructure:"matching"`
	Services     Services     `yaml:"services" mapstructure:"services"`
	Paths        Paths        `yaml:"paths" mapstructure:"paths"`
	Server       Server       `yaml:"server" mapstructure:"server"`
}

var defaults = map[string]any{
	"pipeline.name":                 "speakerai",
	"pipeline.version":              "0.1.0",
	"pipeline.log_level":            "info",
	"audio.sample_rate":             16000,
	"segmentation.min_duration":     2.5,
	"segmentation.max_duration":     15.0,
	"matching.similarity_threshold": 0.82,
	"services.asr.url":              "",
	"services.sentiment.url":        "",
	"services.visualization.url":    "",
	"services.timeout_seconds":      60,
	"paths.data":                    "data",
	"paths.outputs":                 filepath.Join("data", "outputs"),
	"paths.uploads":                 filepath.Join("data", "uploads"),
	"paths.database":                filepath.Join("data", "speaker_profiles.sqlite3"),
	"server.host":                   "0.0.0.0",
	"server.port":                   7883,
}

// Load reads .env, then the first of config/<CONFIG_ENV>/config.yaml and
// config.yaml that exists, then SPEAKERAI_* variables. No file is fine.
func Load() (*Root, error) {
	_ = godotenv.Load()

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	guess := []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
	for _, p := range guess {
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return LoadFile("")
}

// LoadFile is Load with an explicit file; an empty path means defaults and
// environment only.
func LoadFile(path string) (*Root, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the built-in configuration.
func Default() *Root {
	cfg, err := LoadFile("")
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

func (c *Root) Validate() error {
	var errs []error
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate))
	}
	if c.Segmentation.MaxDuration < 0 || c.Segmentation.MinDuration < 0 {
		errs = append(errs, errors.New("segmentation durations must not be negative"))
	}
	if t := c.Matching.SimilarityThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("matching.similarity_threshold must be within [0,1], got %g", t))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Paths.Outputs == "" || c.Paths.Database == "" {
		errs = append(errs, errors.New("paths.outputs and paths.database are required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// EnsureDirectories creates the output, upload and database directories.
func (c *Root) EnsureDirectories() error {
	dirs := []string{
		c.Paths.Data,
		c.TranscriptDir(),
		c.ReportDir(),
		c.Paths.Uploads,
		filepath.Dir(c.Paths.Database),
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Root) TranscriptDir() string { return filepath.Join(c.Paths.Outputs, "transcripts") }
func (c *Root) ReportDir() string     { return filepath.Join(c.Paths.Outputs, "reports") }

func (c *Root) ServiceTimeout() time.Duration { return DurSeconds(c.Services.TimeoutSeconds) }

func (c *Root) Addr() string { return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port) }

// WriteDefault writes the built-in configuration as YAML. Existing files are
// left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(Default()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
