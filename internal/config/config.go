package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// DESKTOP_RUNNER_FINDER_FIND_WAIT=10s.
const EnvPrefix = "DESKTOP_RUNNER"

// MaxReducedTimeout caps the timeout used for the single retry of a failed step.
const MaxReducedTimeout = 5 * time.Second

// Config is the full settings object for a run.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Finder FinderConfig `mapstructure:"finder" yaml:"finder"`
	Screen ScreenConfig `mapstructure:"screen" yaml:"screen"`
	Runner RunnerConfig `mapstructure:"runner" yaml:"runner"`
	Images ImagesConfig `mapstructure:"images" yaml:"images"`
	Visual VisualConfig `mapstructure:"visual" yaml:"visual"`
	OCR    OCRConfig    `mapstructure:"ocr" yaml:"ocr"`
	Tree   TreeConfig   `mapstructure:"tree" yaml:"tree"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// FinderConfig controls element lookup timing.
type FinderConfig struct {
	// FindWait is the nominal per-step find timeout.
	FindWait time.Duration `mapstructure:"find_wait" yaml:"find_wait"`
	// MaxWait is used by the 3-argument waitTo* actions.
	MaxWait        time.Duration `mapstructure:"max_wait" yaml:"max_wait"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	SearchAttempts int           `mapstructure:"search_attempts" yaml:"search_attempts"`
	WindowAttempts int           `mapstructure:"window_attempts" yaml:"window_attempts"`
}

// ScreenConfig describes the display the tree coordinates are reported in.
type ScreenConfig struct {
	// Scale is the display scaling percentage (100 = no scaling).
	Scale int `mapstructure:"scale" yaml:"scale"`
}

// RunnerConfig controls the step dispatcher.
type RunnerConfig struct {
	Retry          bool          `mapstructure:"retry" yaml:"retry"`
	ReducedTimeout time.Duration `mapstructure:"reduced_timeout" yaml:"reduced_timeout"`
	StepDelay      time.Duration `mapstructure:"step_delay" yaml:"step_delay"`
	ArtifactDir    string        `mapstructure:"artifact_dir" yaml:"artifact_dir"`
}

// ImagesConfig locates template images referenced by IMAGE and OCR steps.
type ImagesConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// VisualConfig tunes template matching.
type VisualConfig struct {
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
}

// OCRConfig tunes the text recognizer.
type OCRConfig struct {
	Language string `mapstructure:"language" yaml:"language"`
}

// TreeConfig selects the accessibility tree source.
type TreeConfig struct {
	// SnapshotFile replays a captured tree instead of reading the live desktop.
	SnapshotFile string `mapstructure:"snapshot_file" yaml:"snapshot_file"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"`
	Port      int    `mapstructure:"port" yaml:"port"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "desktop-runner")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", false)

	// -- Finder --
	v.SetDefault("finder.find_wait", "10s")
	v.SetDefault("finder.max_wait", "60s")
	v.SetDefault("finder.poll_interval", "50ms")
	v.SetDefault("finder.search_attempts", 1)
	v.SetDefault("finder.window_attempts", 10)

	// -- Screen --
	v.SetDefault("screen.scale", 100)

	// -- Runner --
	v.SetDefault("runner.retry", true)
	v.SetDefault("runner.reduced_timeout", "5s")
	v.SetDefault("runner.step_delay", "100ms")
	v.SetDefault("runner.artifact_dir", "")

	// -- Images / Visual / OCR --
	v.SetDefault("images.dir", "images")
	v.SetDefault("visual.threshold", 0.9)
	v.SetDefault("ocr.language", "eng")

	// -- Tree --
	v.SetDefault("tree.snapshot_file", "")

	// -- Server --
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.port", 8080)
}

// NewDefaultConfig returns a Config populated only from defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		// Defaults are static; failing to decode them is a programming error.
		panic(fmt.Sprintf("config: decoding defaults: %v", err))
	}
	return cfg
}

// NewConfigFromViper decodes v into a Config.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Load builds a validated Config from defaults, an optional .env file,
// an optional YAML config file and DESKTOP_RUNNER_* environment variables.
// An empty cfgFile searches ./desktop-runner.yaml and ignores its absence.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("desktop-runner")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := NewConfigFromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that settings are internally consistent.
func (c *Config) Validate() error {
	if c.Finder.FindWait <= 0 {
		return fmt.Errorf("finder.find_wait must be positive")
	}
	if c.Finder.MaxWait <= 0 {
		return fmt.Errorf("finder.max_wait must be positive")
	}
	if c.Finder.PollInterval <= 0 {
		return fmt.Errorf("finder.poll_interval must be positive")
	}
	if c.Finder.SearchAttempts < 1 {
		return fmt.Errorf("finder.search_attempts must be at least 1")
	}
	if c.Finder.WindowAttempts < 1 {
		return fmt.Errorf("finder.window_attempts must be at least 1")
	}
	if c.Screen.Scale < 1 || c.Screen.Scale > 400 {
		return fmt.Errorf("screen.scale must be between 1 and 400, got %d", c.Screen.Scale)
	}
	if c.Runner.ReducedTimeout <= 0 || c.Runner.ReducedTimeout > MaxReducedTimeout {
		return fmt.Errorf("runner.reduced_timeout must be in (0, %s], got %s", MaxReducedTimeout, c.Runner.ReducedTimeout)
	}
	if c.Runner.StepDelay < 0 {
		return fmt.Errorf("runner.step_delay must not be negative")
	}
	if c.Visual.Threshold <= 0 || c.Visual.Threshold > 1 {
		return fmt.Errorf("visual.threshold must be in (0, 1], got %v", c.Visual.Threshold)
	}
	switch c.Server.Transport {
	case "stdio", "streamable-http":
	default:
		return fmt.Errorf("server.transport must be stdio or streamable-http, got %q", c.Server.Transport)
	}
	return nil
}
