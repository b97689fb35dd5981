// Package config provides configuration loading and validation for eva.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/eva/pkg/layout"
)

// Sentinel validation errors.
var (
	ErrInvalidLineHeight   = errors.New("layout line height must be positive")
	ErrInvalidCharWidth    = errors.New("layout char width must be positive")
	ErrInvalidGap          = errors.New("layout gaps must be positive")
	ErrInvalidDepth        = errors.New("default depth must not be negative")
	ErrInvalidHistoryLimit = errors.New("history limit must not be negative")
	ErrInvalidLogLevel     = errors.New("unknown log level")
	ErrInvalidLogFormat    = errors.New("unknown log format")
	ErrConfigExists        = errors.New("config file already exists")
)

// DirName is the per-project directory holding config, history and logs.
const DirName = ".eva"

// FileName is the config file inside DirName.
const FileName = "config.yaml"

const (
	defaultPrompt          = "eva> "
	defaultRewriterTimeout = 10 * time.Second
	defaultHistoryLimit    = 1000
)

// Config holds all configuration for eva.
type Config struct {
	Layout  layout.Config `mapstructure:"layout" yaml:"layout"`
	REPL    REPLConfig    `mapstructure:"repl" yaml:"repl"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	DataDir string        `mapstructure:"data_dir" yaml:"data_dir"`

	// Path is the file the config was read from, empty for pure defaults.
	Path string `mapstructure:"-" yaml:"-"`
}

// REPLConfig holds prompt and rewriter settings.
type REPLConfig struct {
	Prompt          string        `mapstructure:"prompt" yaml:"prompt"`
	RewriterCommand []string      `mapstructure:"rewriter_command" yaml:"rewriter_command"`
	RewriterTimeout time.Duration `mapstructure:"rewriter_timeout" yaml:"rewriter_timeout"`
	HistoryLimit    int           `mapstructure:"history_limit" yaml:"history_limit"`
}

// UIConfig holds viewer settings.
type UIConfig struct {
	Animate   bool `mapstructure:"animate" yaml:"animate"`
	Mouse     bool `mapstructure:"mouse" yaml:"mouse"`
	AltScreen bool `mapstructure:"alt_screen" yaml:"alt_screen"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: layout.CellConfig(),
		REPL: REPLConfig{
			Prompt:          defaultPrompt,
			RewriterTimeout: defaultRewriterTimeout,
			HistoryLimit:    defaultHistoryLimit,
		},
		UI:      UIConfig{Animate: true, Mouse: true, AltScreen: true},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig loads configuration from file and environment variables.
// With an empty configPath the file is discovered: .eva/config.yaml in the
// current directory or an ancestor, then the user config directory.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	if configPath == "" {
		configPath = Discover()
	}
	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
		viperCfg.SetConfigType("yaml")
	}

	viperCfg.SetEnvPrefix("EVA")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		if err := viperCfg.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viperCfg.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Path = configPath

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if config.DataDir == "" {
		config.DataDir = defaultDataDir(configPath)
	}
	if config.Logging.File == "" {
		config.Logging.File = filepath.Join(config.DataDir, "eva.log")
	}
	return &config, nil
}

// setDefaults mirrors Default into viper so every key is bindable from the
// environment.
func setDefaults(viperCfg *viper.Viper) {
	d := Default()

	viperCfg.SetDefault("layout.line_height", d.Layout.LineHeight)
	viperCfg.SetDefault("layout.char_width", d.Layout.CharWidth)
	viperCfg.SetDefault("layout.x_gap", d.Layout.XGap)
	viperCfg.SetDefault("layout.y_gap", d.Layout.YGap)
	viperCfg.SetDefault("layout.fan_out_per_leaf", d.Layout.FanOutPerLeaf)
	viperCfg.SetDefault("layout.max_label_cols", d.Layout.MaxLabelCols)
	viperCfg.SetDefault("layout.default_depth", d.Layout.DefaultDepth)

	viperCfg.SetDefault("repl.prompt", d.REPL.Prompt)
	viperCfg.SetDefault("repl.rewriter_command", []string{})
	viperCfg.SetDefault("repl.rewriter_timeout", d.REPL.RewriterTimeout.String())
	viperCfg.SetDefault("repl.history_limit", d.REPL.HistoryLimit)

	viperCfg.SetDefault("ui.animate", d.UI.Animate)
	viperCfg.SetDefault("ui.mouse", d.UI.Mouse)
	viperCfg.SetDefault("ui.alt_screen", d.UI.AltScreen)

	viperCfg.SetDefault("logging.level", d.Logging.Level)
	viperCfg.SetDefault("logging.format", d.Logging.Format)
	viperCfg.SetDefault("logging.file", "")

	viperCfg.SetDefault("data_dir", "")
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	l := config.Layout
	if l.LineHeight <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidLineHeight, l.LineHeight)
	}
	if l.CharWidth <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCharWidth, l.CharWidth)
	}
	if l.XGap < 0 || l.YGap <= 0 || l.FanOutPerLeaf < 0 {
		return fmt.Errorf("%w: x_gap=%v y_gap=%v fan_out_per_leaf=%v", ErrInvalidGap, l.XGap, l.YGap, l.FanOutPerLeaf)
	}
	if l.DefaultDepth < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDepth, l.DefaultDepth)
	}
	if config.REPL.HistoryLimit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHistoryLimit, config.REPL.HistoryLimit)
	}
	if _, err := parseLevel(config.Logging.Level); err != nil {
		return err
	}
	switch config.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}
	return nil
}

// Marshal renders the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Init writes the default config to dir/.eva/config.yaml and makes sure the
// directory is git-ignored. It refuses to overwrite an existing file.
func Init(dir string) (string, error) {
	evaDir := filepath.Join(dir, DirName)
	path := filepath.Join(evaDir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(evaDir, 0o755); err != nil {
		return "", err
	}

	data, err := Default().Marshal()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	if err := EnsureIgnored(dir); err != nil {
		return path, fmt.Errorf("updating .gitignore: %w", err)
	}
	return path, nil
}
