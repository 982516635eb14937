package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/longkey1/gptmd/internal/gptmd/convert"
	"github.com/longkey1/gptmd/internal/gptmd/labels"
)

// Config holds the configuration for document conversion
type Config struct {
	Target           string `toml:"target" mapstructure:"target"`                       // "github" or "compact"
	Lang             string `toml:"lang" mapstructure:"lang"`                           // Built-in label preset ("en", "zh")
	LabelsFile       string `toml:"labels_file" mapstructure:"labels_file"`             // Optional TOML file overriding labels
	OutDir           string `toml:"out_dir" mapstructure:"out_dir"`                     // Output directory for multi-conversation exports
	LogLevel         string `toml:"log_level" mapstructure:"log_level"`                 // debug, info, warn, error
	ImagePlaceholder string `toml:"image_placeholder" mapstructure:"image_placeholder"` // Text for image parts (empty = drop)
	WatchDebounceMS  int    `toml:"watch_debounce_ms" mapstructure:"watch_debounce_ms"` // Quiet period before re-converting in watch mode
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig() *Config {
	return &Config{
		Target:           string(convert.TargetGitHub),
		Lang:             labels.DefaultLang,
		LabelsFile:       "",
		OutDir:           "",
		LogLevel:         "warn",
		ImagePlaceholder: "",
		WatchDebounceMS:  300,
	}
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Convert configured paths to absolute paths
	for _, p := range []*string{&config.LabelsFile, &config.OutDir} {
		if *p == "" {
			continue
		}
		absPath, err := ResolvePath(ExpandPath(*p))
		if err != nil {
			return nil, fmt.Errorf("error resolving path '%s': %w", *p, err)
		}
		*p = absPath
	}

	if config.WatchDebounceMS < 0 {
		return nil, fmt.Errorf("watch_debounce_ms must not be negative (got %d)", config.WatchDebounceMS)
	}

	return config, nil
}

// GetTarget returns the validated output target
func (c *Config) GetTarget() (convert.Target, error) {
	return convert.ParseTarget(c.Target)
}

// GetLabels returns the label preset for Lang with LabelsFile applied on top
func (c *Config) GetLabels() (labels.Labels, error) {
	l, err := labels.Preset(c.Lang)
	if err != nil {
		return labels.Labels{}, err
	}
	if c.LabelsFile == "" {
		return l, nil
	}
	return labels.LoadFile(c.LabelsFile, l)
}
