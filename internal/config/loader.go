package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "labelocr"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "LABELOCR"
)

// Loader handles loading configuration from files, environment and defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader over the global viper instance so cobra flag
// bindings are honored.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load resolves configuration from the search paths, environment variables
// and defaults, then validates it. A missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadWithFile resolves configuration from a specific file. An empty path
// falls back to the standard search paths.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configFile, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Set overrides a value in the configuration.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for flag binding.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath("/etc/labelocr")
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "labelocr"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "labelocr"))
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("pipeline.work_dir", defaults.Pipeline.WorkDir)
	l.v.SetDefault("pipeline.method", defaults.Pipeline.Method)
	l.v.SetDefault("pipeline.debug", defaults.Pipeline.Debug)

	pp := defaults.Pipeline.Preprocess
	l.v.SetDefault("pipeline.preprocess.min_width", pp.MinWidth)
	l.v.SetDefault("pipeline.preprocess.target_long_edge", pp.TargetLongEdge)
	l.v.SetDefault("pipeline.preprocess.contrast_tiles", pp.ContrastTiles)
	l.v.SetDefault("pipeline.preprocess.contrast_clip", pp.ContrastClip)
	l.v.SetDefault("pipeline.preprocess.denoise_radius", pp.DenoiseRadius)
	l.v.SetDefault("pipeline.preprocess.denoise_sigma_space", pp.DenoiseSigmaS)
	l.v.SetDefault("pipeline.preprocess.denoise_sigma_color", pp.DenoiseSigmaC)
	l.v.SetDefault("pipeline.preprocess.sharpen_sigma", pp.SharpenSigma)
	l.v.SetDefault("pipeline.preprocess.binarize_window", pp.BinarizeWindow)
	l.v.SetDefault("pipeline.preprocess.binarize_bias", pp.BinarizeBias)
	l.v.SetDefault("pipeline.preprocess.morph_radius", pp.MorphRadius)
	l.v.SetDefault("pipeline.preprocess.median_size", pp.MedianSize)

	l.v.SetDefault("pipeline.tesseract.languages", defaults.Pipeline.Tesseract.Languages)
	l.v.SetDefault("pipeline.tesseract.tessdata_prefix", defaults.Pipeline.Tesseract.TessdataPrefix)

	l.v.SetDefault("pipeline.deep.model_path", defaults.Pipeline.Deep.ModelPath)
	l.v.SetDefault("pipeline.deep.dict_path", defaults.Pipeline.Deep.DictPath)
	l.v.SetDefault("pipeline.deep.image_height", defaults.Pipeline.Deep.ImageHeight)
	l.v.SetDefault("pipeline.deep.num_threads", defaults.Pipeline.Deep.NumThreads)

	l.v.SetDefault("output.format", defaults.Output.Format)
}

// GenerateDefaultConfigFile writes the default configuration to filename.
func GenerateDefaultConfigFile(filename string) error {
	loader := &Loader{v: viper.New()}
	loader.setDefaults()
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	return loader.v.WriteConfigAs(filename)
}

// GetConfigSearchPaths returns where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home, filepath.Join(home, ".config", "labelocr"))
	}
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "labelocr"))
	}
	paths = append(paths, "/etc/labelocr")
	return paths
}
