package config

import (
	"os"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/stylebuilder/internal/foundation/errors"
)

// DefaultPath is used when no configuration file is given on the command line.
const DefaultPath = "stylebuilder.yaml"

// Config represents the builder configuration. It is read-only after Load.
type Config struct {
	Title string `yaml:"title"`
	// StyleGuide is the style guide document consumed by the builder.
	StyleGuide string `yaml:"styleguide"`
	// Source lists the template search roots in priority order.
	Source      []string `yaml:"source"`
	Destination string   `yaml:"destination"`
	// Builder is the directory holding the page templates.
	Builder           string   `yaml:"builder"`
	Homepage          string   `yaml:"homepage"`
	Placeholder       string   `yaml:"placeholder"`
	TemplateExtension string   `yaml:"template_extension"`
	ExamplePrefix     string   `yaml:"example_prefix"`
	NavDepth          int      `yaml:"nav_depth"`
	CSS               []string `yaml:"css,omitempty"`
	JS                []string `yaml:"js,omitempty"`

	Log   LogConfig   `yaml:"log"`
	Watch WatchConfig `yaml:"watch"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WatchConfig represents watch loop configuration.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	// Interval triggers periodic rebuilds when positive.
	Interval    time.Duration `yaml:"interval"`
	MetricsAddr string        `yaml:"metrics_addr,omitempty"`
}

// Load loads configuration from path on fs: environment variables are
// expanded, defaults applied, and the result validated.
func Load(fs afero.Fs, path string) (*Config, error) {
	loadEnvFiles()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return Parse(data)
}

// Parse decodes configuration content, applying env expansion, defaults and
// validation.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			Fatal().
			Build()
	}
	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Example returns the configuration written by Init.
func Example() Config {
	return Config{
		Title:             "Style Guide",
		StyleGuide:        "styleguide.yaml",
		Source:            []string{"./components"},
		Destination:       "./styleguide",
		Builder:           "./builder",
		Homepage:          "homepage.md",
		Placeholder:       DefaultPlaceholder,
		TemplateExtension: DefaultTemplateExtension,
		ExamplePrefix:     DefaultExamplePrefix,
		NavDepth:          DefaultNavDepth,
		CSS:               []string{"styleguide.css"},
		Log:               LogConfig{Level: "info", Format: "text"},
		Watch:             WatchConfig{Debounce: DefaultDebounce},
	}
}

// Init writes an example configuration file.
func Init(fs afero.Fs, path string, force bool) error {
	if exists, _ := afero.Exists(fs, path); exists && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Example()
	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return errors.FileSystemError("failed to write config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
