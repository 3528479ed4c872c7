// Package config loads server configuration and watches the graph
// definition for edits.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/g-s-k-zoro/gsk-man-page/internal/contact"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interaction"
	"github.com/g-s-k-zoro/gsk-man-page/internal/layout"
	"github.com/g-s-k-zoro/gsk-man-page/internal/observability"
	"github.com/g-s-k-zoro/gsk-man-page/internal/scene"
	"github.com/g-s-k-zoro/gsk-man-page/internal/viewport"
	"github.com/g-s-k-zoro/gsk-man-page/internal/visitor"
)

// EnvPrefix prefixes every environment override, e.g. PORTFOLIO_LAYOUT_LINK_DISTANCE.
const EnvPrefix = "PORTFOLIO"

// Config holds all application configuration.
type Config struct {
	Environment string `mapstructure:"environment" yaml:"environment"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`

	Server      ServerConfig                `mapstructure:"server" yaml:"server"`
	Graph       GraphConfig                 `mapstructure:"graph" yaml:"graph"`
	Layout      layout.Config               `mapstructure:"layout" yaml:"layout"`
	Render      RenderConfig                `mapstructure:"render" yaml:"render"`
	Interaction interaction.Config          `mapstructure:"interaction" yaml:"interaction"`
	Viewport    viewport.Config             `mapstructure:"viewport" yaml:"viewport"`
	Positions   PositionsConfig             `mapstructure:"positions" yaml:"positions"`
	Search      SearchConfig                `mapstructure:"search" yaml:"search"`
	Visitor     visitor.Config              `mapstructure:"visitor" yaml:"visitor"`
	Contact     contact.Config              `mapstructure:"contact" yaml:"contact"`
	Metrics     MetricsConfig               `mapstructure:"metrics" yaml:"metrics"`
	Tracing     observability.TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" yaml:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type GraphConfig struct {
	DefinitionPath string `mapstructure:"definition_path" yaml:"definition_path"`
	Watch          bool   `mapstructure:"watch" yaml:"watch"`
}

type RenderConfig struct {
	Visual    string            `mapstructure:"visual" yaml:"visual"`
	FrameRate int               `mapstructure:"frame_rate" yaml:"frame_rate"`
	Labels    scene.LabelConfig `mapstructure:"labels" yaml:"labels"`
}

// FrameInterval is the time between animation frames.
func (r RenderConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(r.FrameRate)
}

type PositionsConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
}

type SearchConfig struct {
	ContentPath string `mapstructure:"content_path" yaml:"content_path"`
	Limit       int    `mapstructure:"limit" yaml:"limit"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Environment: "development",
		LogLevel:    "",
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:5173"},
		},
		Graph: GraphConfig{
			DefinitionPath: "data/site-structure.json",
			Watch:          false,
		},
		Layout: layout.DefaultConfig(),
		Render: RenderConfig{
			Visual:    "sketch",
			FrameRate: 60,
			Labels:    scene.DefaultLabelConfig(),
		},
		Interaction: interaction.DefaultConfig(),
		Viewport:    viewport.DefaultConfig(),
		Positions:   PositionsConfig{Directory: "var/positions"},
		Search:      SearchConfig{ContentPath: "data/content.yaml", Limit: 5},
		Visitor:     visitor.DefaultConfig(),
		Contact:     contact.DefaultConfig(),
		Metrics:     MetricsConfig{Enabled: true, Namespace: "portfolio"},
		Tracing: observability.TracingConfig{
			ServiceName: "gsk-portfolio",
			Endpoint:    "localhost:4317",
			Insecure:    true,
		},
	}
}

// LoadConfig layers defaults, the optional YAML file at path and the
// environment, in increasing priority, then validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v, Default()); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// un-prefixed names used by the deployment scripts
	_ = v.BindEnv("environment", EnvPrefix+"_ENVIRONMENT", "ENVIRONMENT")
	_ = v.BindEnv("log_level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("server.address", EnvPrefix+"_SERVER_ADDRESS", "SERVER_ADDRESS")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Tracing.Environment = cfg.Environment

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every leaf of def so that environment overrides
// apply to keys the config file does not mention.
func setDefaults(v *viper.Viper, def Config) error {
	raw, err := yaml.Marshal(def)
	if err != nil {
		return fmt.Errorf("encoding defaults: %w", err)
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("decoding defaults: %w", err)
	}
	var walk func(prefix string, m map[string]interface{})
	walk = func(prefix string, m map[string]interface{}) {
		for k, val := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if sub, ok := val.(map[string]interface{}); ok {
				walk(key, sub)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)
	return nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Graph.DefinitionPath == "" {
		problems = append(problems, "graph.definition_path is required")
	}
	if c.Render.FrameRate <= 0 {
		problems = append(problems, "render.frame_rate must be positive")
	}
	if c.Render.Labels.MaxLines < 1 || c.Render.Labels.FontSize <= 0 || c.Render.Labels.WrappedFontSize <= 0 {
		problems = append(problems, "render.labels needs positive font sizes and at least one line")
	}
	if c.Viewport.MinWidth <= 0 || c.Viewport.MinHeight <= 0 {
		problems = append(problems, "viewport minimum size must be positive")
	}
	if c.Viewport.RadialFactor < 0 || c.Viewport.RadialFactor > 0.5 {
		problems = append(problems, "viewport.radial_factor must be in [0,0.5]")
	}
	if c.Interaction.MinScale <= 0 || c.Interaction.MinScale > c.Interaction.MaxScale {
		problems = append(problems, "interaction scale range is inverted or empty")
	}
	if c.Positions.Directory == "" {
		problems = append(problems, "positions.directory is required")
	}
	if err := c.Layout.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
