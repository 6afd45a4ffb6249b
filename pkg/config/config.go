package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-reflax-raytracer/pkg/app"
)

// EnvPrefix prefixes environment overrides, e.g. REFLAX_SERVER_PORT
const EnvPrefix = "REFLAX"

// DefaultFile is the config file searched for in the working directory
const DefaultFile = "reflax.yaml"

// Config is the complete program configuration
type Config struct {
	Window WindowConfig `yaml:"window" mapstructure:"window"`
	Render RenderConfig `yaml:"render" mapstructure:"render"`
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// WindowConfig is the initial size of the live image
type WindowConfig struct {
	Width  int `yaml:"width" mapstructure:"width"`
	Height int `yaml:"height" mapstructure:"height"`
}

// RenderConfig holds the quality and timing tuning of the render loop
type RenderConfig struct {
	// Seed of the jitter generator, 0 derives one from the clock and process id
	Seed                  int32         `yaml:"seed" mapstructure:"seed"`
	StaticSamples         int           `yaml:"static_samples" mapstructure:"static_samples"`
	MotionMinSamples      int           `yaml:"motion_min_samples" mapstructure:"motion_min_samples"`
	MotionMaxSamples      int           `yaml:"motion_max_samples" mapstructure:"motion_max_samples"`
	StaticReflections     int           `yaml:"static_reflections" mapstructure:"static_reflections"`
	MotionReflections     int           `yaml:"motion_reflections" mapstructure:"motion_reflections"`
	ScreenshotReflections int           `yaml:"screenshot_reflections" mapstructure:"screenshot_reflections"`
	MinMotionFrameTime    time.Duration `yaml:"min_motion_frame_time" mapstructure:"min_motion_frame_time"`
	MaxMotionFrameTime    time.Duration `yaml:"max_motion_frame_time" mapstructure:"max_motion_frame_time"`
	MinChunkTime          time.Duration `yaml:"min_chunk_time" mapstructure:"min_chunk_time"`
	MaxChunkTime          time.Duration `yaml:"max_chunk_time" mapstructure:"max_chunk_time"`
	IdleSleep             time.Duration `yaml:"idle_sleep" mapstructure:"idle_sleep"`
}

// PathsConfig locates input textures and output screenshots
type PathsConfig struct {
	Textures    string `yaml:"textures" mapstructure:"textures"`
	Screenshots string `yaml:"screenshots" mapstructure:"screenshots"`
}

// ServerConfig configures the web display
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	s := app.DefaultSettings()
	return &Config{
		Window: WindowConfig{Width: 640, Height: 480},
		Render: RenderConfig{
			Seed:                  0,
			StaticSamples:         s.StaticSamples,
			MotionMinSamples:      s.MotionMinSamples,
			MotionMaxSamples:      s.MotionMaxSamples,
			StaticReflections:     s.StaticReflections,
			MotionReflections:     s.MotionReflections,
			ScreenshotReflections: s.ScreenshotReflections,
			MinMotionFrameTime:    s.MinMotionFrameTime,
			MaxMotionFrameTime:    s.MaxMotionFrameTime,
			MinChunkTime:          s.MinChunkTime,
			MaxChunkTime:          s.MaxChunkTime,
			IdleSleep:             s.IdleSleep,
		},
		Paths: PathsConfig{
			Textures:    "textures",
			Screenshots: s.ScreenshotDir,
		},
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads the configuration. An empty path looks for reflax.yaml in the
// working directory and falls back to the defaults when there is none; an
// explicit path must exist. Environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, filepath.Ext(DefaultFile)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("window.width", cfg.Window.Width)
	v.SetDefault("window.height", cfg.Window.Height)

	v.SetDefault("render.seed", cfg.Render.Seed)
	v.SetDefault("render.static_samples", cfg.Render.StaticSamples)
	v.SetDefault("render.motion_min_samples", cfg.Render.MotionMinSamples)
	v.SetDefault("render.motion_max_samples", cfg.Render.MotionMaxSamples)
	v.SetDefault("render.static_reflections", cfg.Render.StaticReflections)
	v.SetDefault("render.motion_reflections", cfg.Render.MotionReflections)
	v.SetDefault("render.screenshot_reflections", cfg.Render.ScreenshotReflections)
	v.SetDefault("render.min_motion_frame_time", cfg.Render.MinMotionFrameTime)
	v.SetDefault("render.max_motion_frame_time", cfg.Render.MaxMotionFrameTime)
	v.SetDefault("render.min_chunk_time", cfg.Render.MinChunkTime)
	v.SetDefault("render.max_chunk_time", cfg.Render.MaxChunkTime)
	v.SetDefault("render.idle_sleep", cfg.Render.IdleSleep)

	v.SetDefault("paths.textures", cfg.Paths.Textures)
	v.SetDefault("paths.screenshots", cfg.Paths.Screenshots)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("log.level", cfg.Log.Level)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}

	r := c.Render
	if r.StaticSamples <= 0 {
		return fmt.Errorf("render.static_samples must be positive, got %d", r.StaticSamples)
	}
	if r.MotionMinSamples == 0 || r.MotionMaxSamples == 0 {
		return errors.New("render motion samples must not be zero")
	}
	if r.MotionMaxSamples > r.MotionMinSamples {
		return fmt.Errorf("render.motion_max_samples (%d) must not be finer than render.motion_min_samples (%d)",
			r.MotionMaxSamples, r.MotionMinSamples)
	}
	if r.StaticReflections <= 0 || r.MotionReflections <= 0 || r.ScreenshotReflections <= 0 {
		return errors.New("render reflections must be positive")
	}
	if r.MinMotionFrameTime > r.MaxMotionFrameTime {
		return errors.New("render.min_motion_frame_time exceeds render.max_motion_frame_time")
	}
	if r.MinChunkTime > r.MaxChunkTime {
		return errors.New("render.min_chunk_time exceeds render.max_chunk_time")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured log level
func (c *Config) LogLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// AppSettings converts the render section into application settings
func (c *Config) AppSettings() app.Settings {
	return app.Settings{
		StaticSamples:         c.Render.StaticSamples,
		MotionMinSamples:      c.Render.MotionMinSamples,
		MotionMaxSamples:      c.Render.MotionMaxSamples,
		StaticReflections:     c.Render.StaticReflections,
		MotionReflections:     c.Render.MotionReflections,
		ScreenshotReflections: c.Render.ScreenshotReflections,
		MinMotionFrameTime:    c.Render.MinMotionFrameTime,
		MaxMotionFrameTime:    c.Render.MaxMotionFrameTime,
		MinChunkTime:          c.Render.MinChunkTime,
		MaxChunkTime:          c.Render.MaxChunkTime,
		IdleSleep:             c.Render.IdleSleep,
		ScreenshotDir:         c.Paths.Screenshots,
	}
}

// MarshalYAML writes durations as strings such as "10ms"
func (r RenderConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Seed                  int32  `yaml:"seed"`
		StaticSamples         int    `yaml:"static_samples"`
		MotionMinSamples      int    `yaml:"motion_min_samples"`
		MotionMaxSamples      int    `yaml:"motion_max_samples"`
		StaticReflections     int    `yaml:"static_reflections"`
		MotionReflections     int    `yaml:"motion_reflections"`
		ScreenshotReflections int    `yaml:"screenshot_reflections"`
		MinMotionFrameTime    string `yaml:"min_motion_frame_time"`
		MaxMotionFrameTime    string `yaml:"max_motion_frame_time"`
		MinChunkTime          string `yaml:"min_chunk_time"`
		MaxChunkTime          string `yaml:"max_chunk_time"`
		IdleSleep             string `yaml:"idle_sleep"`
	}{
		r.Seed,
		r.StaticSamples,
		r.MotionMinSamples,
		r.MotionMaxSamples,
		r.StaticReflections,
		r.MotionReflections,
		r.ScreenshotReflections,
		r.MinMotionFrameTime.String(),
		r.MaxMotionFrameTime.String(),
		r.MinChunkTime.String(),
		r.MaxChunkTime.String(),
		r.IdleSleep.String(),
	}, nil
}

// WriteDefault writes the built-in configuration to path, refusing to
// overwrite an existing file
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
