// Package config loads and saves the application settings as TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"refboard/internal/board"
	"refboard/pkg/geometry"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

const (
	appDir     = "refboard"
	configFile = "config.toml"
)

// Grid holds the grid settings.
type Grid struct {
	Size    float64 `toml:"size"`
	Enabled bool    `toml:"enabled"`
	Snap    bool    `toml:"snap"`
}

// Point is a canvas position.
type Point struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// Dimensions is a width and height.
type Dimensions struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Config is the persisted application configuration.
type Config struct {
	Grid          Grid       `toml:"grid"`
	Placement     Point      `toml:"placement"`
	Window        Dimensions `toml:"window"`
	LogLevel      string     `toml:"log_level"`
	LastDirectory string     `toml:"last_directory,omitempty"`

	path string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Grid: Grid{
			Size:    board.DefaultGridSize,
			Enabled: true,
			Snap:    true,
		},
		Placement: Point{X: board.DefaultPlacement.X, Y: board.DefaultPlacement.Y},
		Window:    Dimensions{Width: board.DefaultDesiredSize.Width, Height: board.DefaultDesiredSize.Height},
		LogLevel:  logrus.InfoLevel.String(),
	}
}

// Dir returns the application's configuration directory.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir)
}

// DefaultPath returns ~/.config/refboard/config.toml or the platform
// equivalent.
func DefaultPath() string {
	return filepath.Join(Dir(), configFile)
}

// Load reads the configuration at path. A missing file yields the defaults.
// Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.sanitize()
	return cfg, nil
}

// Path returns the file the configuration is saved to.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration back to its file.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no path")
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Level parses the configured log level.
func (c *Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level: %w", err)
	}
	return level, nil
}

// BoardOptions converts the configuration into board options.
func (c *Config) BoardOptions(log logrus.FieldLogger) board.Options {
	return board.Options{
		GridSize:    c.Grid.Size,
		GridEnabled: c.Grid.Enabled,
		GridSnap:    c.Grid.Snap,
		Placement:   geometry.NewPoint2D(c.Placement.X, c.Placement.Y),
		DesiredSize: geometry.NewSize(c.Window.Width, c.Window.Height),
		Logger:      log,
	}
}

func (c *Config) sanitize() {
	def := Default()
	if c.Grid.Size <= 0 {
		c.Grid.Size = def.Grid.Size
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window = def.Window
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}
