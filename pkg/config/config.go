package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	Horizon   HorizonConfig   `yaml:"horizon"`
	Viewshed  ViewshedConfig  `yaml:"viewshed"`
	Grid      GridConfig      `yaml:"grid"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// HorizonConfig holds the refraction model settings.
// The coefficient is an empirical average (~1.2); it is configurable rather
// than hard-coded so callers can tune it for non-standard atmospheres.
type HorizonConfig struct {
	Refraction  bool    `yaml:"refraction"`
	Coefficient float64 `yaml:"coefficient"`
}

// ViewshedConfig holds mask computation settings.
type ViewshedConfig struct {
	Workers int `yaml:"workers"`
}

// GridConfig describes the synthetic grid source the daemon serves when no
// external elevation provider is wired in.
type GridConfig struct {
	OriginLat  float64  `yaml:"origin_lat"`
	OriginLon  float64  `yaml:"origin_lon"`
	Rows       int      `yaml:"rows"`
	Cols       int      `yaml:"cols"`
	CellSize   Distance `yaml:"cell_size"`
	Amplitude  float64  `yaml:"amplitude_m"`
	Wavelength Distance `yaml:"wavelength"`
	Base       float64  `yaml:"base_m"`
	Holes      bool     `yaml:"holes"`
}

// RetentionConfig holds persistence housekeeping settings.
type RetentionConfig struct {
	RunMaxAge Duration `yaml:"run_max_age"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:1931",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/sightline.db",
		},
		Horizon: HorizonConfig{
			Refraction:  true,
			Coefficient: 1.2055,
		},
		Viewshed: ViewshedConfig{
			Workers: 4,
		},
		Grid: GridConfig{
			OriginLat:  51.6845,
			OriginLon:  14.4234,
			Rows:       200,
			Cols:       200,
			CellSize:   Distance(250),
			Amplitude:  180,
			Wavelength: Distance(12000),
			Base:       120,
			Holes:      true,
		},
		Retention: RetentionConfig{
			RunMaxAge: Duration(30 * 24 * time.Hour),
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Horizon.Coefficient <= 0 {
		return fmt.Errorf("invalid horizon coefficient %.4f: must be positive", c.Horizon.Coefficient)
	}
	if c.Grid.Rows <= 0 || c.Grid.Cols <= 0 {
		return fmt.Errorf("invalid grid dimensions %dx%d", c.Grid.Rows, c.Grid.Cols)
	}
	if c.Viewshed.Workers < 1 {
		c.Viewshed.Workers = 1
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Sightline Configuration
# ----------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles)

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
