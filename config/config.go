package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Driver  string        `toml:"driver" yaml:"driver"` // "ebiten" or "terminal"
	Window  WindowConfig  `toml:"window" yaml:"window"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Time    TimeConfig    `toml:"time" yaml:"time"`
	Physics PhysicsConfig `toml:"physics" yaml:"physics"`
	Demo    DemoConfig    `toml:"demo" yaml:"demo"`
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // "console" or "json"
}

type TimeConfig struct {
	Scale float64 `toml:"scale" yaml:"scale"`

	// FPSInterval is the measurement window of the fps counter
	FPSInterval time.Duration `toml:"fps_interval" yaml:"fps_interval"`

	// TickRate is only used by the terminal driver
	TickRate time.Duration `toml:"tick_rate" yaml:"tick_rate"`
}

type PhysicsConfig struct {
	GravityX float64 `toml:"gravity_x" yaml:"gravity_x"`
	GravityY float64 `toml:"gravity_y" yaml:"gravity_y"`
	Substeps int     `toml:"substeps" yaml:"substeps"`
}

type DemoConfig struct {
	Balls         int           `toml:"balls" yaml:"balls"`
	SpawnInterval time.Duration `toml:"spawn_interval" yaml:"spawn_interval"`
}

// Load reads the config file at path. Files ending in .yaml or .yml are
// parsed as yaml, everything else as toml. Values missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	cfg := Defaults()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Driver: "ebiten",
		Window: WindowConfig{
			Title:  "prom",
			Width:  800,
			Height: 600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Time: TimeConfig{
			Scale:       1,
			FPSInterval: time.Second,
			TickRate:    time.Second / 30,
		},
		Physics: PhysicsConfig{
			GravityY: 500,
			Substeps: 4,
		},
		Demo: DemoConfig{
			Balls:         16,
			SpawnInterval: 2 * time.Second,
		},
	}
}

// NewLogger builds the root logger. Unknown levels fall back to info.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
