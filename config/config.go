// Package config loads tool settings from the environment and an optional .env file.
package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/marmor123/mice-tracking/trajectory"
)

const (
	StoreCSV    = "csv"
	StoreSQLite = "sqlite"
)

type Config struct {
	// Number of tracked subjects, each contributing a body and a head class
	Subjects int `env:"TRAJ_SUBJECTS" envDefault:"5" validate:"min=1"`
	// Per-axis jump threshold in pixels
	Threshold float64 `env:"TRAJ_THRESHOLD" envDefault:"500" validate:"gte=0"`
	// Classes processed concurrently
	Workers int `env:"TRAJ_WORKERS" envDefault:"1" validate:"min=1"`

	// Frame rate of the source video, used to size the reprocessing grace window
	FPS          float64 `env:"TRAJ_FPS" envDefault:"30" validate:"gt=0"`
	GraceSeconds float64 `env:"TRAJ_GRACE_SECONDS" envDefault:"1" validate:"gte=0"`

	Store  string `env:"TRAJ_STORE" envDefault:"csv" validate:"oneof=csv sqlite"`
	DBPath string `env:"TRAJ_DB_PATH" envDefault:"tracks.db"`

	LogLevel string `env:"TRAJ_LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn warning error"`
	LogFile  string `env:"TRAJ_LOG_FILE"`
}

// GraceFrames returns the reprocessing grace window in frames
func (c *Config) GraceFrames() int {
	return trajectory.GraceFrames(c.FPS, c.GraceSeconds)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// Load reads the configuration. Values from envFiles are applied first without overriding variables
// that are already set. Missing env files are skipped.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, errors.Wrapf(err, "Can't load %s", file)
		}
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "Can't parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
