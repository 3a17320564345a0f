// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/torxx666/skob26/engine"
)

// Config holds the server settings read from the environment.
type Config struct {
	Addr        string        `env:"CHKOUBA_ADDR" envDefault:":8080"`
	AICount     int           `env:"CHKOUBA_AI_COUNT" envDefault:"1"`
	TargetScore int           `env:"CHKOUBA_TARGET_SCORE" envDefault:"21"`
	AIDelay     time.Duration `env:"CHKOUBA_AI_DELAY" envDefault:"600ms"`
	RefillDelay time.Duration `env:"CHKOUBA_REFILL_DELAY" envDefault:"1500ms"`
	LogLevel    string        `env:"CHKOUBA_LOG_LEVEL" envDefault:"info"`
	LogFormat   string        `env:"CHKOUBA_LOG_FORMAT" envDefault:"text"`
	RedisAddr   string        `env:"REDIS_ADDR"`
	DatabaseURL string        `env:"DATABASE_URL"`
	JWTSecret   string        `env:"CHKOUBA_JWT_SECRET"`
}

// Load reads an optional .env file from the working directory, then parses
// the environment. Variables already set take precedence over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the environment into a validated Config.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges the environment parser cannot express.
func (c Config) Validate() error {
	if c.AICount < 0 || c.AICount > engine.MaxPlayers-1 {
		return fmt.Errorf("CHKOUBA_AI_COUNT must be between 0 and %d, got %d", engine.MaxPlayers-1, c.AICount)
	}
	if c.TargetScore <= 0 {
		return fmt.Errorf("CHKOUBA_TARGET_SCORE must be positive, got %d", c.TargetScore)
	}
	if c.AIDelay < 0 || c.RefillDelay < 0 {
		return errors.New("CHKOUBA_AI_DELAY and CHKOUBA_REFILL_DELAY must not be negative")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("CHKOUBA_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("CHKOUBA_LOG_LEVEL: %w", err)
	}
	return nil
}

// Rules returns the engine rules implied by the configuration.
func (c Config) Rules() engine.Rules {
	r := engine.DefaultRules()
	r.TargetScore = c.TargetScore
	return r
}

// NewLogger builds the service logger from the configured level and format.
func (c Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
