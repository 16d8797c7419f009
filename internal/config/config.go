// Package config loads the process configuration from the environment.
// Bot credentials here are the bot's own; the per-flow API id/hash are
// supplied interactively by each user and never configured.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config struct {
	BotToken string `env:"BOT_TOKEN,required,notEmpty"`

	AppName  string `env:"APP_NAME" envDefault:"Session String Bot"`
	Env      string `env:"ENV" envDefault:"DEV"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Port is bound by the health listener so hosting platforms see the
	// process as alive.
	Port string `env:"PORT" envDefault:"8080"`

	MiniAppURL   string `env:"MINI_APP_URL"`
	DevicePreset string `env:"DEVICE_PRESET" envDefault:"desktop"`

	// Idle window is generous: login codes arrive on a side channel
	// outside the bot's control.
	IdleTimeout   time.Duration `env:"LOGIN_IDLE_TIMEOUT" envDefault:"10m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	MaxAttempts   int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"3"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] parse environment")
	}
	return cfg, nil
}

// ListenAddr returns the health listener address in ":port" form.
func (c Config) ListenAddr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
