package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      App
	HTTP     HTTP
	Probe    Probe
	Metrics  Metrics
	Postgres Postgres
	Redis    Redis
	Asynq    Asynq
	Bot      Bot
}

type App struct {
	Name    string `env:"APP_NAME" envDefault:"bid-market"`
	Version string `env:"APP_VERSION" envDefault:"dev"`
}

type HTTP struct {
	ListenAddress   string        `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogFieldMaxLen  int           `env:"HTTP_LOG_FIELD_MAX_LEN" envDefault:"2048"`
}

type Probe struct {
	ListenAddress string `env:"PROBE_LISTEN_ADDRESS" envDefault:":8081"`
}

type Metrics struct {
	ListenAddress string `env:"METRICS_LISTEN_ADDRESS" envDefault:":8082"`
}

type Asynq struct {
	Queue string `env:"ASYNQ_QUEUE" envDefault:"default"`
}

// Bot configures the optional ops alert bot. Disabled when the token
// is empty.
type Bot struct {
	Token               string `env:"BOT_TOKEN" json:"-"`
	ChatID              int64  `env:"BOT_CHAT_ID"`
	AlertThresholdCents int64  `env:"BOT_ALERT_THRESHOLD_CENTS" envDefault:"50000"`
}

func (b Bot) Enabled() bool {
	return b.Token != ""
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	return config, nil
}
