package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	NotifierTwilio   = "twilio"
	NotifierTelegram = "telegram"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL,default=info"`
	HTTPPort string `env:"HTTP_PORT,default=8080"`

	CheckInterval time.Duration `env:"CHECK_INTERVAL,default=60s"`

	StoreDriver       string        `env:"STORE_DRIVER,default=postgres"`
	DBHost            string        `env:"DB_HOST"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBName            string        `env:"DB_NAME"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	QuoteBaseURL string        `env:"QUOTE_BASE_URL,default=https://query1.finance.yahoo.com"`
	QuoteTimeout time.Duration `env:"QUOTE_TIMEOUT,default=10s"`

	NotifierDriver   string        `env:"NOTIFIER_DRIVER,default=twilio"`
	TwilioBaseURL    string        `env:"TWILIO_BASE_URL,default=https://api.twilio.com"`
	TwilioAccountSID string        `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string        `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string        `env:"TWILIO_FROM_NUMBER"`
	TwilioTimeout    time.Duration `env:"TWILIO_TIMEOUT,default=10s"`
	TelegramBotToken string        `env:"TELEGRAM_BOT_TOKEN"`

	StatsdAddr   string `env:"STATSD_ADDR"`
	StatsdPrefix string `env:"STATSD_PREFIX,default=alerter"`
}

// Load reads .env (when present) and the process environment, then
// validates driver-dependent requirements so misconfiguration fails at
// startup instead of surfacing mid-cycle.
func Load(ctx context.Context) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.CheckInterval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL must be positive")
	}
	if c.QuoteTimeout <= 0 {
		return fmt.Errorf("QUOTE_TIMEOUT must be positive")
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("postgres store requires DB_HOST, DB_USER and DB_NAME")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	switch c.NotifierDriver {
	case NotifierTwilio:
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioFromNumber == "" {
			return fmt.Errorf("twilio notifier requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER")
		}
	case NotifierTelegram:
		if c.TelegramBotToken == "" {
			return fmt.Errorf("telegram notifier requires TELEGRAM_BOT_TOKEN")
		}
	default:
		return fmt.Errorf("unknown notifier driver %q", c.NotifierDriver)
	}

	return nil
}
