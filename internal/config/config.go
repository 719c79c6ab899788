// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	PublicURL       string        `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DBPath         string `env:"DB_PATH" envDefault:"data/merchant.db"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"internal/store/migrations"`

	// Merchant identity used for the discovery profile and UPI payments.
	MerchantVPA       string   `env:"MERCHANT_VPA" envDefault:"artisan@paytm"`
	MerchantName      string   `env:"MERCHANT_NAME" envDefault:"Artisan India"`
	ProductCategories []string `env:"PRODUCT_CATEGORIES" envSeparator:"," envDefault:"Handicrafts,Textiles,Jewelry"`

	// MerchantSecret signs/verifies payment confirmation requests.
	MerchantSecret string `env:"MERCHANT_SECRET,required,notEmpty"`

	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"15m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	SweepEnabled  bool          `env:"SWEEP_ENABLED" envDefault:"true"`

	// Optional collaborators; features degrade gracefully when unset.
	RedisAddr    string   `env:"REDIS_ADDR"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
