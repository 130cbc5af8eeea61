package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	Primary  Primary        `koanf:"primary"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Esewa    EsewaConfig    `koanf:"esewa"`
	Pages    PagesConfig    `koanf:"pages"`
	Booking  BookingConfig  `koanf:"booking"`
	Pending  PendingConfig  `koanf:"pending"`
	Notifier NotifierConfig `koanf:"notifier"`
	Logger   LoggerConfig   `koanf:"logger"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig is only consulted when pending.backend is "redis".
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	PoolSize int    `koanf:"pool_size"`
}

type EsewaConfig struct {
	// FormURL is the gateway's form-submission endpoint the renter's
	// browser posts the signed payload to.
	FormURL     string        `koanf:"form_url" validate:"required"`
	StatusURL   string        `koanf:"status_url" validate:"required"`
	ProductCode string        `koanf:"product_code" validate:"required"`
	SecretKey   string        `koanf:"secret_key" validate:"required"`
	SuccessURL  string        `koanf:"success_url" validate:"required"`
	FailureURL  string        `koanf:"failure_url" validate:"required"`
	ConnTimeout time.Duration `koanf:"conn_timeout" validate:"required"`

	// MinAmount is the gateway's minimum chargeable unit in NPR.
	MinAmount float64 `koanf:"min_amount"`

	// AllowAmountFallback enables best-effort intent matching by exact
	// amount when a callback arrives without a transaction_uuid. Ambiguous
	// under concurrent equal-amount transactions; off by default.
	AllowAmountFallback bool `koanf:"allow_amount_fallback"`
}

// PagesConfig holds the client-facing terminal outcome pages the callback
// handler redirects the renter's browser to.
type PagesConfig struct {
	Success   string `koanf:"success" validate:"required"`
	Failure   string `koanf:"failure" validate:"required"`
	Cancelled string `koanf:"cancelled" validate:"required"`
	Pending   string `koanf:"pending" validate:"required"`
}

type BookingConfig struct {
	// InsuranceFee is the flat add-on charged when a renter opts in.
	InsuranceFee float64 `koanf:"insurance_fee"`
}

type PendingConfig struct {
	// Backend selects the pending transaction store: "memory" or "redis".
	Backend string `koanf:"backend" validate:"required,oneof=memory redis"`

	// TTL is how long an intent may sit unconfirmed before the sweeper
	// reconciles and discards it.
	TTL           time.Duration `koanf:"ttl" validate:"required"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"required"`
}

type NotifierConfig struct {
	Enabled  bool   `koanf:"enabled"`
	URL      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider("RENTWHEELS_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "RENTWHEELS_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

// NewLogger builds the process logger at the configured level.
func (c LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
