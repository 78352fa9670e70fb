package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"pocketbank-cli/internal/payees"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultServerURL   = "http://localhost:5000"
	defaultPoll        = 3 * time.Second
	defaultTTL         = 2 * time.Second
	defaultHTTPTimeout = 15 * time.Second
	defaultCeiling     = "100000"
	defaultLogLevel    = "info"

	envServerURL   = "BANK_SERVER_URL"
	envPoll        = "POLL_INTERVAL"
	envTTL         = "NOTIFY_TTL"
	envHTTPTimeout = "HTTP_TIMEOUT"
	envMaxTransfer = "MAX_TRANSFER"
	envMaxDeposit  = "MAX_DEPOSIT"
	envLogLevel    = "LOG_LEVEL"
	envEmail       = "BANK_EMAIL"
	envPayeesPath  = "PAYEES_PATH"
)

type Config struct {
	ServerURL    string
	PollInterval time.Duration
	NotifyTTL    time.Duration
	HTTPTimeout  time.Duration
	MaxTransfer  decimal.Decimal
	MaxDeposit   decimal.Decimal
	LogLevel     log.Level
	Email        string
	PayeesPath   string
}

// Load reads .env when present and then the environment. Any value that is
// set but unparseable is an error.
func Load(logger *log.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("could not load .env file", "err", err)
	}

	cfg := &Config{
		ServerURL: withScheme(getenv(envServerURL, defaultServerURL)),
		Email:     strings.TrimSpace(os.Getenv(envEmail)),
	}

	var err error
	if cfg.PollInterval, err = duration(envPoll, defaultPoll); err != nil {
		return nil, err
	}
	if cfg.NotifyTTL, err = duration(envTTL, defaultTTL); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = duration(envHTTPTimeout, defaultHTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.MaxTransfer, err = amount(envMaxTransfer); err != nil {
		return nil, err
	}
	if cfg.MaxDeposit, err = amount(envMaxDeposit); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = log.ParseLevel(getenv(envLogLevel, defaultLogLevel)); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envLogLevel, err)
	}

	cfg.PayeesPath = os.Getenv(envPayeesPath)
	if cfg.PayeesPath == "" {
		if cfg.PayeesPath, err = payees.DefaultPath(); err != nil {
			return nil, err
		}
	}

	logger.Debug("configuration loaded",
		"server", cfg.ServerURL,
		"poll", cfg.PollInterval,
		"ttl", cfg.NotifyTTL,
		"max_transfer", cfg.MaxTransfer.String())
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// withScheme prefixes http:// when the URL has no scheme.
func withScheme(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return strings.TrimSuffix(u, "/")
	}
	return "http://" + strings.TrimSuffix(u, "/")
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func amount(key string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getenv(key, defaultCeiling))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
