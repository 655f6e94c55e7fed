package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
	defaultMoMoURL   = "https://test-payment.momo.vn/v2/gateway/api/create"
)

type Config struct {
	AppEnv   string
	HTTPAddr string
	LogLevel string

	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTP   SMTPConfig
	MoMo   MoMoConfig
	Stripe StripeConfig

	Currency         string
	CurrencyDecimals int32
	TaxRate          decimal.Decimal
	DepositRate      decimal.Decimal

	NightAuditHour   int
	NightAuditMinute int
	Location         *time.Location

	CORSAllowedOrigins []string
	CallbackRatePerMin int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool { return c.Host != "" }

type MoMoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	Endpoint    string
	RedirectURL string
	IPNURL      string
}

func (c MoMoConfig) Enabled() bool {
	return c.PartnerCode != "" && c.AccessKey != "" && c.SecretKey != ""
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

func (c StripeConfig) Enabled() bool { return c.SecretKey != "" && c.WebhookSecret != "" }

// Load reads .env (if present) and the environment, applying defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "resort.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "12h")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "no-reply@resort.local")
	v.SetDefault("MOMO_PARTNER_CODE", "")
	v.SetDefault("MOMO_ACCESS_KEY", "")
	v.SetDefault("MOMO_SECRET_KEY", "")
	v.SetDefault("MOMO_ENDPOINT", defaultMoMoURL)
	v.SetDefault("MOMO_REDIRECT_URL", "")
	v.SetDefault("MOMO_IPN_URL", "")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("STRIPE_SUCCESS_URL", "")
	v.SetDefault("STRIPE_CANCEL_URL", "")
	v.SetDefault("CURRENCY", "VND")
	v.SetDefault("CURRENCY_DECIMALS", 0)
	v.SetDefault("TAX_RATE", "0.10")
	v.SetDefault("DEPOSIT_RATE", "0.30")
	v.SetDefault("NIGHT_AUDIT_AT", "23:50")
	v.SetDefault("RESORT_TIMEZONE", "Local")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("CALLBACK_RATE_PER_MIN", 120)

	_ = v.ReadInConfig()
	return v
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:        strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		HTTPAddr:      strings.TrimSpace(v.GetString("HTTP_ADDR")),
		LogLevel:      strings.TrimSpace(v.GetString("LOG_LEVEL")),
		DatabaseURL:   strings.TrimSpace(v.GetString("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(v.GetString("JWT_SECRET")),
		RedisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		SMTP: SMTPConfig{
			Host:     strings.TrimSpace(v.GetString("SMTP_HOST")),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     strings.TrimSpace(v.GetString("SMTP_FROM")),
		},
		MoMo: MoMoConfig{
			PartnerCode: v.GetString("MOMO_PARTNER_CODE"),
			AccessKey:   v.GetString("MOMO_ACCESS_KEY"),
			SecretKey:   v.GetString("MOMO_SECRET_KEY"),
			Endpoint:    v.GetString("MOMO_ENDPOINT"),
			RedirectURL: v.GetString("MOMO_REDIRECT_URL"),
			IPNURL:      v.GetString("MOMO_IPN_URL"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			SuccessURL:    v.GetString("STRIPE_SUCCESS_URL"),
			CancelURL:     v.GetString("STRIPE_CANCEL_URL"),
		},
		Currency:           strings.ToUpper(strings.TrimSpace(v.GetString("CURRENCY"))),
		CurrencyDecimals:   int32(v.GetInt("CURRENCY_DECIMALS")),
		CallbackRatePerMin: v.GetInt("CALLBACK_RATE_PER_MIN"),
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(strings.TrimSpace(v.GetString("JWT_TTL"))); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL value %q: %w", v.GetString("JWT_TTL"), err)
	}
	if cfg.TaxRate, err = decimal.NewFromString(strings.TrimSpace(v.GetString("TAX_RATE"))); err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE value %q: %w", v.GetString("TAX_RATE"), err)
	}
	if cfg.DepositRate, err = decimal.NewFromString(strings.TrimSpace(v.GetString("DEPOSIT_RATE"))); err != nil {
		return nil, fmt.Errorf("invalid DEPOSIT_RATE value %q: %w", v.GetString("DEPOSIT_RATE"), err)
	}
	if cfg.NightAuditHour, cfg.NightAuditMinute, err = parseClock(v.GetString("NIGHT_AUDIT_AT")); err != nil {
		return nil, err
	}
	if cfg.Location, err = time.LoadLocation(strings.TrimSpace(v.GetString("RESORT_TIMEZONE"))); err != nil {
		return nil, fmt.Errorf("invalid RESORT_TIMEZONE: %w", err)
	}
	for _, o := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return isProdLike(c.AppEnv) }

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if cfg.HTTPAddr == "" {
		return errors.New("HTTP_ADDR must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be > 0")
	}
	if cfg.CurrencyDecimals < 0 || cfg.CurrencyDecimals > 4 {
		return errors.New("CURRENCY_DECIMALS must be between 0 and 4")
	}
	if cfg.TaxRate.IsNegative() || cfg.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return errors.New("TAX_RATE must be between 0 and 1")
	}
	if !cfg.DepositRate.IsPositive() || cfg.DepositRate.GreaterThan(decimal.NewFromInt(1)) {
		return errors.New("DEPOSIT_RATE must be > 0 and <= 1")
	}
	if cfg.CallbackRatePerMin <= 0 {
		return errors.New("CALLBACK_RATE_PER_MIN must be > 0")
	}
	if cfg.SMTP.Enabled() && cfg.SMTP.Port <= 0 {
		return errors.New("SMTP_PORT must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			return errors.New("in production JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseClock(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid NIGHT_AUDIT_AT value %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid NIGHT_AUDIT_AT hour %q", parts[0])
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid NIGHT_AUDIT_AT minute %q", parts[1])
	}
	return h, m, nil
}
