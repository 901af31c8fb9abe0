package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dukerupert/haulfile/internal/hvut"
	"github.com/dukerupert/haulfile/internal/provider"
	"github.com/dukerupert/haulfile/internal/telemetry"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Env         string
	LogLevel    string
	Port        uint16
	DatabaseURL string // empty disables duplicate detection storage
	NATS        NATSConfig
	Stripe      StripeConfig
	Tax         TaxConfig
	Sentry      telemetry.SentryConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
}

// NATSConfig holds the event bus connection. An empty URL disables publishing.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

type StripeConfig struct {
	SecretKey string
	TaxCode   string
	BaseURL   string // stripe-mock in development
}

// TaxConfig selects the HVUT schedule, the service-fee policy and the
// sales-tax provider applied to the fee.
type TaxConfig struct {
	Provider    provider.Name
	DefaultRate decimal.Decimal
	// StateRates is parsed from TAX_STATE_RATES, e.g. "TX=0.0625,WA=0.065".
	StateRates        map[string]decimal.Decimal
	TableVersion      string
	SuspendedFleetFee *decimal.Decimal
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig bounds quote requests per filer.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			log.Warn().Msg("Warning: .env file not found, using environment variables and defaults")
		}
	}

	return loadConfig(newEnvViper())
}

// newEnvViper returns a viper instance reading the process environment
// with the service defaults applied.
func newEnvViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", 3000)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("NATS_SUBJECT_PREFIX", "haulfile")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_TAX_CODE", "")
	v.SetDefault("STRIPE_API_BASE", "")
	v.SetDefault("TAX_PROVIDER", string(provider.NameNoTax))
	v.SetDefault("TAX_DEFAULT_RATE", "0")
	v.SetDefault("TAX_STATE_RATES", "")
	v.SetDefault("TAX_TABLE_VERSION", hvut.DefaultSchedule)
	v.SetDefault("SUSPENDED_FLEET_FEE", "")
	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("SENTRY_ENABLED", false) // Disabled by default for development
	v.SetDefault("SENTRY_ENVIRONMENT", "development")
	v.SetDefault("SENTRY_RELEASE", "")
	v.SetDefault("SENTRY_SAMPLE_RATE", 1.0)
	v.SetDefault("SENTRY_TRACES_SAMPLE_RATE", 0.0)
	v.SetDefault("SENTRY_DEBUG", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	return v
}

func loadConfig(v *viper.Viper) (*Config, error) {
	port := v.GetInt("PORT")
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", port)
	}

	cfg := &Config{
		Env:         v.GetString("ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Port:        uint16(port),
		DatabaseURL: v.GetString("DATABASE_URL"),
		NATS: NATSConfig{
			URL:           v.GetString("NATS_URL"),
			SubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),
		},
		Stripe: StripeConfig{
			SecretKey: v.GetString("STRIPE_SECRET_KEY"),
			TaxCode:   v.GetString("STRIPE_TAX_CODE"),
			BaseURL:   v.GetString("STRIPE_API_BASE"),
		},
		Tax: TaxConfig{
			TableVersion: v.GetString("TAX_TABLE_VERSION"),
		},
		Sentry: telemetry.SentryConfig{
			DSN:              v.GetString("SENTRY_DSN"),
			Enabled:          v.GetBool("SENTRY_ENABLED"),
			Environment:      v.GetString("SENTRY_ENVIRONMENT"),
			Release:          v.GetString("SENTRY_RELEASE"),
			SampleRate:       v.GetFloat64("SENTRY_SAMPLE_RATE"),
			TracesSampleRate: v.GetFloat64("SENTRY_TRACES_SAMPLE_RATE"),
			Debug:            v.GetBool("SENTRY_DEBUG"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Enabled:           v.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	// Validate env
	if cfg.Env != "dev" && cfg.Env != "prod" {
		log.Warn().Str("env", cfg.Env).Msg("Invalid environment. Using default: prod")
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		log.Warn().Str("value", cfg.LogLevel).Msg("Invalid log level. Using default: info")
		cfg.LogLevel = "info"
	}

	if !slices.Contains(hvut.Versions(), cfg.Tax.TableVersion) {
		return nil, fmt.Errorf("TAX_TABLE_VERSION %q is not one of %v", cfg.Tax.TableVersion, hvut.Versions())
	}

	var err error
	if cfg.Tax.Provider, err = provider.ParseName(v.GetString("TAX_PROVIDER")); err != nil {
		return nil, fmt.Errorf("invalid TAX_PROVIDER: %w", err)
	}
	if cfg.Tax.DefaultRate, err = decimal.NewFromString(v.GetString("TAX_DEFAULT_RATE")); err != nil {
		return nil, fmt.Errorf("invalid TAX_DEFAULT_RATE: %w", err)
	}
	if cfg.Tax.StateRates, err = parseStateRates(v.GetString("TAX_STATE_RATES")); err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(v.GetString("SUSPENDED_FLEET_FEE")); raw != "" {
		fee, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SUSPENDED_FLEET_FEE: %w", err)
		}
		cfg.Tax.SuspendedFleetFee = &fee
	}

	if cfg.Tax.Provider == provider.NameStripeTax && cfg.Stripe.SecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY required when TAX_PROVIDER=stripe")
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.RequestsPerSecond <= 0 || cfg.RateLimit.Burst <= 0) {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return cfg, nil
}

func parseStateRates(raw string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for _, pair := range splitList(raw) {
		state, rate, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid TAX_STATE_RATES entry %q: want STATE=RATE", pair)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(rate))
		if err != nil {
			return nil, fmt.Errorf("invalid TAX_STATE_RATES rate for %s: %w", state, err)
		}
		rates[strings.ToUpper(strings.TrimSpace(state))] = d
	}
	return rates, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
