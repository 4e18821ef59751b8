package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the agency service.
// It merges file defaults and environment overrides to support both local
// and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	KafkaBrokers []string

	CollectorBaseURL string
	CollectorAPIKey  string
	CollectorTimeout time.Duration

	CyclosBaseURL  string
	CyclosUsername string
	CyclosPassword string
	CyclosTimeout  time.Duration

	JWTSecret string

	CommissionAmount         string
	CommissionTransferTypeID string
	CommissionCurrency       string
	CommissionDescription    string

	MinimumBalance  float64
	BalanceCacheTTL time.Duration
	SubmissionLimit int64

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL  string   `yaml:"postgres_url"`
		RedisURL     string   `yaml:"redis_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
	} `yaml:"dependencies"`
	Collector struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"collector"`
	Cyclos struct {
		BaseURL  string `yaml:"base_url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"cyclos"`
	Commission struct {
		Amount         string `yaml:"amount"`
		TransferTypeID string `yaml:"transfer_type_id"`
		Currency       string `yaml:"currency"`
		Description    string `yaml:"description"`
	} `yaml:"commission"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:                "agency-service",
		HTTPPort:                 8080,
		GRPCPort:                 9090,
		CollectorTimeout:         30 * time.Second,
		CyclosTimeout:            10 * time.Second,
		CommissionAmount:         "500",
		CommissionTransferTypeID: "178",
		CommissionCurrency:       "Rwf",
		CommissionDescription:    "AQS Commission Payment to Agent",
		MinimumBalance:           500,
		BalanceCacheTTL:          30 * time.Second,
		SubmissionLimit:          10,
		MaxDBConns:               20,
		OutboxPollInterval:       2 * time.Second,
		OutboxBatchSize:          100,
		OutboxClaimTTL:           30 * time.Second,
		OutboxMaxRetries:         5,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
		}
		if f.Collector.BaseURL != "" {
			cfg.CollectorBaseURL = f.Collector.BaseURL
		}
		if f.Collector.APIKey != "" {
			cfg.CollectorAPIKey = f.Collector.APIKey
		}
		if f.Cyclos.BaseURL != "" {
			cfg.CyclosBaseURL = f.Cyclos.BaseURL
		}
		if f.Cyclos.Username != "" {
			cfg.CyclosUsername = f.Cyclos.Username
		}
		if f.Cyclos.Password != "" {
			cfg.CyclosPassword = f.Cyclos.Password
		}
		if f.Commission.Amount != "" {
			cfg.CommissionAmount = f.Commission.Amount
		}
		if f.Commission.TransferTypeID != "" {
			cfg.CommissionTransferTypeID = f.Commission.TransferTypeID
		}
		if f.Commission.Currency != "" {
			cfg.CommissionCurrency = f.Commission.Currency
		}
		if f.Commission.Description != "" {
			cfg.CommissionDescription = f.Commission.Description
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.CollectorBaseURL = envOrDefault("COLLECTOR_BASE_URL", cfg.CollectorBaseURL)
	cfg.CollectorAPIKey = envOrDefault("COLLECTOR_API_KEY", cfg.CollectorAPIKey)
	cfg.CyclosBaseURL = envOrDefault("CYCLOS_BASE_URL", cfg.CyclosBaseURL)
	cfg.CyclosUsername = envOrDefault("CYCLOS_USERNAME", cfg.CyclosUsername)
	cfg.CyclosPassword = envOrDefault("CYCLOS_PASSWORD", cfg.CyclosPassword)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.CommissionAmount = envOrDefault("COMMISSION_AMOUNT", cfg.CommissionAmount)
	cfg.CommissionTransferTypeID = envOrDefault("COMMISSION_TRANSFER_TYPE_ID", cfg.CommissionTransferTypeID)
	cfg.CommissionCurrency = envOrDefault("COMMISSION_CURRENCY", cfg.CommissionCurrency)
	cfg.CommissionDescription = envOrDefault("COMMISSION_DESCRIPTION", cfg.CommissionDescription)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.MinimumBalance = envFloat("MINIMUM_BALANCE", cfg.MinimumBalance)
	cfg.SubmissionLimit = int64(envInt("SUBMISSION_LIMIT", int(cfg.SubmissionLimit)))

	cfg.CollectorTimeout = time.Duration(envInt("COLLECTOR_TIMEOUT_SECONDS", int(cfg.CollectorTimeout.Seconds()))) * time.Second
	cfg.CyclosTimeout = time.Duration(envInt("CYCLOS_TIMEOUT_SECONDS", int(cfg.CyclosTimeout.Seconds()))) * time.Second
	cfg.BalanceCacheTTL = time.Duration(envInt("BALANCE_CACHE_TTL_SECONDS", int(cfg.BalanceCacheTTL.Seconds()))) * time.Second
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.CollectorBaseURL == "" {
		return Config{}, fmt.Errorf("missing COLLECTOR_BASE_URL")
	}
	if cfg.CyclosBaseURL == "" {
		return Config{}, fmt.Errorf("missing CYCLOS_BASE_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envFloat parses float env vars with safe fallback on empty/invalid values.
func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
