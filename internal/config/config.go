package config

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	APIPrefix   string `json:"api_prefix"`
	LogLevel    string `json:"log_level"`

	// Auth
	APIKeyHeader string   `json:"api_key_header"`
	APIKeys      []string `json:"api_keys"`
	EnableAuth   bool     `json:"enable_auth"`

	// Rate limiting
	RateLimitPerMinute int `json:"rate_limit_per_minute"`

	// Database
	DatabaseURL string `json:"database_url"`

	// AI / LLM
	AnthropicAPIKey  string `json:"anthropic_api_key"`
	AnthropicBaseURL string `json:"anthropic_base_url"` // override for a custom proxy
	Model            string `json:"model"`

	// Pipeline
	RowCap             int  `json:"row_cap"`
	ClassifyTimeoutS   int  `json:"classify_timeout_s"`
	GenerateTimeoutS   int  `json:"generate_timeout_s"`
	ExecuteTimeoutS    int  `json:"execute_timeout_s"`
	InterpretTimeoutS  int  `json:"interpret_timeout_s"`
	MaxQuestionLength  int  `json:"max_question_length"`
	StrictTimezone     bool `json:"strict_timezone"`
	EnableAuditLogging bool `json:"enable_audit_logging"`

	// Presentation defaults when the users row is missing
	DefaultTimezone string `json:"default_timezone"`
	DefaultCurrency string `json:"default_currency"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		Environment:        DefaultEnvironment,
		APIPrefix:          DefaultAPIPrefix,
		LogLevel:           DefaultLogLevel,
		APIKeyHeader:       "X-API-Key",
		EnableAuth:         true,
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		RowCap:             DefaultRowCap,
		ClassifyTimeoutS:   int(DefaultClassifyTimeout / time.Second),
		GenerateTimeoutS:   int(DefaultGenerateTimeout / time.Second),
		ExecuteTimeoutS:    int(DefaultExecuteTimeout / time.Second),
		InterpretTimeoutS:  int(DefaultInterpretTimeout / time.Second),
		MaxQuestionLength:  DefaultMaxQuestionLength,
		EnableAuditLogging: true,
		DefaultTimezone:    DefaultTimezone,
		DefaultCurrency:    DefaultCurrency,
	}

	// Load from JSON config file if specified
	if path := getEnv("FINBOT_CONFIG", ""); path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, err
		}
	}

	// Environment overrides
	applyEnvOverrides(cfg)

	if cfg.DatabaseURL == "" {
		return nil, errors.New("config: DATABASE_URL is required")
	}
	return cfg, nil
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("FINBOT_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("FINBOT_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("FINBOT_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("FINBOT_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("FINBOT_API_KEYS", ""); v != "" {
		cfg.APIKeys = strings.Split(v, ",")
	}
	if v := getEnv("DATABASE_URL", ""); v != "" {
		cfg.DatabaseURL = v
	}
	if v := getEnv("ANTHROPIC_API_KEY", ""); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := getEnv("ANTHROPIC_BASE_URL", ""); v != "" {
		cfg.AnthropicBaseURL = v
	}
	if v := getEnv("FINBOT_MODEL", ""); v != "" {
		cfg.Model = v
	}
	if v := getEnv("FINBOT_ROW_CAP", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RowCap = n
		}
	}
	if v := getEnv("FINBOT_STRICT_TIMEZONE", ""); v != "" {
		cfg.StrictTimezone = v == "true" || v == "1"
	}
	if v := getEnv("FINBOT_DEFAULT_TIMEZONE", ""); v != "" {
		cfg.DefaultTimezone = v
	}
	if v := getEnv("FINBOT_DEFAULT_CURRENCY", ""); v != "" {
		cfg.DefaultCurrency = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("ENABLE_AUTH", ""); v != "" {
		cfg.EnableAuth = v == "true" || v == "1"
	}
	if v := getEnv("ENABLE_AUDIT_LOGGING", ""); v != "" {
		cfg.EnableAuditLogging = v == "true" || v == "1"
	}
}

// ClassifyTimeout returns the classify stage budget as a duration.
func (c *Config) ClassifyTimeout() time.Duration {
	return time.Duration(c.ClassifyTimeoutS) * time.Second
}

func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutS) * time.Second
}

func (c *Config) ExecuteTimeout() time.Duration {
	return time.Duration(c.ExecuteTimeoutS) * time.Second
}

func (c *Config) InterpretTimeout() time.Duration {
	return time.Duration(c.InterpretTimeoutS) * time.Second
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
