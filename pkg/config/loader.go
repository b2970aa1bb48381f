package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("platform.auth_url", "PLATFORM_AUTH_URL", "APP_PLATFORM_AUTH_URL")
	viper.BindEnv("platform.graphql_url", "PLATFORM_GRAPHQL_URL", "APP_PLATFORM_GRAPHQL_URL")
	viper.BindEnv("platform.client_id", "PLATFORM_CLIENT_ID", "APP_PLATFORM_CLIENT_ID")
	viper.BindEnv("platform.client_secret", "PLATFORM_CLIENT_SECRET", "APP_PLATFORM_CLIENT_SECRET")
	viper.BindEnv("platform.username", "PLATFORM_USERNAME", "APP_PLATFORM_USERNAME")
	viper.BindEnv("platform.password", "PLATFORM_PASSWORD", "APP_PLATFORM_PASSWORD")
	viper.BindEnv("platform.fleet_scope", "PLATFORM_FLEET_SCOPE")
	viper.BindEnv("vault.address", "VAULT_ADDR")
	viper.BindEnv("vault.token", "VAULT_TOKEN")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file: env vars and defaults only
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "fleetops-syncer")
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("platform.request_timeout", "30s")
	viper.SetDefault("sync.batch_size", DefaultBatchSize)
	viper.SetDefault("sync.page_size", DefaultPageSize)
	viper.SetDefault("sync.max_concurrent", DefaultMaxConcurrent)
	viper.SetDefault("sync.run_timeout", DefaultRunTimeout)
	viper.SetDefault("sync.timezone", DefaultTimezone)
	viper.SetDefault("sync.interval", "1h")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("prometheus.enabled", true)
	viper.SetDefault("prometheus.path", "/metrics")
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", "60s")
	viper.SetDefault("circuit_breaker.timeout", "30s")
	viper.SetDefault("circuit_breaker.failure_threshold", 5)
}

func validate(cfg *Config) error {
	if cfg.Platform.AuthURL == "" {
		return fmt.Errorf("platform.auth_url is required")
	}
	if cfg.Platform.GraphQLURL == "" {
		return fmt.Errorf("platform.graphql_url is required")
	}
	if cfg.Sync.BatchSize <= 0 {
		cfg.Sync.BatchSize = DefaultBatchSize
	}
	if cfg.Sync.PageSize <= 0 {
		cfg.Sync.PageSize = DefaultPageSize
	}
	if cfg.Sync.MaxConcurrent <= 0 {
		cfg.Sync.MaxConcurrent = DefaultMaxConcurrent
	}
	return nil
}
