package config

import "time"

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Platform       PlatformConfig       `mapstructure:"platform"`
	Sync           SyncConfig           `mapstructure:"sync"`
	Vault          VaultConfig          `mapstructure:"vault"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// HTTPConfig configures the daemon's local health/metrics endpoint, not
// the outbound platform client.
type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PlatformConfig holds the remote ride-hailing platform endpoints and
// the four credentials of the credential exchange.
type PlatformConfig struct {
	AuthURL        string        `mapstructure:"auth_url"`
	GraphQLURL     string        `mapstructure:"graphql_url"`
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	FleetScope     string        `mapstructure:"fleet_scope"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type SyncConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	PageSize      int           `mapstructure:"page_size"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	RunTimeout    time.Duration `mapstructure:"run_timeout"`
	Timezone      string        `mapstructure:"timezone"`
	Interval      time.Duration `mapstructure:"interval"`
}

// VaultConfig enables resolving the platform credentials from Vault
// instead of the config file.
type VaultConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

// Defaults applied by Load when a key is not set anywhere.
const (
	DefaultBatchSize     = 100
	DefaultPageSize      = 100
	DefaultMaxConcurrent = 200
	DefaultRunTimeout    = 30 * time.Minute
	DefaultTimezone      = "America/Argentina/Buenos_Aires"
)
