package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "VOLLEY"

// Config is the full service configuration.
type Config struct {
	Debug      bool             `mapstructure:"debug"`
	SentryDSN  string           `mapstructure:"sentry_dsn"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Storage    StorageConfig    `mapstructure:"storage"`
	RosterSync RosterSyncConfig `mapstructure:"roster_sync"`
	Weather    WeatherConfig    `mapstructure:"weather"`
	Statistics StatisticsConfig `mapstructure:"statistics"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	AllowedOrigins string `mapstructure:"allowed_origins"` // comma separated
	BodyLimit      int    `mapstructure:"body_limit"`      // bytes
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type AuthConfig struct {
	GatewayToken string `mapstructure:"gateway_token"`
	JWTSecret    string `mapstructure:"jwt_secret"`
}

// ScoringConfig bounds the retry loop around per-match write transactions.
type ScoringConfig struct {
	MaxRetries           uint64        `mapstructure:"max_retries"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxElapsed      time.Duration `mapstructure:"retry_max_elapsed"`
	LockTimeout          time.Duration `mapstructure:"lock_timeout"`
}

type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	ConnectionName string        `mapstructure:"connection_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
}

// StorageConfig points at an S3 compatible bucket (Cloudflare R2 by default).
type StorageConfig struct {
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

type RosterSyncConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	EndpointPath string        `mapstructure:"endpoint_path"`
	ServiceToken string        `mapstructure:"service_token"`
	Interval     time.Duration `mapstructure:"interval"`
}

type WeatherConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BaseURL  string        `mapstructure:"base_url"`
	Interval time.Duration `mapstructure:"interval"`
}

type StatisticsConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// Load reads configFile (or config.yaml from the usual places), the .env
// files under envPath and VOLLEY_* environment variables, in increasing
// order of precedence.
func Load(configFile string, envPath string) (*Config, error) {
	v := configureViper("volleyball-live", configFile, envPath)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Auth.GatewayToken == "" && c.Auth.JWTSecret == "" {
		return errors.New("auth.gateway_token or auth.jwt_secret is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	return nil
}

// Origins splits AllowedOrigins and trims each entry.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("server.port", 5200)
	v.SetDefault("server.allowed_origins", "http://localhost:3000")
	v.SetDefault("server.body_limit", 4*1024*1024)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("scoring.max_retries", 5)
	v.SetDefault("scoring.retry_initial_interval", "50ms")
	v.SetDefault("scoring.retry_max_elapsed", "2s")
	v.SetDefault("scoring.lock_timeout", "3s")
	v.SetDefault("nats.subject_prefix", "volleyball")
	v.SetDefault("nats.connection_name", "volleyball-live-system")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("roster_sync.endpoint_path", "/api/v1/public/rosters")
	v.SetDefault("roster_sync.interval", "1m")
	v.SetDefault("weather.enabled", true)
	v.SetDefault("weather.base_url", "https://api.open-meteo.com")
	v.SetDefault("weather.interval", "15m")
	v.SetDefault("statistics.refresh_interval", "1m")
}

func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	return v
}

// bindEnvVars binds keys without defaults so Unmarshal sees them when no
// config file exists.
func bindEnvVars(v *viper.Viper) {
	keys := []string{
		"sentry_dsn",
		"database.url",
		"auth.gateway_token",
		"auth.jwt_secret",
		"nats.url",
		"storage.account_id",
		"storage.access_key_id",
		"storage.access_key_secret",
		"storage.bucket",
		"storage.endpoint",
		"storage.public_base_url",
		"roster_sync.base_url",
		"roster_sync.service_token",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}
	if envPath == "" {
		envPath = "."
	}
	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}
