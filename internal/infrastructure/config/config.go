package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Shopee   ShopeeConfig
	Sync     SyncConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// JWTConfig holds JWT settings for the dashboard API
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// ShopeeConfig holds Shopee Open API settings. Partner credentials here
// are the process-wide default; shops may carry their own overrides in
// the credential store.
type ShopeeConfig struct {
	PartnerID           int64
	PartnerKey          string
	BaseURL             string
	TimeoutSeconds      int
	RequestInterval     time.Duration // minimum spacing between remote calls
	DefaultAccessToken  string        // process-wide token fallback
	DefaultRefreshToken string
}

// SyncConfig holds synchronization engine tuning
type SyncConfig struct {
	ChunkDays       int           // fixed window size for chunked spans
	PageSize        int           // order-list page size
	DetailBatchSize int           // order serial numbers per detail call (max 50)
	WriteBatchSize  int           // rows per mirror write batch
	MaxDuration     time.Duration // invocation wall-clock ceiling
	MaxRecords      int           // invocation fetched-record cap
	QuickSyncDays   int           // lookback window for first-time sync
	PeriodicOverlap time.Duration // overlap behind last update_time for periodic sync
	EscrowBatchSize int           // escrow candidates per invocation
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with BTCSHOPEE_ prefix (e.g., BTCSHOPEE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("BTCSHOPEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Shopee: ShopeeConfig{
			PartnerID:           v.GetInt64("shopee.partner_id"),
			PartnerKey:          v.GetString("shopee.partner_key"),
			BaseURL:             v.GetString("shopee.base_url"),
			TimeoutSeconds:      v.GetInt("shopee.timeout_seconds"),
			RequestInterval:     v.GetDuration("shopee.request_interval"),
			DefaultAccessToken:  v.GetString("shopee.default_access_token"),
			DefaultRefreshToken: v.GetString("shopee.default_refresh_token"),
		},
		Sync: SyncConfig{
			ChunkDays:       v.GetInt("sync.chunk_days"),
			PageSize:        v.GetInt("sync.page_size"),
			DetailBatchSize: v.GetInt("sync.detail_batch_size"),
			WriteBatchSize:  v.GetInt("sync.write_batch_size"),
			MaxDuration:     v.GetDuration("sync.max_duration"),
			MaxRecords:      v.GetInt("sync.max_records"),
			QuickSyncDays:   v.GetInt("sync.quick_sync_days"),
			PeriodicOverlap: v.GetDuration("sync.periodic_overlap"),
			EscrowBatchSize: v.GetInt("sync.escrow_batch_size"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "btcshopee"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "btcshopee"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "btcshopee"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 120 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.Shopee.BaseURL == "" {
		cfg.Shopee.BaseURL = "https://partner.shopeemobile.com"
	}
	if cfg.Shopee.TimeoutSeconds == 0 {
		cfg.Shopee.TimeoutSeconds = 30
	}
	if cfg.Shopee.RequestInterval == 0 {
		cfg.Shopee.RequestInterval = 500 * time.Millisecond
	}
	if cfg.Sync.ChunkDays == 0 {
		cfg.Sync.ChunkDays = 7
	}
	if cfg.Sync.PageSize == 0 {
		cfg.Sync.PageSize = 100
	}
	if cfg.Sync.DetailBatchSize == 0 {
		cfg.Sync.DetailBatchSize = 50
	}
	if cfg.Sync.WriteBatchSize == 0 {
		cfg.Sync.WriteBatchSize = 50
	}
	if cfg.Sync.MaxDuration == 0 {
		cfg.Sync.MaxDuration = 50 * time.Second
	}
	if cfg.Sync.MaxRecords == 0 {
		cfg.Sync.MaxRecords = 500
	}
	if cfg.Sync.QuickSyncDays == 0 {
		cfg.Sync.QuickSyncDays = 14
	}
	if cfg.Sync.PeriodicOverlap == 0 {
		cfg.Sync.PeriodicOverlap = time.Hour
	}
	if cfg.Sync.EscrowBatchSize == 0 {
		cfg.Sync.EscrowBatchSize = 20
	}
}

// validate checks configuration invariants that defaults cannot repair
func (c *Config) validate() error {
	if c.App.Env == "production" && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if c.Sync.DetailBatchSize > 50 {
		return fmt.Errorf("sync.detail_batch_size must not exceed 50 (platform limit)")
	}
	if c.Sync.ChunkDays < 1 {
		return fmt.Errorf("sync.chunk_days must be at least 1")
	}
	if c.Sync.MaxDuration < time.Second {
		return fmt.Errorf("sync.max_duration must be at least 1s")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection URL used by the migration CLI
func (d *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}
