package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Backend    BackendConfig
	Enrichment EnrichmentConfig
	Vendor     VendorConfig
	Shipping   ShippingConfig
	Database   DatabaseConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type EnrichmentConfig struct {
	MaxConcurrency int
}

type VendorConfig struct {
	DefaultID   string
	SettingsKey string
}

type ShippingConfig struct {
	Method         string
	Cost           decimal.Decimal
	TrackingPrefix string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the optional YAML file at path and overlays environment
// variables named after the keys (server.port -> SERVER_PORT).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checking config file: %w", err)
		}
	}

	shippingCost, err := decimal.NewFromString(v.GetString("shipping.cost"))
	if err != nil {
		return nil, fmt.Errorf("parsing shipping.cost: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(v.GetString("backend.base_url"), "/"),
			Timeout: v.GetDuration("backend.timeout"),
		},
		Enrichment: EnrichmentConfig{
			MaxConcurrency: v.GetInt("enrichment.max_concurrency"),
		},
		Vendor: VendorConfig{
			DefaultID:   v.GetString("vendor.default_id"),
			SettingsKey: v.GetString("vendor.settings_key"),
		},
		Shipping: ShippingConfig{
			Method:         v.GetString("shipping.method"),
			Cost:           shippingCost,
			TrackingPrefix: v.GetString("shipping.tracking_prefix"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("db.enabled"),
			Host:            v.GetString("db.host"),
			Port:            v.GetInt("db.port"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			Name:            v.GetString("db.name"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if cfg.Backend.BaseURL == "" {
		return nil, errors.New("backend.base_url must not be empty")
	}
	if cfg.Enrichment.MaxConcurrency < 0 {
		return nil, fmt.Errorf("enrichment.max_concurrency must not be negative, got %d", cfg.Enrichment.MaxConcurrency)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("backend.base_url", "https://thriftstorebackend-8xii.onrender.com/api")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("enrichment.max_concurrency", 8)
	v.SetDefault("vendor.default_id", "demo_vendor")
	v.SetDefault("vendor.settings_key", "vendorId")
	v.SetDefault("shipping.method", "Standard Shipping")
	v.SetDefault("shipping.cost", "5.00")
	v.SetDefault("shipping.tracking_prefix", "TRK")
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "vendordesk")
	v.SetDefault("db.password", "secret")
	v.SetDefault("db.name", "vendordesk")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
