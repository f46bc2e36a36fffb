// Package config defines the viper-unmarshaled configuration document for
// cmd/passage and the wiring that turns a validated document into a
// running listener.
package config

import (
	"fmt"
	"time"

	"github.com/scrayosnet/passage/pkg/router"
)

// Config is the root document viper.Unmarshal populates from flags,
// environment variables and an optional config file.
type Config struct {
	Debug    bool           `mapstructure:"debug"`
	Listen   ListenConfig   `mapstructure:"listen"`
	Adapters AdaptersConfig `mapstructure:"adapters"`
}

// ListenConfig configures the TCP listener and the per-connection state
// machine it drives.
type ListenConfig struct {
	Addr              string        `mapstructure:"addr"`
	ProxyProtocol     bool          `mapstructure:"proxy_protocol"`
	MaxPacketLength   int32         `mapstructure:"max_packet_length"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	RateLimitMax      int           `mapstructure:"rate_limit_max"`
	AcceptRateLimit   float64       `mapstructure:"accept_rate_limit"`
	AcceptBurst       int           `mapstructure:"accept_burst"`
	AuthSecret        string        `mapstructure:"auth_secret"`
	AuthCookieExpiry  time.Duration `mapstructure:"auth_cookie_expiry"`
}

// AdaptersConfig selects and configures the six capability adapters.
type AdaptersConfig struct {
	// Discovery selects the discovery/strategy/status/filter backend:
	// "fixed" (YAML-driven, in-memory) or "grpc" (remote decision service).
	Discovery         string        `mapstructure:"discovery"`
	Fixed             FixedConfig   `mapstructure:"fixed"`
	GRPC              GRPCConfig    `mapstructure:"grpc"`
	DiscoveryCacheTTL time.Duration `mapstructure:"discovery_cache_ttl"`
	// Authentication selects the AuthenticationAdapter: "disabled" or
	// "mojang".
	Authentication string       `mapstructure:"authentication"`
	Mojang         MojangConfig `mapstructure:"mojang"`
	Localization   LocaleConfig `mapstructure:"localization"`
}

// FixedConfig points at the YAML document the fixed adapter family loads
// (pkg/adapters/fixed.Config).
type FixedConfig struct {
	ConfigPath string `mapstructure:"config_path"`
}

// GRPCConfig addresses the remote discovery/strategy backend.
type GRPCConfig struct {
	DiscoveryAddr string `mapstructure:"discovery_addr"`
	StrategyAddr  string `mapstructure:"strategy_addr"`
}

// MojangConfig configures the Mojang session-service authentication
// adapter.
type MojangConfig struct {
	SessionServerURL string        `mapstructure:"session_server_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// LocaleConfig points at the localization catalog (pkg/localize.Catalog).
type LocaleConfig struct {
	CatalogPath   string `mapstructure:"catalog_path"`
	DefaultLocale string `mapstructure:"default_locale"`
}

// Default returns a Config matching router.DefaultConfig/
// router.DefaultListenerConfig, with the fixed adapter family selected.
func Default() Config {
	conn := router.DefaultConfig()
	ln := router.DefaultListenerConfig()
	return Config{
		Listen: ListenConfig{
			Addr:              ln.ListenAddr,
			MaxPacketLength:   conn.MaxPacketLength,
			ConnectionTimeout: conn.ConnectionTimeout,
			KeepAliveInterval: conn.KeepAliveInterval,
			RateLimitWindow:   ln.RateLimitWindow,
			RateLimitMax:      ln.RateLimitMax,
			AuthCookieExpiry:  conn.AuthCookieExpiry,
		},
		Adapters: AdaptersConfig{
			Discovery:         "fixed",
			Authentication:    "disabled",
			DiscoveryCacheTTL: 0,
			Localization:      LocaleConfig{DefaultLocale: "en_us"},
			Mojang:            MojangConfig{Timeout: 5 * time.Second},
		},
	}
}

// Validate checks cfg for internal consistency beyond what mapstructure
// itself enforces.
func Validate(cfg *Config) error {
	if cfg.Listen.Addr == "" {
		return fmt.Errorf("config: listen.addr must not be empty")
	}
	if cfg.Listen.RateLimitMax <= 0 {
		return fmt.Errorf("config: listen.rate_limit_max must be positive")
	}
	if cfg.Listen.RateLimitWindow <= 0 {
		return fmt.Errorf("config: listen.rate_limit_window must be positive")
	}
	if cfg.Listen.ConnectionTimeout <= 0 {
		return fmt.Errorf("config: listen.connection_timeout must be positive")
	}
	if cfg.Listen.KeepAliveInterval <= 0 {
		return fmt.Errorf("config: listen.keep_alive_interval must be positive")
	}

	switch cfg.Adapters.Discovery {
	case "fixed":
		if cfg.Adapters.Fixed.ConfigPath == "" {
			return fmt.Errorf("config: adapters.fixed.config_path is required when adapters.discovery is \"fixed\"")
		}
	case "grpc":
		if cfg.Adapters.GRPC.DiscoveryAddr == "" || cfg.Adapters.GRPC.StrategyAddr == "" {
			return fmt.Errorf("config: adapters.grpc.discovery_addr and strategy_addr are required when adapters.discovery is \"grpc\"")
		}
	default:
		return fmt.Errorf("config: unknown adapters.discovery %q", cfg.Adapters.Discovery)
	}

	switch cfg.Adapters.Authentication {
	case "disabled", "mojang":
	default:
		return fmt.Errorf("config: unknown adapters.authentication %q", cfg.Adapters.Authentication)
	}

	return nil
}
