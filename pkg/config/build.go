package config

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.uber.org/zap"

	"github.com/scrayosnet/passage/pkg/adapters"
	"github.com/scrayosnet/passage/pkg/adapters/fixed"
	"github.com/scrayosnet/passage/pkg/adapters/grpcadapter"
	"github.com/scrayosnet/passage/pkg/adapters/mojang"
	"github.com/scrayosnet/passage/pkg/crypto"
	"github.com/scrayosnet/passage/pkg/localize"
	"github.com/scrayosnet/passage/pkg/metrics"
	"github.com/scrayosnet/passage/pkg/router"
)

// BuildFacade wires the six capability adapters selected by cfg.Adapters
// into one *adapters.Facade.
func BuildFacade(cfg AdaptersConfig) (*adapters.Facade, error) {
	facade := &adapters.Facade{}

	var fixedCfg fixed.Config
	if cfg.Discovery == "fixed" {
		data, err := os.ReadFile(cfg.Fixed.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("config: read fixed adapter config: %w", err)
		}
		fixedCfg, err = fixed.ParseConfig(data)
		if err != nil {
			return nil, fmt.Errorf("config: parse fixed adapter config: %w", err)
		}
	}

	switch cfg.Discovery {
	case "fixed":
		discovery, err := fixed.NewDiscovery(fixedCfg.Targets)
		if err != nil {
			return nil, fmt.Errorf("config: build fixed discovery: %w", err)
		}
		facade.Discovery = discovery

		if len(fixedCfg.Rules) > 0 {
			metaFilter, err := fixed.NewMetaFilter(fixedCfg.Rules)
			if err != nil {
				return nil, fmt.Errorf("config: build fixed filter rules: %w", err)
			}
			facade.Filters = append(facade.Filters, metaFilter)
		}
		if len(fixedCfg.AllowedPlayers) > 0 {
			facade.Filters = append(facade.Filters, fixed.NewPlayerAllowFilter(fixedCfg.AllowedPlayers))
		}
		if len(fixedCfg.BlockedPlayers) > 0 {
			facade.Filters = append(facade.Filters, fixed.NewPlayerBlockFilter(fixedCfg.BlockedPlayers))
		}

		facade.Strategy = fixed.NewStrategy(fixedCfg.Strategy, rand.New(rand.NewSource(time.Now().UnixNano())))
		facade.Status = fixed.NewStatus(fixedCfg.Status)

	case "grpc":
		discoveryConn, err := grpc.Dial(cfg.GRPC.DiscoveryAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("config: dial grpc discovery backend: %w", err)
		}
		strategyConn := discoveryConn
		if cfg.GRPC.StrategyAddr != cfg.GRPC.DiscoveryAddr {
			strategyConn, err = grpc.Dial(cfg.GRPC.StrategyAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return nil, fmt.Errorf("config: dial grpc strategy backend: %w", err)
			}
		}
		facade.Discovery = grpcadapter.NewGRPCDiscovery(discoveryConn)
		facade.Strategy = grpcadapter.NewGRPCStrategy(strategyConn)

	default:
		return nil, fmt.Errorf("config: unknown adapters.discovery %q", cfg.Discovery)
	}

	if cfg.DiscoveryCacheTTL > 0 {
		facade.Discovery = adapters.NewCachingDiscovery(facade.Discovery, cfg.DiscoveryCacheTTL)
	}

	switch cfg.Authentication {
	case "disabled":
		facade.Authentication = fixed.DisabledAuthentication{}
	case "mojang":
		facade.Authentication = mojang.New(cfg.Mojang.SessionServerURL, cfg.Mojang.Timeout)
	default:
		return nil, fmt.Errorf("config: unknown adapters.authentication %q", cfg.Authentication)
	}

	if cfg.Localization.CatalogPath != "" {
		data, err := os.ReadFile(cfg.Localization.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("config: read localization catalog: %w", err)
		}
		localizer, err := localize.Load(data, cfg.Localization.DefaultLocale)
		if err != nil {
			return nil, fmt.Errorf("config: parse localization catalog: %w", err)
		}
		facade.Localization = localizer
	} else {
		facade.Localization = localize.New(localize.Catalog{}, cfg.Localization.DefaultLocale)
	}

	return facade, nil
}

// BuildListener wires cfg into a ready-to-Run *router.Listener, sharing
// keys and rec across every accepted connection.
func BuildListener(cfg Config, keys *crypto.KeyPair, rec metrics.Recorder, logger *zap.Logger) (*router.Listener, error) {
	facade, err := BuildFacade(cfg.Adapters)
	if err != nil {
		return nil, err
	}

	lnCfg := router.ListenerConfig{
		ListenAddr:      cfg.Listen.Addr,
		ProxyProtocol:   cfg.Listen.ProxyProtocol,
		RateLimitWindow: cfg.Listen.RateLimitWindow,
		RateLimitMax:    cfg.Listen.RateLimitMax,
		AcceptRateLimit: cfg.Listen.AcceptRateLimit,
		AcceptBurst:     cfg.Listen.AcceptBurst,
		Connection: router.Config{
			MaxPacketLength:   cfg.Listen.MaxPacketLength,
			ConnectionTimeout: cfg.Listen.ConnectionTimeout,
			KeepAliveInterval: cfg.Listen.KeepAliveInterval,
			AuthSecret:        []byte(cfg.Listen.AuthSecret),
			AuthCookieExpiry:  cfg.Listen.AuthCookieExpiry,
		},
	}

	return router.NewListener(lnCfg, keys, facade, rec, logger)
}
