// Command passage runs the session router: a thin edge listener that
// inspects Handshake/Status/Login/Configuration traffic and either answers
// it directly (status, disconnect) or hands the connection off to a
// destination server via the Transfer packet.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scrayosnet/passage/pkg/config"
	"github.com/scrayosnet/passage/pkg/crypto"
	"github.com/scrayosnet/passage/pkg/metrics"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "passage",
		Short:   "passage is an edge session router for Minecraft Java Edition servers",
		Version: version(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./passage.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	_ = viper.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))

	cobra.OnInitialize(initViper)
	return cmd
}

func initViper() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("passage")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("passage")
	viper.AutomaticEnv()

	def := config.Default()
	viper.SetDefault("debug", def.Debug)
	viper.SetDefault("listen", def.Listen)
	viper.SetDefault("adapters", def.Adapters)

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			fmt.Fprintf(os.Stderr, "error reading config file: %v\n", err)
		}
	}
}

func run(ctx context.Context) error {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if err := initLogger(cfg.Debug); err != nil {
		return fmt.Errorf("error initializing global logger: %w", err)
	}
	logger := zap.L()

	if err := config.Validate(&cfg); err != nil {
		return fmt.Errorf("error validating config: %w", err)
	}

	keys := crypto.NewKeyPair()

	rec := metrics.NewInMemory()

	ln, err := config.BuildListener(cfg, keys, rec, logger)
	if err != nil {
		return fmt.Errorf("error building listener: %w", err)
	}

	printBanner(cfg, ln.Addr().String())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer func() { signal.Stop(sig); close(sig) }()

	go func() {
		s, ok := <-sig
		if !ok {
			return
		}
		logger.Sugar().Infof("received %s signal, shutting down", s)
		cancel()
	}()

	return ln.Run(runCtx)
}

func initLogger(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(l)
	return nil
}

func printBanner(cfg config.Config, addr string) {
	color.Cyan.Println("passage")
	color.Gray.Printf("  listening on %s\n", addr)
	color.Gray.Printf("  discovery:      %s\n", cfg.Adapters.Discovery)
	color.Gray.Printf("  authentication: %s\n", cfg.Adapters.Authentication)
}

// buildVersion is overridden at build time via -ldflags.
var buildVersion = "dev"

func version() string {
	return buildVersion
}
