package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joshdurbin/hashlink/internal/app"
	"github.com/joshdurbin/hashlink/internal/config"
	"github.com/joshdurbin/hashlink/internal/logging"
	"github.com/joshdurbin/hashlink/internal/metrics"
	"github.com/joshdurbin/hashlink/internal/transport/client"
	httpTransport "github.com/joshdurbin/hashlink/internal/transport/http"
)

var rootCmd = &cobra.Command{
	Use:   "hashlink",
	Short: "A hash-based URL shortening service written in Go",
	Long:  "A URL shortening service deriving stable short codes from SHA-256 digests, backed by SQLite, PostgreSQL or MySQL with an optional Redis cache",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the URL shortening server",
	RunE:  runServer,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for interacting with the server",
}

var shortenCmd = &cobra.Command{
	Use:   "shorten [URL]",
	Short: "Shorten a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
			return c.Shorten(ctx, args[0])
		})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [SHORT_CODE]",
	Short: "Show stored information about a short code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
			return c.Info(ctx, args[0])
		})
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [SHORT_CODE]",
	Short: "Print the URL a short code redirects to (counts as a click)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
			return c.Resolve(ctx, args[0])
		})
	},
}

func init() {
	flags := serverCmd.Flags()
	flags.String("config", "", "Path to a YAML config file")
	flags.StringP("port", "p", "3000", "Server port")
	flags.String("base-url", "http://localhost:3000", "Base URL used to build short URLs")
	flags.String("db-driver", config.DriverSQLite, "Database driver (sqlite, postgres, mysql, memory)")
	flags.String("db-url", "urls.db", "Database path or connection string")
	flags.Int("max-connections", 10, "Maximum database connections")
	flags.Int("hash-length", 8, "Short code length in hex characters (1-64)")
	flags.String("cache-driver", config.CacheMemory, "Cache driver (memory, redis, none)")
	flags.String("redis-addr", "", "Redis address for the redis cache driver")
	flags.Duration("cache-ttl", 24*time.Hour, "Cache entry TTL")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console, json)")
	flags.String("log-file", "", "Also write logs to this rotating file")
	flags.BoolP("verbose", "v", false, "Enable verbose logging (HTTP request bodies and error responses)")

	clientCmd.PersistentFlags().StringP("server-url", "u", "http://localhost:3000", "Server URL")

	clientCmd.AddCommand(shortenCmd, infoCmd, resolveCmd)
	rootCmd.AddCommand(serverCmd, clientCmd)
}

// loadConfig resolves defaults, file, environment and explicitly set flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyFlags overlays only the flags the user actually set
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	str("port", &cfg.Server.Port)
	str("base-url", &cfg.Server.BaseURL)
	str("db-driver", &cfg.Database.Driver)
	str("db-url", &cfg.Database.URL)
	num("max-connections", &cfg.Database.MaxConnections)
	num("hash-length", &cfg.Shortener.HashLength)
	str("cache-driver", &cfg.Cache.Driver)
	str("redis-addr", &cfg.Cache.RedisAddr)
	str("log-level", &cfg.Logging.Level)
	str("log-format", &cfg.Logging.Format)
	str("log-file", &cfg.Logging.File)
	if flags.Changed("cache-ttl") {
		cfg.Cache.TTL, _ = flags.GetDuration("cache-ttl")
	}
	if flags.Changed("verbose") {
		cfg.Logging.Verbose, _ = flags.GetBool("verbose")
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Config)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting URL shortener server",
		zap.String("port", cfg.Server.Port),
		zap.String("base_url", cfg.Server.BaseURL))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc, err := app.NewService(initCtx, cfg, m, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("error closing service", zap.Error(err))
		}
	}()

	server := httpTransport.NewServer(svc, httpTransport.ServerConfig{
		Port:         cfg.Server.Port,
		BaseURL:      cfg.Server.BaseURL,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Verbose:      cfg.Logging.Verbose,
	}, logger, m, m.Handler())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		logger.Info("received signal, shutting down gracefully", zap.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", zap.Error(err))
		}
	}

	logger.Info("server stopped")
	return nil
}

func withCommands(cmd *cobra.Command, fn func(context.Context, *client.Commands) error) error {
	serverURL, _ := cmd.Flags().GetString("server-url")
	commands := client.NewCommands(client.NewClient(serverURL))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return fn(ctx, commands)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
