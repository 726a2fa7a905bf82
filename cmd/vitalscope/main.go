package main

//	@title						VitalScope API
//	@version					0.1.0
//	@description				Web performance time-series analytics API.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/vitalscope/vitalscope/api/swagger"
	"github.com/vitalscope/vitalscope/internal/analyzer"
	"github.com/vitalscope/vitalscope/internal/auth"
	"github.com/vitalscope/vitalscope/internal/config"
	"github.com/vitalscope/vitalscope/internal/event"
	"github.com/vitalscope/vitalscope/internal/ingest"
	"github.com/vitalscope/vitalscope/internal/notify"
	"github.com/vitalscope/vitalscope/internal/registry"
	"github.com/vitalscope/vitalscope/internal/server"
	"github.com/vitalscope/vitalscope/internal/store"
	"github.com/vitalscope/vitalscope/internal/version"
	"github.com/vitalscope/vitalscope/internal/ws"
	"github.com/vitalscope/vitalscope/pkg/plugin"
	"go.uber.org/zap"
)

func main() {
	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Println(version.Info())
			return
		case "hash-key":
			runHashKey(os.Args[2:])
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Load configuration (before logger, so log level/format can be configured).
	viperCfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.New(viperCfg)

	// Initialize logger from configuration.
	logger, err := config.NewLogger(viperCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("VitalScope server starting", zap.String("version", version.Short()))

	if f := viperCfg.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	// Open database
	dbPath := viperCfg.GetString("database.path")
	if dbPath == "" {
		dbPath = "vitalscope.db"
	}
	db, err := store.New(dbPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.CheckVersion(context.Background(), version.Short()); err != nil {
		logger.Fatal("database version check failed", zap.Error(err))
	}

	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("path", dbPath),
	)

	// Create shared services
	bus := event.NewBus(logger.Named("event"))
	logger.Info("event bus created", zap.String("component", "event"))

	// Create plugin registry
	reg := registry.New(logger.Named("registry"))
	logger.Info("plugin registry created", zap.String("component", "registry"))

	// Register all plugins (compile-time composition)
	modules := []plugin.Plugin{
		ingest.New(),
		analyzer.New(),
		notify.New(),
	}
	for _, m := range modules {
		if err := reg.Register(m); err != nil {
			logger.Fatal("failed to register plugin", zap.Error(err))
		}
	}

	// Validate dependency graph and API versions
	if err := reg.Validate(); err != nil {
		logger.Fatal("plugin validation failed", zap.Error(err))
	}

	// Initialize all plugins with dependencies
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reg.InitAll(ctx, func(name string) plugin.Dependencies {
		pluginCfg := cfg.Sub("plugins." + name)
		return plugin.Dependencies{
			Config:  pluginCfg,
			Logger:  logger.Named(name),
			Store:   db,
			Bus:     bus,
			Plugins: reg,
		}
	}); err != nil {
		logger.Fatal("failed to initialize plugins", zap.Error(err))
	}

	// Wire declared event subscriptions, then start plugins.
	reg.WireSubscriptions(bus)
	if err := reg.StartAll(ctx); err != nil {
		logger.Fatal("failed to start plugins", zap.Error(err))
	}

	// Create auth service
	jwtSecret := viperCfg.GetString("auth.jwt_secret")
	if jwtSecret == "" {
		// Generate an ephemeral secret -- tokens won't survive restarts.
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			logger.Fatal("failed to generate JWT secret", zap.Error(err))
		}
		jwtSecret = hex.EncodeToString(b)
		logger.Info("using auto-generated JWT secret (normal for first run; set auth.jwt_secret in config to persist sessions across restarts)",
			zap.String("component", "auth"),
		)
	} else {
		logger.Info("JWT secret loaded from configuration", zap.String("component", "auth"))
	}

	accessTTL := viperCfg.GetDuration("auth.access_token_ttl")
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}

	tokens := auth.NewTokenService([]byte(jwtSecret), accessTTL)
	adminKeyHash := viperCfg.GetString("auth.admin_key_hash")
	if adminKeyHash == "" {
		logger.Warn("no admin API key configured, token exchange is disabled (set auth.admin_key_hash)",
			zap.String("component", "auth"),
		)
	}
	authHandler := auth.NewHandler(tokens, adminKeyHash, logger.Named("auth"))
	logger.Info("auth service initialized",
		zap.String("component", "auth"),
		zap.Duration("access_token_ttl", accessTTL),
	)

	// Create WebSocket handler for the live alert feed
	wsHandler := ws.NewHandler(tokens, bus, logger.Named("ws"))
	logger.Info("websocket handler initialized", zap.String("component", "ws"))

	// Create and start HTTP server
	addr := viperCfg.GetString("server.host") + ":" + viperCfg.GetString("server.port")
	if addr == ":" {
		addr = "0.0.0.0:8080"
	}
	logger.Info("HTTP server configured",
		zap.String("component", "server"),
		zap.String("addr", addr),
	)
	devMode := viperCfg.GetBool("server.dev_mode")
	readyCheck := server.ReadinessChecker(func(ctx context.Context) error {
		return db.DB().PingContext(ctx)
	})
	srv := server.New(addr, reg, logger, readyCheck, authHandler, devMode, wsHandler)

	// Start server in background
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("VitalScope server ready", zap.String("addr", addr))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	reg.StopAll(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("VitalScope server stopped")
}

// runHashKey prints the bcrypt hash of an API key for use in configuration.
func runHashKey(args []string) {
	fs := flag.NewFlagSet("hash-key", flag.ExitOnError)
	cost := fs.Int("cost", 12, "bcrypt cost")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vitalscope hash-key [-cost N] <key>")
		os.Exit(2)
	}

	hash, err := auth.HashKey(fs.Arg(0), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
