package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/biomasters/biomasters-server-go/internal/config"
	"github.com/biomasters/biomasters-server-go/internal/game"
	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/repository"
	"github.com/biomasters/biomasters-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting BioMasters server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	tables, err := cards.LoadTables(cfg.Game.DataPath)
	if err != nil {
		logger.Fatal("failed to load card data", zap.String("path", cfg.Game.DataPath), zap.Error(err))
	}
	logger.Info("card data loaded",
		zap.String("path", cfg.Game.DataPath),
		zap.Int("cards", len(tables.CardIDs())),
	)

	store, closeStore, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open game store", zap.Error(err))
	}
	defer closeStore()

	engine := game.NewEngine(tables, logger)
	gameMgr := game.NewManager(engine, store, logger)
	if cfg.Game.RecordReplays {
		gameMgr.SetRecorder(game.NewReplayRecorder(logger, cfg.Game.ReplayDir))
		logger.Info("replay recording enabled", zap.String("directory", cfg.Game.ReplayDir))
	}

	clock := server.NewTurnClock(gameMgr, logger)
	defer clock.Stop()

	relay := server.NewRelay(gameMgr, cfg.Server.WebSocket, cfg.Rules, logger)
	go relay.Run(ctx)

	httpServer := &http.Server{
		Addr:    cfg.Server.WebSocket.Address,
		Handler: relay.Handler(),
	}
	go func() {
		logger.Info("starting WebSocket relay",
			zap.String("address", cfg.Server.WebSocket.Address),
			zap.String("path", cfg.Server.WebSocket.Path),
		)
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("WebSocket server error", zap.Error(serveErr))
		}
	}()

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("WebSocket server shutdown incomplete", zap.Error(err))
	}

	logger.Info("BioMasters server stopped")
}

// openStore selects the snapshot store named by cfg.Driver. The returned
// func releases it.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (game.Store, func(), error) {
	switch cfg.Driver {
	case "postgres":
		db, err := repository.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		stats := db.Stat()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		store := repository.NewPostgresStore(db, logger)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	default:
		logger.Info("using in-memory game store")
		return repository.NewMemoryStore(), func() {}, nil
	}
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
