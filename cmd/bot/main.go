package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/osse101/LootChestBot_Go/internal/chest"
	"github.com/osse101/LootChestBot_Go/internal/config"
	"github.com/osse101/LootChestBot_Go/internal/cooldown"
	"github.com/osse101/LootChestBot_Go/internal/discord"
	"github.com/osse101/LootChestBot_Go/internal/economy"
	"github.com/osse101/LootChestBot_Go/internal/genai"
	"github.com/osse101/LootChestBot_Go/internal/handler"
	"github.com/osse101/LootChestBot_Go/internal/ledger"
	"github.com/osse101/LootChestBot_Go/internal/logger"
	"github.com/osse101/LootChestBot_Go/internal/scheduler"
	"github.com/osse101/LootChestBot_Go/internal/server"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Bot failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCfg := logger.DevelopmentConfig()
	if cfg.Environment == "prod" {
		logCfg = logger.ProductionConfig()
	}
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logCfg.Environment = cfg.Environment
	logCfg.Version = version
	logger.Init(logCfg)
	log := slog.Default()

	if err := os.MkdirAll(filepath.Dir(cfg.DataFile), 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.ImageDir, 0o755); err != nil {
		return err
	}

	store, err := ledger.Open(cfg.DataFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	gen, err := genai.New(ctx, cfg.GeminiAPIKey, cfg.ImageDir)
	if err != nil {
		return err
	}
	defer gen.Close()

	bot, err := discord.New(discord.Config{Token: cfg.DiscordToken})
	if err != nil {
		return err
	}

	eco := economy.NewService(store)
	notifier := discord.NewNotifier(bot.Session, cfg.CommandPrefix)
	chests := chest.NewService(store, gen, notifier, eco)
	guard := cooldown.NewGuard(time.Duration(cfg.OpenCooldownSeconds) * time.Second)

	bot.SetDispatcher(handler.New(handler.Options{
		Prefix:       cfg.CommandPrefix,
		Chests:       chests,
		Economy:      eco,
		Guard:        guard,
		Roles:        discord.NewRoleResolver(bot.Session),
		DropRoleIDs:  cfg.DropRoleIDs,
		GrantRoleIDs: cfg.GrantRoleIDs,
	}))

	if err := bot.Start(); err != nil {
		return err
	}
	defer bot.Stop()

	drops := scheduler.New(chests)
	drops.Start()
	defer drops.Stop()

	srv := server.NewServer(cfg.Port, store)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	log.Info("Loot chest bot running", "environment", cfg.Environment, "prefix", cfg.CommandPrefix)

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}
	if err := store.Save(); err != nil {
		log.Error("Final snapshot flush failed", "error", err)
	}
	return nil
}
