// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-file-gate/internal/application"
	"telegram-file-gate/internal/config"
	pg "telegram-file-gate/internal/infra/db/postgres"
	"telegram-file-gate/internal/infra/logging"
	"telegram-file-gate/internal/infra/metrics"
	red "telegram-file-gate/internal/infra/redis"
	"telegram-file-gate/internal/infra/sched"
	tele "telegram-file-gate/internal/infra/telegram"
	"telegram-file-gate/internal/infra/web"
	"telegram-file-gate/internal/infra/worker"
	"telegram-file-gate/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, insecure cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	sessionRepo := red.NewSessionRepo(redisClient, cfg.Redis.SessionTTL)

	// ---- Repositories ----
	txm := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	linkRepo := pg.NewLinkRepo(pool)
	contentRepo := pg.NewContentRepo(pool)
	batchRepo := pg.NewBatchRepo(pool)
	tokenRepo := pg.NewTokenRepo(pool)
	channelRepo := pg.NewChannelRepo(pool)
	settingsRepo := pg.NewSettingsRepo(pool)

	// ---- Telegram client + outbound gateway ----
	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram api")
	}
	gateway := tele.NewGateway(api, logger)

	// ---- Use cases ----
	clock := usecase.RealClock{}

	registryUC := usecase.NewRegistryUseCase(linkRepo, clock, logger)
	membershipUC := usecase.NewMembershipUseCase(channelRepo, gateway, cfg.Access.MembershipTimeout, logger)
	ledgerUC := usecase.NewEntitlementUseCase(userRepo, txm, clock, cfg.Bot.OwnerID, logger)
	tokenUC := usecase.NewTokenUseCase(tokenRepo, ledgerUC, txm, cfg.Access.TokenGrant, clock, logger)
	accessUC := usecase.NewAccessUseCase(registryUC, membershipUC, ledgerUC, contentRepo, batchRepo, logger)
	sessionUC := usecase.NewSessionUseCase(sessionRepo, contentRepo, batchRepo, registryUC, clock, logger)
	linkUC := usecase.NewLinkUseCase(contentRepo, batchRepo, registryUC, membershipUC, cfg.Access.MaxRangePosts, clock, logger)
	userUC := usecase.NewUserUseCase(userRepo, txm, clock, logger)
	settingsUC := usecase.NewSettingsUseCase(settingsRepo)
	channelUC := usecase.NewChannelUseCase(channelRepo, gateway, clock, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, contentRepo, batchRepo, linkRepo, tokenRepo, clock)

	wp := worker.NewPool(4, logger)
	wp.Start(ctx)
	defer wp.Stop()
	broadcastUC := usecase.NewBroadcastUseCase(userRepo, gateway, wp, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(
		userUC, accessUC, registryUC, linkUC, sessionUC, tokenUC,
		ledgerUC, channelUC, settingsUC, statsUC, broadcastUC,
		cfg.Bot.Username,
	)

	// ---- Cleanup worker (auto-delete) ----
	cleanup := sched.NewCleanupWorker(15*time.Second, gateway, logger)
	go func() { _ = cleanup.Run(ctx) }()

	// ---- Telegram polling ----
	bot, err := tele.NewBot(api, gateway, &cfg.Bot, facade, cleanup, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram bot")
	}
	if mode := strings.ToLower(cfg.Bot.Mode); mode != "" && mode != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}
	go func() {
		if err := bot.StartPolling(ctx); err != nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Admin API ----
	webSrv := web.NewServer(&cfg.Admin, statsUC, channelUC, cfg.Runtime.Dev, logger)
	go func() {
		if err := webSrv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := webSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("admin server shutdown")
	}
	bot.StopPolling()
	cancel()
}
