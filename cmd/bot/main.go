package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Spok95/session-bot/internal/app"
	"github.com/Spok95/session-bot/internal/auth"
	"github.com/Spok95/session-bot/internal/bot/draft"
	"github.com/Spok95/session-bot/internal/bot/handlers"
	"github.com/Spok95/session-bot/internal/cache"
	"github.com/Spok95/session-bot/internal/config"
	"github.com/Spok95/session-bot/internal/db"
	"github.com/Spok95/session-bot/internal/jobs"
	"github.com/Spok95/session-bot/internal/logging"
	"github.com/Spok95/session-bot/internal/observability"
	"github.com/Spok95/session-bot/internal/profile"
)

var version = "dev"

func main() {
	// .env необязателен: в проде переменные приходят из окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	time.Local = cfg.Location

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	} else {
		defer flush()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(ctx, database); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	if created, err := db.SeedDefaultSemester(ctx, database, time.Now()); err != nil {
		logger.Fatal("default semester seed failed", zap.Error(err))
	} else if created {
		logger.Info("default semester created")
	}

	rc, err := cache.New(ctx, cfg.RedisURL, cache.DefaultTTL)
	if err != nil {
		// без кэша рейтинг читается из БД
		logger.Warn("redis unavailable, ranking cache disabled", zap.Error(err))
		rc = nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("telegram init failed", zap.Error(err))
	}
	bot.Debug = cfg.Env != "prod"
	logger.Info("bot started", zap.String("username", bot.Self.UserName), zap.String("version", version))

	board := app.NewLeaderboard(database, rc, logger)
	drafts := draft.NewStore(cfg.DraftTTL)
	env := &handlers.Env{
		Bot:         bot,
		DB:          database,
		Log:         logger,
		Roles:       auth.NewDBChecker(database, cfg.AdminIDs),
		Profiles:    profile.New(cfg.EmailDomain),
		Board:       board,
		Drafts:      drafts,
		StaffChatID: cfg.StaffChatID,
		Loc:         cfg.Location,
	}
	dispatcher := app.NewDispatcher(env, logger)

	app.StartHTTP(ctx, cfg.HTTPAddr, database, logger)

	runner := jobs.New(ctx, logger)
	if cfg.RankingRefresh > 0 {
		runner.Every(cfg.RankingRefresh, "ranking_refresh", jobs.RankingRefresh(board, logger))
	}
	runner.Every(time.Minute, "pending_backlog", jobs.PendingBacklog(database))
	runner.Every(time.Minute, "draft_sweep", jobs.DraftSweep(drafts, time.Now))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			logger.Info("shutting down")
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			go dispatcher.HandleUpdate(ctx, upd)
		}
	}
}
