package main

import (
	"Facely/bot"
	"Facely/core"
	"Facely/holder"
	"Facely/lib/sl"
	"Facely/relay"
	"Facely/storage"
	"Facely/upstream"
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const (
	envLocal = "local"
	envDev   = "dev"

	janitorInterval = time.Minute
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Parse()

	// a local .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("loading .env", sl.Err(err))
	}

	conf := core.MustLoad(*configPath)
	log := setupLogger(conf.Env)
	log.With(
		slog.String("config", *configPath),
		slog.String("env", conf.Env),
		slog.String("images", conf.Images.URL),
		slog.Int("max", conf.Images.Max),
		slog.Int("group", conf.Images.GroupSize),
	).Info("starting facely bot")

	sessions, runs := setupStorage(conf, log)

	api, err := tgbotapi.NewBotAPI(conf.TelegramApiKey)
	if err != nil {
		log.Error("creating telegram", sl.Secret(conf.TelegramApiKey), sl.Err(err))
		return
	}
	api.Debug = conf.Env == envLocal

	fetcher, err := upstream.NewFetcher(
		upstream.WithURL(conf.Images.URL),
		upstream.WithTimeout(conf.Images.Timeout),
	)
	if err != nil {
		log.Error("creating image fetcher", sl.Err(err))
		return
	}
	tempStore, err := upstream.NewTempStore(conf.Images.TempDir)
	if err != nil {
		log.Error("creating temp store", sl.Err(err))
		return
	}

	transport := bot.NewTransport(api, log)
	faces := relay.New(transport, transport, fetcher, tempStore, log)
	prompts := holder.NewPromptManager(sessions, conf.Bot.PromptTTL, log)
	guard := holder.NewRunGuard(conf.Bot.MaxConcurrentRuns)
	handler := bot.NewHandler(conf, transport, transport, faces, prompts, guard, runs, log)
	tgBot := bot.NewTgBot(api, handler, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tgBot.Start(ctx)
	})
	g.Go(func() error {
		return prompts.RunJanitor(ctx, janitorInterval)
	})

	log.Info("bot started", slog.String("username", api.Self.UserName))

	if err := g.Wait(); err != nil {
		log.Error("bot stopped with error", sl.Err(err))
	}

	if left := tempStore.Outstanding(); left > 0 {
		log.Warn("temp images left behind", slog.Int("count", left))
	}
	if err := runs.Close(); err != nil {
		log.Error("error closing run storage", sl.Err(err))
	}
	if err := prompts.Close(); err != nil {
		log.Error("error closing session storage", sl.Err(err))
	}

	log.Info("shutdown complete")
}

func setupStorage(conf *core.Config, log *slog.Logger) (storage.SessionStorage, storage.RunStorage) {
	if !conf.Mongo.Enabled {
		log.Info("using in-memory storage")
		return storage.NewMemorySessionStorage(), storage.NewMemoryRunStorage()
	}

	sessions, err := storage.NewMongoSessionStorage(conf.MongoURI(), conf.Mongo.Database, log)
	if err != nil {
		log.With(
			slog.String("db", conf.Mongo.Database),
			slog.String("user", conf.Mongo.User),
			slog.String("host", conf.Mongo.Host),
		).Error("falling back to memory", sl.Err(err))
		return storage.NewMemorySessionStorage(), storage.NewMemoryRunStorage()
	}

	runs, err := storage.NewMongoRunStorage(sessions.GetClient(), sessions.GetDatabase(), log)
	if err != nil {
		log.Error("run history falls back to memory", sl.Err(err))
		return sessions, storage.NewMemoryRunStorage()
	}

	log.Info("using MongoDB storage")
	return sessions, runs
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
