package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	enginex "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/engine"
	leasingx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/leasing"
	llmx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/llm"
	notifyx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/notify"
	promptx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/prompt"
	statex "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/tool"
	configx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/pkg/config"
	httpserverx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/pkg/httpserver"
	logx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/pkg/logger"
	openrouterx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/pkg/openrouter"
	postgresx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/pkg/postgres"
)

type AppConfig struct {
	SessionIdleTTL       time.Duration `envconfig:"SESSION_IDLE_TTL" split_words:"true" default:"30m"`
	SessionSweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" split_words:"true" default:"5m"`
	RedisURL             string        `envconfig:"REDIS_URL" split_words:"true"`
}

func main() {
	logCfg := configx.MustLoad[logx.Config]("LOG")
	logx.Init(*logCfg)

	appCfg := configx.MustLoad[AppConfig]("")
	llmCfg := configx.MustLoad[llmx.Config]("LLM")
	pgCfg := configx.MustLoad[postgresx.Config]("POSTGRES")
	smtpCfg := configx.MustLoad[notifyx.SMTPConfig]("SMTP")
	httpCfg := configx.MustLoad[httpserverx.Config]("HTTP")

	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fail fast on bad LLM credentials.
	openRouterCfg := llmCfg.OpenRouter()
	if err := openrouterx.CheckCredentials(ctx, openrouterx.NewClient(openRouterCfg)); err != nil {
		log.Fatal().Err(err).Msg("llm credential check failed")
	}
	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create chat model")
	}

	db := pgCfg.MustNew(ctx)
	defer db.Close()
	if err := leasingx.CreateSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("create schema")
	}
	if err := leasingx.Seed(ctx, db, time.Now()); err != nil {
		log.Fatal().Err(err).Msg("seed inventory")
	}
	repo := leasingx.NewRepo(db)

	notifier := notifyx.NewSMTPNotifier(*smtpCfg)
	var queue notifyx.RetryQueue = notifyx.NopQueue{}
	if appCfg.RedisURL != "" {
		opts, err := redis.ParseURL(appCfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse redis url")
		}
		redisQueue := notifyx.NewRedisRetryQueue(redis.NewClient(opts))
		redisQueue.StartWorker(ctx, notifier)
		queue = redisQueue
	}
	dispatcher := notifyx.NewDispatcher(notifier, queue)

	registry := statex.NewRegistry(statex.WithIdleTTL(appCfg.SessionIdleTTL))
	registry.StartSweeper(ctx, appCfg.SessionSweepInterval)

	gateway := toolx.NewGateway(repo, dispatcher)
	eng, err := enginex.New(ctx, registry, chatModel, gateway, promptx.Leasing())
	if err != nil {
		log.Fatal().Err(err).Msg("create engine")
	}

	server := httpserverx.New(*httpCfg, eng)
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := server.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}
}
