package main

import (
	"context"
	"errors"
	"fmt"
	apiHttpAuth "github.com/awakari/venue-chat/api/http/auth"
	apiHttpChats "github.com/awakari/venue-chat/api/http/chats"
	"github.com/awakari/venue-chat/config"
	"github.com/awakari/venue-chat/service/blocks"
	"github.com/awakari/venue-chat/service/chats"
	"github.com/awakari/venue-chat/service/lock"
	"github.com/awakari/venue-chat/service/messages"
	"github.com/awakari/venue-chat/service/notify"
	"github.com/awakari/venue-chat/util"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {

	// init config and logger
	slog.Info("starting...")
	_ = godotenv.Load()
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load the config: %s", err))
	}
	opts := slog.HandlerOptions{
		Level: slog.Level(cfg.Log.Level),
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &opts))
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// tracing
	if cfg.Otel.Endpoint != "" {
		var shutdown func(context.Context) error
		shutdown, err = initTracing(ctx, cfg.Otel.Endpoint, cfg.Otel.ServiceName)
		if err != nil {
			panic(err)
		}
		log.Info(fmt.Sprintf("tracing enabled, endpoint: %s", cfg.Otel.Endpoint))
		defer func() {
			ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			_ = shutdown(ctxShutdown)
		}()
	}

	// storages
	db, err := util.NewMongoDatabase(ctx, cfg.Db)
	if err != nil {
		panic(err)
	}
	defer db.Client().Disconnect(context.Background())
	stor, err := chats.NewStorage(ctx, db, cfg.Db.Table.Chats)
	if err != nil {
		panic(err)
	}
	stor = chats.NewStorageLogging(stor, log)
	defer stor.Close()
	log.Info("initialized the chats storage")
	msgStor, err := messages.NewStorage(ctx, db, cfg.Db.Table.Messages)
	if err != nil {
		panic(err)
	}
	msgStor = messages.NewStorageLogging(msgStor, log)
	defer msgStor.Close()
	log.Info("initialized the messages storage")
	blockReg, err := blocks.NewRegistry(ctx, db, cfg.Db.Table.Blocks)
	if err != nil {
		panic(err)
	}
	blockReg = blocks.NewLogging(blockReg, log)
	defer blockReg.Close()
	log.Info("initialized the blocks registry")

	// locker
	var locker lock.Locker
	switch cfg.Lock.Redis.Addr {
	case "":
		locker = lock.NewLocal()
		log.Warn("redis address is not set, using the local chat locker")
	default:
		clientRedis := redis.NewClient(&redis.Options{
			Addr:     cfg.Lock.Redis.Addr,
			Password: cfg.Lock.Redis.Password,
			DB:       cfg.Lock.Redis.Db,
		})
		defer clientRedis.Close()
		locker = lock.NewRedis(clientRedis, cfg.Lock.Ttl, log)
		log.Info(fmt.Sprintf("using the redis chat locker at %s", cfg.Lock.Redis.Addr))
	}

	// notifications
	pub, err := notify.NewKafkaPublisher(cfg.Notify.Kafka.Brokers, cfg.Notify.Kafka.Topic, cfg.Notify.Format, cfg.Notify.Source)
	if err != nil {
		panic(err)
	}
	pub = notify.NewPublisherLogging(pub, log)
	notifier := notify.NewDispatcher(pub, cfg.Notify.QueueLen, notify.BackoffConfig{
		Init:       cfg.Notify.Backoff.Init,
		MaxElapsed: cfg.Notify.Backoff.MaxElapsed,
	}, log)
	defer notifier.Close()

	// chat lifecycle
	svc := chats.NewService(stor, msgStor, blockReg, notifier, locker, cfg.Chat, log)
	svc = chats.NewServiceLogging(svc, log)
	sweeper := chats.NewSweeper(stor, cfg.Chat.ExpiryWindow, cfg.Chat.SweepInterval, log)
	go sweeper.Run(ctx)

	// http api
	r := gin.New()
	r.ContextWithFallback = true
	r.Use(gin.Recovery())
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	g := r.Group(cfg.Api.Path, apiHttpAuth.NewMiddleware([]byte(cfg.Api.Auth.Secret), cfg.Api.Auth.AdminRole))
	apiHttpChats.Register(g, apiHttpChats.NewHandler(svc))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Api.Port),
		Handler:           otelhttp.NewHandler(r, cfg.Otel.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		_ = srv.Shutdown(ctxShutdown)
	}()
	log.Info(fmt.Sprintf("starting to listen the API @ port #%d...", cfg.Api.Port))
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
	log.Info("stopped")
}

func initTracing(ctx context.Context, endpoint, serviceName string) (shutdown func(context.Context) error, err error) {
	var exp *otlptrace.Exporter
	exp, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err == nil {
		tp := sdkTrace.NewTracerProvider(
			sdkTrace.WithBatcher(exp),
			sdkTrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		shutdown = tp.Shutdown
	}
	return
}
