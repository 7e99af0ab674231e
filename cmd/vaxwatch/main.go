package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vaxwatch/vaxwatch/internal/application/ingest"
	"github.com/vaxwatch/vaxwatch/internal/application/notify"
	"github.com/vaxwatch/vaxwatch/internal/config"
	"github.com/vaxwatch/vaxwatch/internal/infrastructure/dynamo"
	"github.com/vaxwatch/vaxwatch/internal/infrastructure/feed"
	jwtinfra "github.com/vaxwatch/vaxwatch/internal/infrastructure/jwt"
	s3infra "github.com/vaxwatch/vaxwatch/internal/infrastructure/s3"
	"github.com/vaxwatch/vaxwatch/internal/infrastructure/smtp"
	"github.com/vaxwatch/vaxwatch/internal/infrastructure/sns"
	"github.com/vaxwatch/vaxwatch/internal/render"
	transporthttp "github.com/vaxwatch/vaxwatch/internal/transport/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	if cfg.FeedURL == "" {
		logger.Error("FEED_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	recordRepo := dynamo.NewRecordRepo(dynamoClient, cfg.DynamoTables.Records)
	subscriberRepo := dynamo.NewSubscriberRepo(dynamoClient, cfg.DynamoTables.Subscribers)
	watermarkRepo := dynamo.NewWatermarkRepo(dynamoClient, cfg.DynamoTables.Watermarks)
	supplyRepo := dynamo.NewSupplyRepo(dynamoClient, cfg.DynamoTables.Supply)
	deliveryRepo := dynamo.NewDeliveryRepo(dynamoClient, cfg.DynamoTables.DeliveryReports)

	// JWT provider (optional — admin routes stay closed without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		logger.Warn("jwt provider not available, admin routes disabled", "err", err)
	}

	// S3 store for history exports.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// Delivery channels: SMTP always, SNS when credentials allow.
	channels := notify.Channels{"email": smtp.NewMailer(cfg)}
	if sender, err := sns.NewSender(cfg); err == nil {
		channels["sms"] = sender
	} else {
		logger.Warn("sns sender not available, sms channel disabled", "err", err)
	}

	renderer := render.New(cfg.EligiblePopulation)

	notifier := notify.NewNotifier(
		recordRepo, watermarkRepo, subscriberRepo, deliveryRepo,
		channels, renderer.DailyUpdate,
		notify.Options{
			Lookback:    cfg.LookbackDays,
			SendTimeout: cfg.SendTimeout,
			SendRate:    cfg.SendRate,
			SendBurst:   cfg.SendBurst,
		},
		logger,
	)

	var alert func(ctx context.Context, text string)
	if cfg.AdminAddress != "" {
		alert = func(ctx context.Context, text string) {
			if err := notifier.Deliver(ctx, cfg.AdminChannel, cfg.AdminAddress, text); err != nil {
				logger.Warn("admin alert failed", "err", err)
			}
		}
	}

	poller := ingest.NewPoller(
		feed.NewClient(cfg.FeedURL, cfg.FeedTimeout),
		recordRepo,
		cfg.LookbackDays,
		ingest.Delays{
			Failed:    cfg.PollRetryDelay,
			Unchanged: cfg.PollUnchangedDelay,
			Absorbed:  cfg.PollAbsorbedDelay,
		},
		logger,
	)
	scheduler := notify.NewScheduler(notifier, cfg.NotifyInterval, logger)

	go poller.Run(ctx)
	go scheduler.Run(ctx)

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		RecordRepo:     recordRepo,
		SubscriberRepo: subscriberRepo,
		SupplyRepo:     supplyRepo,
		DeliveryRepo:   deliveryRepo,
		Notifier:       notifier,
		S3Store:        s3Store,
		JWTProvider:    jwtProvider,
		Alert:          alert,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
