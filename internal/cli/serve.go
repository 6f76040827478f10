package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"craftmarket/internal/account"
	"craftmarket/internal/catalog"
	"craftmarket/internal/chat"
	"craftmarket/internal/checkout"
	"craftmarket/internal/config"
	"craftmarket/internal/customorder"
	"craftmarket/internal/database"
	"craftmarket/internal/logging"
	"craftmarket/internal/middleware"
	"craftmarket/internal/money"
	"craftmarket/internal/notify"
	"craftmarket/internal/payment"
	"craftmarket/internal/server"
	"craftmarket/internal/storage"
	"craftmarket/internal/store"
)

const (
	shutdownTimeout    = 10 * time.Second
	relayInterval      = 5 * time.Second
	limiterSweepPeriod = 5 * time.Minute
	chatHubBuffer      = 16
)

func serveCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.Load()
			cfg := config.AppEnv
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
			slog.SetDefault(logger)
			if cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, migrate bool) error {
	log := logging.Component("server")

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if migrate {
		if err := database.MigrateUp(ctx, db.DB, database.DialectPostgres); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	st := store.New(db)
	currency := money.NewCurrency(cfg.Currency, cfg.CurrencyScale)
	money.SetWireCurrency(currency)
	gateway := payment.NewSnapClient(cfg.MidtransBaseURL, cfg.MidtransServerKey, &http.Client{Timeout: 15 * time.Second})
	notifier := notify.NewService(st)
	hub := chat.NewHub(chatHubBuffer)

	g, gctx := errgroup.WithContext(ctx)

	var publisher chat.Publisher
	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		broker := chat.NewRedisBroker(rdb, hub)
		publisher = broker
		g.Go(func() error { return broker.Run(gctx) })
		if cfg.RateLimitPerMinute > 0 {
			limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitPerMinute)
		}
	} else if cfg.RateLimitPerMinute > 0 {
		local := middleware.NewLocalLimiter(cfg.RateLimitPerMinute)
		limiter = local
		g.Go(func() error {
			ticker := time.NewTicker(limiterSweepPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					local.Sweep(limiterSweepPeriod)
				}
			}
		})
	}

	var archive payment.Archive = payment.NopArchive{}
	if cfg.MongoURI != "" {
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		mdb := client.Database(cfg.MongoDB)
		if err := database.EnsurePaymentNotificationIndexes(mdb); err != nil {
			log.Warn("payment notification index warning", logging.Err(err))
		}
		archive = payment.NewMongoArchive(mdb)
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaNotificationTopic)
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		defer kafka.Close()
		relay := notify.NewRelay(st, kafka, relayInterval)
		g.Go(func() error { return relay.Run(gctx) })
	}

	deps := server.Deps{
		DB:            db,
		JWTSecret:     cfg.JWTSecret,
		WebhookSecret: cfg.PaymentWebhookSecret,
		Limiter:       limiter,
		Accounts:      account.NewService(st, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Catalog:       catalog.NewService(st),
		Checkout:      checkout.NewService(st, gateway, currency, cfg.PaymentExpiry),
		CustomOrders:  customorder.NewService(st, notifier, gateway, currency, cfg.PaymentExpiry),
		Chat:          chat.NewService(st, notifier, hub, publisher, cfg.ChatPollInterval),
		Notifications: notifier,
		Archive:       archive,
	}
	if cfg.S3Region != "" {
		objects, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("s3 store: %w", err)
		}
		deps.Objects = objects
	} else {
		objects, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadPublicPath)
		if err != nil {
			return err
		}
		deps.Objects = objects
		deps.StaticDir = cfg.UploadDir
		deps.StaticPath = cfg.UploadPublicPath
	}
	if cfg.PaymentWebhookSecret == "" {
		log.Warn("PAYMENT_WEBHOOK_SECRET is empty; every webhook will be rejected")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
