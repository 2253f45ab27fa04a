package application

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"bid_market/internal/config"
	"bid_market/internal/domain/service/offer"
	"bid_market/internal/infrastructure/notifier"
	"bid_market/internal/infrastructure/persistence"
	"bid_market/internal/infrastructure/realtime"
	"bid_market/internal/server"
	"bid_market/internal/worker"
	"bid_market/pkg/application/connectors"
	"bid_market/pkg/application/modules"
	"bid_market/pkg/contextx"
	"bid_market/pkg/logx"
	"bid_market/pkg/middlewarex"
)

const alertBufferSize = 100

func Run(ctx context.Context, log *slog.Logger) error {
	ctx = contextx.WithLogger(ctx, log)

	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	// 2. Database
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	log.Info("database connection OK")

	// 3. Redis
	rd := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	rdb := rd.Client(ctx)
	defer rd.Close(ctx)

	// 4. Repositories
	listingRepo := persistence.NewListingRepository(db)
	bidRepo := persistence.NewBidRepository(db)
	markerRepo := persistence.NewReadMarkerRepository(db)
	conversationRepo := persistence.NewConversationRepository(db)

	// 5. Marker write-through via asynq
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DatabaseNumber,
	})
	defer asynqClient.Close()

	enqueuer := worker.NewMarkerEnqueuer(asynqClient, cfg.Asynq.Queue)
	markerHandler := worker.NewReadMarkerHandler(markerRepo)

	// 6. Domain services
	sessions := offer.NewRegistry(enqueuer)
	messenger := offer.NewMessenger(conversationRepo)
	publisher := realtime.NewPublisher(rdb)

	// 7. HTTP server
	srv := server.NewServer(
		server.NewListingServer(listingRepo, markerRepo, sessions),
		server.NewBidServer(listingRepo, bidRepo, publisher, sessions, messenger),
	)

	masker := logx.NewSensitiveDataMasker()

	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, cfg.HTTP.LogFieldMaxLen),
		middlewarex.ResponseLogging(masker, cfg.HTTP.LogFieldMaxLen),
		server.Auth,
	)
	srv.RegisterRoutes(router)

	httpServer := &http.Server{
		//nolint:exhaustruct
		Addr:    cfg.HTTP.ListenAddress,
		Handler: router,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	// 8. Run modules
	g, ctx := errgroup.WithContext(ctx)

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, httpServer)
	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Probe.ListenAddress,
	}.Run(ctx, g)
	modules.MetricServer{ListenAddress: cfg.Metrics.ListenAddress}.Run(ctx, g)

	modules.AsynqServer{
		RedisAddress:  cfg.Redis.Address,
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DatabaseNumber,
	}.Run(ctx, g,
		modules.AsynqQueues{cfg.Asynq.Queue: 1},
		modules.AsynqHandler{
			Pattern: worker.TaskTypeReadMarkerUpsert,
			Handle:  markerHandler.Handle,
		},
	)

	// 9. Bid feed + optional alert bot
	alerts := make(chan worker.BidAlert, alertBufferSize)

	feed := worker.NewBidFeed(rdb, sessions, alerts).
		WithAlertThreshold(cfg.Bot.AlertThresholdCents)

	g.Go(func() error {
		defer close(alerts)

		if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("bid feed: %w", err)
		}
		return nil
	})

	if cfg.Bot.Enabled() {
		alertBot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier bot: %w", err)
		}

		if err := alertBot.SendText(ctx, "🚀 Bid alerts online"); err != nil {
			log.Warn("notifier bot startup check failed", logx.Error(err))
		}

		g.Go(func() error {
			log.Info("notifier bot started listening")

			if err := alertBot.Run(ctx, alerts); err != nil && ctx.Err() == nil {
				log.Error("notifier bot stopped", logx.Error(err))
			}
			return nil
		})
	} else {
		// Nobody listens; drain so the feed's alert sends never pile up.
		g.Go(func() error {
			for range alerts {
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	log.Info("application stopping...")
	return nil
}
