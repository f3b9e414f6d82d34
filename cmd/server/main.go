package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/app"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/cache"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/config"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/database"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/engine"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/event"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/handler"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/metrics"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/queue"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/refund"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/repository"
	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	log := app.NewLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database open failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	scheduleRepo := repository.NewScheduleRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	fleetRepo := repository.NewFleetRepo(db)
	userRepo := repository.NewUserRepo(db)

	events := event.NewBus(log.Named("events"))
	registry, manager := engine.New(scheduleRepo, bookingRepo, fleetRepo, refund.Default(), events, log)

	// Event subscribers: metrics, cache invalidation, broker publishing.
	collector := metrics.NewCollector()
	events.Subscribe(collector.HandleEvent)

	cacheCfg := config.LoadCacheConfig()
	var rdb *redis.Client
	if cacheCfg.Enabled {
		if rdb = config.NewRedisClient(); rdb == nil {
			log.Warn("redis unavailable, availability cache disabled")
		}
	}
	availability := cache.NewAvailability(rdb, cacheCfg.TTL, cacheCfg.Prefix, func(ctx context.Context, scheduleID int64) (int, error) {
		s, err := registry.Schedule(ctx, scheduleID)
		if err != nil {
			return 0, err
		}
		return s.AvailableSeats, nil
	}, log.Named("cache"))
	events.Subscribe(availability.HandleEvent)

	if cfg.AMQPURL != "" {
		publisher := queue.NewPublisher(cfg.AMQPURL, log.Named("amqp"))
		events.Subscribe(publisher.HandleEvent)
		go queue.StartEventConsumer(cfg.AMQPURL, log.Named("consumer"))
	} else {
		log.Warn("AMQP_URL unset, event publishing disabled")
	}

	// Background sweep that completes trips whose arrival has passed.
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.CompleteSweepMin) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			n, err := registry.CompleteTrips(context.Background(), time.Now().UTC())
			if err != nil {
				log.Warn("complete sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("completed trips", zap.Int("count", n))
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	scheduleHandler := handler.NewScheduleHandler(registry, availability)
	bookingHandler := handler.NewBookingHandler(manager, registry, fleetRepo, userRepo)
	router.Register(e, scheduleHandler, bookingHandler, collector.Handler())

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
