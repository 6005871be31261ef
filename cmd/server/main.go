package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	cartapp "github.com/stockroom/backend/internal/application/cart"
	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	identityapp "github.com/stockroom/backend/internal/application/identity"
	importapp "github.com/stockroom/backend/internal/application/import"
	notificationapp "github.com/stockroom/backend/internal/application/notification"
	orderapp "github.com/stockroom/backend/internal/application/order"
	partnerapp "github.com/stockroom/backend/internal/application/partner"
	reportapp "github.com/stockroom/backend/internal/application/report"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/cache"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/infrastructure/event"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/infrastructure/messaging"
	"github.com/stockroom/backend/internal/infrastructure/metrics"
	"github.com/stockroom/backend/internal/infrastructure/persistence"
	"github.com/stockroom/backend/internal/infrastructure/scheduler"
	"github.com/stockroom/backend/internal/infrastructure/storage"
	"github.com/stockroom/backend/internal/infrastructure/telemetry"
	"github.com/stockroom/backend/internal/interfaces/http/handler"
	"github.com/stockroom/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting stockroom",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(log, "tracer", tracer.Shutdown)

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Warn("Profiler unavailable", zap.Error(err))
	} else {
		defer func() { _ = profiler.Stop() }()
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithZapLogger(log, logger.MapGormLogLevel(cfg.Log.Level)),
		persistence.WithSlowQueryThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	// Postgres schemas come from cmd/migrate; sqlite is for local runs and is migrated in place
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, cfg.Database.Driver, log); err != nil {
		log.Warn("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	nutritionRepo := persistence.NewGormNutritionRepository(db.DB)
	ruleRepo := persistence.NewGormExpiryRuleRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	if _, err := identityapp.EnsureDefaultRoles(ctx, roleRepo); err != nil {
		return err
	}

	healthChecks := map[string]handler.HealthCheck{"database": db.Ping}

	var redisClient *redis.Client
	if cfg.Cart.Store == config.CartStoreRedis {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	carts, err := cache.NewCartStore(cfg.Cart, redisClient, log)
	if err != nil {
		return err
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}

	// Interface values stay nil when storage is off so services can detect it
	var (
		avatars identityapp.AvatarStore
		exports reportapp.FileStore
	)
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return err
		}
		avatars, exports = s3, s3
	} else if !cfg.App.IsProduction() {
		mem := storage.NewMemoryObjectStorage()
		avatars, exports = mem, mem
	}

	bus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())
	var publisher shared.EventPublisher = bus
	if cfg.Events.Enabled() {
		kafkaPublisher, err := messaging.NewKafkaPublisher(cfg.Events)
		if err != nil {
			return err
		}
		defer func() { _ = kafkaPublisher.Close() }()
		publisher = event.NewFanoutPublisher(bus, kafkaPublisher)
		log.Info("Forwarding domain events to Kafka", zap.Strings("brokers", cfg.Events.Brokers))
	}

	stockLow := notificationapp.NewStockLowHandler(notificationRepo, userRepo)
	bus.Subscribe(stockLow, stockLow.EventTypes()...)
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer shutdownWithTimeout(log, "event bus", bus.Stop)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		sqlDB, err := db.SQLDB()
		if err != nil {
			return err
		}
		if err := m.RegisterDB(sqlDB, cfg.Database.Driver); err != nil {
			log.Warn("Database pool metrics unavailable", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	productService := catalogapp.NewProductService(productRepo, categoryRepo, nutritionRepo)
	productService.SetEventPublisher(publisher)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo)
	ruleService := catalogapp.NewExpiryRuleService(ruleRepo, productRepo)
	nutritionService := catalogapp.NewNutritionService(nutritionRepo)

	orderService := orderapp.NewService(orderRepo, productRepo, carts, persistence.NewGormOrderTransactionScope(db.DB))
	orderService.SetEventPublisher(publisher)
	if m != nil {
		orderService.SetRecorder(m)
	}

	authService := identityapp.NewAuthService(userRepo, roleRepo, jwtService, blacklist)
	authService.SetEventPublisher(publisher)
	userService := identityapp.NewUserService(userRepo, roleRepo, avatars, blacklist, jwtService.GetRefreshTokenExpiration())
	userService.SetEventPublisher(publisher)

	supplierService := partnerapp.NewSupplierService(supplierRepo)
	supplierService.SetEventPublisher(publisher)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, stopLimiters := router.NewEngine(router.Deps{
		Config:     cfg,
		Logger:     log,
		JWTService: jwtService,
		Blacklist:  blacklist,
		Metrics:    m,
		Handlers: router.Handlers{
			Auth:         handler.NewAuthHandler(authService),
			Account:      handler.NewAccountHandler(userService),
			Shop:         handler.NewShopHandler(productService, categoryService),
			Cart:         handler.NewCartHandler(cartapp.NewService(carts, productRepo)),
			Order:        handler.NewOrderHandler(orderService),
			Product:      handler.NewProductHandler(productService, ruleService),
			Category:     handler.NewCategoryHandler(categoryService),
			Nutrition:    handler.NewNutritionHandler(nutritionService),
			ExpiryRule:   handler.NewExpiryRuleHandler(ruleService),
			Supplier:     handler.NewSupplierHandler(supplierService),
			User:         handler.NewUserHandler(userService),
			Notification: handler.NewNotificationHandler(notificationapp.NewService(notificationRepo)),
			Report: handler.NewReportHandler(
				reportapp.NewDashboardService(userRepo, productRepo, supplierRepo, orderRepo),
				reportapp.NewExportService(productRepo, categoryRepo, orderRepo, userRepo, exports),
			),
			Import: handler.NewImportHandler(
				importapp.NewProductImportService(productService, categoryService, categoryRepo),
			),
			Health: handler.NewHealthHandler(healthChecks),
		},
	})
	defer stopLimiters()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Scheduler.Enabled {
		expiryJob := notificationapp.NewExpiryJob(ruleRepo, productRepo, userRepo, notificationRepo)
		trigger, err := scheduler.NewDailyTrigger(scheduler.DailyTriggerConfig{
			Hour:          cfg.Scheduler.ExpiryHour,
			Minute:        cfg.Scheduler.ExpiryMin,
			CheckInterval: time.Minute,
			Timeout:       cfg.Scheduler.JobTimeout,
		}, scheduler.JobFunc{
			JobName: "expiry_alerts",
			Fn: func(ctx context.Context, now time.Time) error {
				_, err := expiryJob.Run(ctx, now)
				return err
			},
		}, log)
		if err != nil {
			return err
		}
		if m != nil {
			trigger.SetRecorder(m)
		}
		if err := trigger.Start(gctx); err != nil {
			return err
		}
		defer shutdownWithTimeout(log, "scheduler", trigger.Stop)
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func shutdownWithTimeout(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Shutdown failed", zap.String("component", name), zap.Error(err))
	}
}
