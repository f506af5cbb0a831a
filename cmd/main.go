package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	checkAvailabilityHandler "github.com/m04kA/SMC-BoatRental/internal/api/handlers/check_availability"
	createPaymentIntentHandler "github.com/m04kA/SMC-BoatRental/internal/api/handlers/create_payment_intent"
	createQuoteHandler "github.com/m04kA/SMC-BoatRental/internal/api/handlers/create_quote"
	getBookingHandler "github.com/m04kA/SMC-BoatRental/internal/api/handlers/get_booking"
	listBoatsHandler "github.com/m04kA/SMC-BoatRental/internal/api/handlers/list_boats"
	listBookingsHandler "github.com/m04kA/SMC-BoatRental/internal/api/handlers/list_bookings"
	paymentWebhookHandler "github.com/m04kA/SMC-BoatRental/internal/api/handlers/payment_webhook"
	releaseHoldHandler "github.com/m04kA/SMC-BoatRental/internal/api/handlers/release_hold"
	updateBookingHandler "github.com/m04kA/SMC-BoatRental/internal/api/handlers/update_booking"
	"github.com/m04kA/SMC-BoatRental/internal/api/middleware"
	"github.com/m04kA/SMC-BoatRental/internal/config"
	"github.com/m04kA/SMC-BoatRental/internal/infra/lock"
	bookingRepo "github.com/m04kA/SMC-BoatRental/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-BoatRental/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-BoatRental/internal/integrations/notifier"
	"github.com/m04kA/SMC-BoatRental/internal/integrations/payments"
	bookingsService "github.com/m04kA/SMC-BoatRental/internal/service/bookings"
	"github.com/m04kA/SMC-BoatRental/internal/service/holds"
	"github.com/m04kA/SMC-BoatRental/internal/service/pricing"
	checkAvailabilityUC "github.com/m04kA/SMC-BoatRental/internal/usecase/check_availability"
	createPaymentIntentUC "github.com/m04kA/SMC-BoatRental/internal/usecase/create_payment_intent"
	createQuoteUC "github.com/m04kA/SMC-BoatRental/internal/usecase/create_quote"
	handlePaymentEventUC "github.com/m04kA/SMC-BoatRental/internal/usecase/handle_payment_event"
	listBoatsUC "github.com/m04kA/SMC-BoatRental/internal/usecase/list_boats"
	reapExpiredHoldsUC "github.com/m04kA/SMC-BoatRental/internal/usecase/reap_expired_holds"
	"github.com/m04kA/SMC-BoatRental/internal/worker/holdexpiry"
	"github.com/m04kA/SMC-BoatRental/internal/worker/reaper"
	"github.com/m04kA/SMC-BoatRental/pkg/dbmetrics"
	"github.com/m04kA/SMC-BoatRental/pkg/logger"
	"github.com/m04kA/SMC-BoatRental/pkg/metrics"
	"github.com/m04kA/SMC-BoatRental/pkg/txmanager"
)

// reservationMetrics объединяет метрики, которые используют сервисы и use cases
type reservationMetrics interface {
	ObserveHold(result string)
	IncHoldReleased()
	IncHoldExpired()
	IncGatewayError()
	ObserveTransition(from, to string)
	IncAdminOverride(to string)
	ObserveReaperRun(result string)
	SetCatalogVersion(version int64)
}

func main() {
	// Загружаем конфигурацию
	configPath := config.Path("config.toml")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-BoatRental...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены)
	var (
		metricsCollector *metrics.Metrics
		appMetrics       reservationMetrics = metrics.Nop{}
		dbCollector      dbmetrics.Collector
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		appMetrics = metricsCollector
		dbCollector = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, dbCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)

	// Блокировка по лодке: Redis для нескольких экземпляров, иначе внутри процесса
	var (
		boatLocker  holds.Locker
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}
		boatLocker = lock.NewRedisLocker(redisClient, lock.RedisOptions{
			Prefix: cfg.Redis.LockKeyPrefix,
			TTL:    cfg.Redis.LockTTL(),
			Wait:   cfg.Redis.LockWait(),
			Retry:  cfg.Redis.LockRetry(),
		}, log)
		log.Info("Using redis boat lock (addr=%s)", cfg.Redis.Addr)
	} else {
		boatLocker = lock.NewLocalLocker()
		log.Info("Using in-process boat lock")
	}

	// Публикация событий бронирований
	var (
		eventPublisher bookingsService.EventPublisher = notifier.Nop{}
		brokerConn     *notifier.Publisher
	)
	if cfg.Broker.Enabled {
		brokerConn, err = notifier.NewPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to broker: %v", err)
		}
		eventPublisher = brokerConn
		log.Info("Booking events are published to exchange %s", cfg.Broker.Exchange)
	}

	// Отложенные задачи истечения холдов
	var (
		expiryScheduler createQuoteUC.ExpiryScheduler = holdexpiry.Nop{}
		asynqClient     *asynq.Client
		asynqServer     *asynq.Server
		queueOpts       = holdexpiry.ServerOptions{
			RedisAddr:     cfg.TaskQueue.RedisAddr,
			RedisPassword: cfg.Redis.Password,
			RedisDB:       cfg.Redis.DB,
			Concurrency:   cfg.TaskQueue.Concurrency,
			Queue:         cfg.TaskQueue.Queue,
			Logger:        log.Sugar(),
		}
	)
	if cfg.TaskQueue.Enabled {
		asynqClient = asynq.NewClient(queueOpts.RedisOpt())
		expiryScheduler = holdexpiry.NewScheduler(asynqClient, cfg.TaskQueue.Queue, log)
		log.Info("Hold expiry tasks enabled (queue=%s)", cfg.TaskQueue.Queue)
	}

	// Каталог и цены
	catalogProvider := pricing.NewCatalogProvider(
		catalogRepository,
		txMgr,
		appMetrics,
		&pricing.RealTimeProvider{},
		log,
	)
	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	if err := catalogProvider.Refresh(initCtx); err != nil {
		log.Error("Initial catalog load failed, quotes are unavailable until the next refresh: %v", err)
	}
	cancelInit()
	priceResolver := pricing.NewResolver(catalogProvider)

	// Платёжный шлюз
	paymentClient := payments.NewClient(cfg.Payments.StripeSecretKey, cfg.Reservation.Currency, nil, log)
	webhookVerifier := payments.NewWebhookVerifier(cfg.Payments.WebhookSecret)

	// Сервисы
	holdManager := holds.NewManager(
		bookingRepository,
		boatLocker,
		txMgr,
		appMetrics,
		&holds.RealTimeProvider{},
		log,
		cfg.Reservation.HoldTTL(),
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		txMgr,
		eventPublisher,
		appMetrics,
		&bookingsService.RealTimeProvider{},
		log,
		cfg.Reservation.DefaultBookingsPageSize,
		cfg.Reservation.MaxBookingsPageSize,
	)

	// Use cases
	listBoatsUseCase := listBoatsUC.NewUseCase(catalogProvider, priceResolver, log)
	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		bookingRepository,
		catalogProvider,
		txMgr,
		&checkAvailabilityUC.RealTimeProvider{},
		log,
	)
	createQuoteUseCase := createQuoteUC.NewUseCase(
		priceResolver,
		holdManager,
		expiryScheduler,
		&createQuoteUC.RealTimeProvider{},
		log,
	)
	createPaymentIntentUseCase := createPaymentIntentUC.NewUseCase(
		holdManager,
		paymentClient,
		bookingRepository,
		bookingSvc,
		txMgr,
		appMetrics,
		&createPaymentIntentUC.RealTimeProvider{},
		log,
	)
	handlePaymentEventUseCase := handlePaymentEventUC.NewUseCase(webhookVerifier, bookingSvc, log)
	reapExpiredHoldsUseCase := reapExpiredHoldsUC.NewUseCase(
		bookingRepository,
		bookingSvc,
		txMgr,
		appMetrics,
		&reapExpiredHoldsUC.RealTimeProvider{},
		log,
		cfg.Reservation.ReaperBatchSize,
	)

	// Фоновые задачи
	reaperWorker, err := reaper.NewWorker(
		reapExpiredHoldsUseCase,
		catalogProvider,
		log,
		cfg.Reservation.ReaperInterval(),
		cfg.Reservation.CatalogRefresh(),
	)
	if err != nil {
		log.Fatal("Failed to schedule reaper: %v", err)
	}
	reaperWorker.Start()

	if cfg.TaskQueue.Enabled {
		asynqServer = holdexpiry.NewServer(queueOpts)
		taskMux := holdexpiry.NewServeMux(holdexpiry.NewHandler(reapExpiredHoldsUseCase, log))
		if err := asynqServer.Start(taskMux); err != nil {
			log.Fatal("Failed to start hold expiry worker: %v", err)
		}
		log.Info("Hold expiry worker started (concurrency=%d)", cfg.TaskQueue.Concurrency)
	}

	// Инициализируем handlers
	listBoats := listBoatsHandler.NewHandler(listBoatsUseCase, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	createQuote := createQuoteHandler.NewHandler(createQuoteUseCase, log)
	releaseHold := releaseHoldHandler.NewHandler(holdManager, log)
	createPaymentIntent := createPaymentIntentHandler.NewHandler(createPaymentIntentUseCase, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(handlePaymentEventUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	updateBooking := updateBookingHandler.NewHandler(bookingSvc, log)

	trustedProxies, err := cfg.RateLimit.TrustedProxyPrefixes()
	if err != nil {
		log.Error("Invalid trusted proxies: %v", err)
		os.Exit(1)
	}
	quoteLimiter := middleware.NewRateLimiter(cfg.RateLimit.QuoteRPS, cfg.RateLimit.QuoteBurst, trustedProxies, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES
	// ============================================================

	api.HandleFunc("/boats", listBoats.Handle).Methods(http.MethodGet)
	api.HandleFunc("/check-availability", checkAvailability.Handle).Methods(http.MethodPost)

	// Котировка захватывает холд, поэтому частота ограничена по IP
	api.Handle("/quote", quoteLimiter.Middleware(http.HandlerFunc(createQuote.Handle))).Methods(http.MethodPost)
	api.HandleFunc("/holds/{holdId}", releaseHold.Handle).Methods(http.MethodDelete)

	api.HandleFunc("/create-payment-intent", createPaymentIntent.Handle).Methods(http.MethodPost)

	// Webhook платёжного шлюза, подлинность проверяется подписью
	api.HandleFunc("/payments/webhook", paymentWebhook.Handle).Methods(http.MethodPost)

	// ============================================================
	// ADMIN ROUTES (Bearer JWT с role=admin)
	// ============================================================

	admin := api.PathPrefix("").Subrouter()
	admin.Use(middleware.AdminAuth(cfg.Admin.JWTSecret, log))

	admin.HandleFunc("/admin/bookings", listBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/admin/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId}", updateBooking.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if err := reaperWorker.Stop(shutdownCtx); err != nil {
		log.Error("Reaper stopped with error: %v", err)
	}

	if asynqServer != nil {
		asynqServer.Shutdown()
	}
	if asynqClient != nil {
		if err := asynqClient.Close(); err != nil {
			log.Warn("Failed to close task queue client: %v", err)
		}
	}

	if brokerConn != nil {
		if err := brokerConn.Close(); err != nil {
			log.Warn("Failed to close broker connection: %v", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Failed to close redis client: %v", err)
		}
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
