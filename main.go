package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/zapshare/booking-service/config"
	"github.com/zapshare/booking-service/internal/consumer"
	"github.com/zapshare/booking-service/internal/handler"
	"github.com/zapshare/booking-service/internal/metrics"
	"github.com/zapshare/booking-service/internal/middleware"
	"github.com/zapshare/booking-service/internal/repository"
	"github.com/zapshare/booking-service/internal/service"
	"github.com/zapshare/booking-service/internal/sweeper"
	"github.com/zapshare/booking-service/pkg/database"
	"github.com/zapshare/booking-service/pkg/rabbitmq"
	"golang.org/x/time/rate"
)

const (
	notificationsExchange = "notifications"
	paymentsExchange      = "payments"
	directoryExchange     = "directory"
)

func main() {
	cfg := config.Load()
	cfg.ConfigureLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.NewPostgresDB(cfg.DSN())

	// Repositories
	bookingRepo := repository.NewBookingRepository(db)
	chargerRepo := repository.NewChargerRepository(db)
	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Notification fan-out is optional; without a broker notifications are only stored.
	var events service.EventPublisher
	if cfg.RabbitURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, notificationsExchange)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		events = publisher
	}

	// Services
	notifier := service.NewNotifier(notificationRepo, events)
	bookingSvc := service.NewBookingService(bookingRepo, chargerRepo, notifier)
	querySvc := service.NewQueryService(bookingRepo, chargerRepo, userRepo, reviewRepo, notificationRepo)

	if cfg.RabbitURL != "" {
		startConsumers(ctx, cfg.RabbitURL, bookingSvc, chargerRepo, userRepo)
	}

	// Maintenance sweep
	loc, err := cfg.SweepLocation()
	if err != nil {
		log.Fatalf("invalid sweep timezone %q: %v", cfg.SweepTimezone, err)
	}
	sweep := sweeper.New(bookingRepo, sweeper.WithLocation(loc))
	if cfg.SweepOnStart {
		sweep.RunOnce(ctx)
	}
	if err := sweep.Start(ctx, cfg.SweepSchedule); err != nil {
		log.Fatalf("failed to schedule sweep: %v", err)
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency,
			}).Info("[HTTP] request")
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	if cfg.RateLimit > 0 {
		e.Use(echoMw.RateLimiter(echoMw.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "booking-service"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api/v1", middleware.JWTAuth(cfg.JWTSecret))
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(api)
	handler.NewQueryHandler(querySvc).RegisterRoutes(api)

	go func() {
		log.Printf("Booking Service starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}

	select {
	case <-sweep.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("sweep still running at shutdown")
	}
}

// startConsumers wires the payment and directory queues; both connections
// close when ctx is cancelled.
func startConsumers(ctx context.Context, url string, payer consumer.Payer, chargers consumer.ChargerUpserter, users consumer.UserUpserter) {
	payments, err := rabbitmq.NewConsumer(url, paymentsExchange, "booking-service.payments", []string{consumer.PaymentPaidKey})
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	msgs, err := payments.Consume(ctx)
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}
	consumer.NewPaymentConsumer(payer).Start(ctx, msgs)

	directory, err := rabbitmq.NewConsumer(url, directoryExchange, "booking-service.directory", consumer.DirectoryKeys)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	msgs, err = directory.Consume(ctx)
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}
	consumer.NewDirectoryConsumer(chargers, users).Start(ctx, msgs)

	go func() {
		<-ctx.Done()
		payments.Close()
		directory.Close()
	}()
}
