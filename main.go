package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"handyhub/config"
	"handyhub/database"
	bookingRepoPkg "handyhub/database/repository/booking"
	catalogRepoPkg "handyhub/database/repository/catalog"
	notificationRepoPkg "handyhub/database/repository/notification"
	userRepoPkg "handyhub/database/repository/user"
	"handyhub/handlers"
	"handyhub/middleware"
	"handyhub/routes"
	"handyhub/services/booking"
	"handyhub/services/notification"
	"handyhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockClient()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	catalogRepo := catalogRepoPkg.NewMongoCatalogRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()
	notificationRepo := notificationRepoPkg.NewMongoNotificationRepo()

	// services.
	notifier := &notification.DefaultNotifier{
		Users:  userRepo,
		Store:  notificationRepo,
		Mailer: utils.NewSMTPMailer(),
		FCM:    utils.FCMClient,
		Logger: logger,
	}

	schedulingEngine := &booking.DefaultSchedulingEngine{
		Catalog:          catalogRepo,
		Bookings:         bookingRepo,
		Cache:            utils.GetCacheClient(),
		Logger:           logger,
		IntervalMinutes:  config.AppConfig.SlotIntervalMinutes,
		DefaultOpenTime:  config.AppConfig.DefaultOpenTime,
		DefaultCloseTime: config.AppConfig.DefaultCloseTime,
		ClosedWhenUnset:  config.AppConfig.ClosedWhenUnset,
	}

	lifecycleManager := &booking.DefaultLifecycleManager{
		Catalog:   catalogRepo,
		Bookings:  bookingRepo,
		Users:     userRepo,
		Notifier:  notifier,
		Scheduler: schedulingEngine,
		Locks:     utils.GetLockClient(),
		Logger:    logger,
	}

	paymentReconciler := &booking.DefaultPaymentReconciler{
		Bookings:      bookingRepo,
		Users:         userRepo,
		Notifier:      notifier,
		Logger:        logger,
		WebhookSecret: config.AppConfig.StripeWebhookSecret,
		Currency:      config.AppConfig.Currency,
	}

	vendorService := &booking.DefaultVendorService{
		Catalog:   catalogRepo,
		Bookings:  bookingRepo,
		Scheduler: schedulingEngine,
	}

	// handlers.
	handlerBundle := &routes.HandlerBundle{
		UserRepo:     userRepo,
		Booking:      handlers.NewBookingHandler(schedulingEngine, lifecycleManager, logger),
		Vendor:       handlers.NewVendorHandler(vendorService, logger),
		Payment:      handlers.NewPaymentHandler(paymentReconciler, logger),
		Notification: handlers.NewNotificationHandler(notificationRepo, logger),
	}

	routes.RegisterRoutes(router, handlerBundle)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetLockClient()},
		database.MongoClient,
	)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
