// File: wellvix/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wellvix/config"
	"wellvix/cron"
	"wellvix/database"
	availabilityRepo "wellvix/database/repository/availability"
	bookingRepo "wellvix/database/repository/booking"
	catalogRepo "wellvix/database/repository/catalog"
	eventRepo "wellvix/database/repository/event"
	orderRepo "wellvix/database/repository/order"
	"wellvix/handlers"
	"wellvix/middleware"
	"wellvix/routes"
	"wellvix/services/booking"
	"wellvix/services/notification"
	"wellvix/services/order"
	"wellvix/services/payment"
	"wellvix/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()
	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient()}, database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	availRepo := availabilityRepo.NewMongoAvailabilityRepo()
	bkRepo := bookingRepo.NewMongoBookingRepo()
	ordRepo := orderRepo.NewMongoOrderRepo()
	evtRepo := eventRepo.NewMongoEventRepo()
	catRepo := catalogRepo.NewMongoCatalogRepo()

	// services.
	notifier := notification.NewNotificationService(catRepo)
	paymentCoordinator := payment.NewCoordinator(payment.NewStripeGateway(), ordRepo, catRepo, evtRepo)
	bookingService := booking.NewBookingService(availRepo, bkRepo, catRepo, ordRepo, notifier)
	orderService := order.NewOrderService(ordRepo, catRepo, paymentCoordinator, notifier)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		BookingSvc: bookingService,
		OrderSvc:   orderService,
		Payments:   paymentCoordinator,
		EventRepo:  evtRepo,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background auto-completion sweep.
	cron.InitSweepWorker(orderService)

	// Start the HTTP server.
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

	// Wait for an OS signal to gracefully shutdown.
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
