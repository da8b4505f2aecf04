package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stayhub/config"
	"stayhub/database"
	recordsRepo "stayhub/database/repository/records"
	"stayhub/handlers"
	"stayhub/middleware"
	"stayhub/routes"
	"stayhub/services/booking"
	"stayhub/services/lockmgr"
	"stayhub/services/supplier"
	"stayhub/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())

	// Engine components.
	supplierClient := supplier.NewHTTPClient(logger)
	lockManager := lockmgr.NewManager(supplierClient, config.LockTTL(), logger)
	sessionStore := booking.NewRedisSessionStore(utils.GetSessionCacheClient(), config.LockTTL())
	paymentHandler := booking.NewStripePaymentHandler(logger)
	recordRepo := recordsRepo.NewMongoRecordRepo()

	txService := booking.NewTransactionService(
		supplierClient,
		lockManager,
		sessionStore,
		paymentHandler,
		recordRepo,
		logger,
	)

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	lockManager.StartSweeper(rootCtx, utils.SweepInterval)
	utils.StartHealthMonitor(utils.GetSessionCacheClient(), database.MongoClient)

	bookingHandler := handlers.NewBookingHandler(txService, logger)
	routes.RegisterRoutes(router, bookingHandler)

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
