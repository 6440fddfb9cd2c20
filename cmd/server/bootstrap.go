package main

import (
	"github.com/giglink/backend/internal/config"
	"github.com/giglink/backend/internal/handlers"
	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/internal/services"
	"github.com/giglink/backend/internal/utils"
	"github.com/giglink/backend/pkg/logger"
)

// appServices holds the long-lived services and handlers the router needs.
type appServices struct {
	cfg            *config.Config
	notifier       *services.NotificationService
	dispatchQueue  services.DispatchQueue
	dispatchWorker *services.DispatchWorker
	gateway        services.PaymentGateway
	authHandler    *handlers.AuthHandler
	paymentHandler *handlers.PaymentHandler
	bookingHandler *handlers.BookingHandler
}

// bootstrap initializes all application dependencies: database, queue,
// schedulers and the default admin account.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.SeedReferenceData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed reference data")
	}

	db := models.GetDB()

	// Dispatch queue: Redis-backed when enabled, in-process otherwise.
	dispatchQueue := services.InitDispatchQueue(cfg)
	notifier := services.NewNotificationService(db, dispatchQueue)

	if syncQueue, ok := dispatchQueue.(*services.SyncDispatchQueue); ok {
		syncQueue.SetProcessor(notifier.DeliverTask)
	}

	var worker *services.DispatchWorker
	if cfg.Redis.Enabled && dispatchQueue.IsAsync() {
		worker = services.InitDispatchWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(notifier.DeliverTask)
			if err := worker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start dispatch worker")
			}
		}
	}

	services.StartRetentionScheduler(db, cfg.Log.NotificationRetentionDays)

	authHandler := handlers.NewAuthHandler(db, cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	gateway := services.NewPaystackClient(&cfg.Paystack)
	email := services.NewEmailService(&cfg.SMTP)

	return &appServices{
		cfg:            cfg,
		notifier:       notifier,
		dispatchQueue:  dispatchQueue,
		dispatchWorker: worker,
		gateway:        gateway,
		authHandler:    authHandler,
		paymentHandler: handlers.NewPaymentHandler(db, gateway, notifier, email, &cfg.Paystack),
		bookingHandler: handlers.NewBookingHandler(db, notifier),
	}
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	services.StopRetentionScheduler()

	if s.dispatchWorker != nil {
		s.dispatchWorker.Stop()
	}
	if s.dispatchQueue != nil {
		s.dispatchQueue.Close()
	}
	logger.Info().Msg("All background services stopped")
}
