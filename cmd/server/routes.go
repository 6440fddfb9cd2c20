package main

import (
	"github.com/gin-gonic/gin"

	"github.com/giglink/backend/internal/handlers"
	"github.com/giglink/backend/internal/middleware"
	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.CORS())

	db := models.GetDB()

	// Rate limiters for unauthenticated surfaces: the gateway callback hits
	// verify without a token, and register/login take credential guesses.
	verifyLimiter := middleware.NewRateLimiter(10, 20)
	authLimiter := middleware.NewRateLimiter(5, 10)

	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimiter.Middleware(), svc.authHandler.Register)
			auth.POST("/login", authLimiter.Middleware(), svc.authHandler.Login)
			auth.POST("/logout", svc.authHandler.Logout)
		}

		// Public discovery
		musicianHandler := handlers.NewMusicianHandler(db)
		api.GET("/musicians", musicianHandler.List)
		api.GET("/musicians/:id", musicianHandler.Get)
		api.GET("/musicians/:id/reviews", musicianHandler.Reviews)
		api.GET("/instruments", musicianHandler.Instruments)
		api.GET("/genres", musicianHandler.Genres)

		// Gateway callback target: public, rate limited
		api.GET("/payments/verify/:reference", verifyLimiter.Middleware(), svc.paymentHandler.Verify)

		// SSE events (token validated inside, EventSource cannot set headers)
		eventsHandler := handlers.NewEventsHandler()
		api.GET("/events/notifications", eventsHandler.Stream)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)
			protected.PUT("/users/me", svc.authHandler.UpdateMe)
			protected.DELETE("/users/me", svc.authHandler.DeleteAccount)

			// Bookings
			protected.POST("/bookings", svc.bookingHandler.Create)
			protected.GET("/bookings", svc.bookingHandler.List)
			protected.GET("/bookings/:id", svc.bookingHandler.Get)
			protected.POST("/bookings/:id/cancel", svc.bookingHandler.Cancel)
			protected.POST("/bookings/:id/complete", svc.bookingHandler.Complete)

			// Booking payment and review (client side)
			protected.POST("/bookings/:id/pay", svc.paymentHandler.InitiateBooking)
			reviewHandler := handlers.NewReviewHandler(db)
			protected.POST("/bookings/:id/reviews", reviewHandler.Create)
			protected.PUT("/reviews/:id", reviewHandler.Update)
			protected.DELETE("/reviews/:id", reviewHandler.Delete)

			// Payments
			protected.POST("/payments/initiate", svc.paymentHandler.InitiateAdHoc)
			protected.GET("/payments", svc.paymentHandler.History)

			// Notifications
			notificationHandler := handlers.NewNotificationHandler(svc.notifier)
			protected.GET("/notifications", notificationHandler.List)
			protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			protected.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		}

		// Musician-only routes
		musician := api.Group("")
		musician.Use(middleware.AuthRequired(), middleware.MusicianRequired())
		{
			musician.PUT("/musicians/me", musicianHandler.UpdateProfile)
			musician.POST("/musicians/me/portfolio", musicianHandler.AddPortfolioItem)
			musician.DELETE("/musicians/me/portfolio/:id", musicianHandler.DeletePortfolioItem)

			musician.POST("/bookings/:id/accept", svc.bookingHandler.Accept)
			musician.POST("/bookings/:id/reject", svc.bookingHandler.Reject)

			subscriptionHandler := handlers.NewSubscriptionHandler(db)
			musician.POST("/subscriptions", subscriptionHandler.Create)
			musician.POST("/subscriptions/renew", subscriptionHandler.Renew)
			musician.POST("/subscriptions/cancel", subscriptionHandler.Cancel)
			musician.GET("/subscriptions/me", subscriptionHandler.Status)
			musician.POST("/subscriptions/pay", svc.paymentHandler.InitiateSubscription)
		}

		// Admin only routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			userHandler := handlers.NewUserHandler(db)
			admin.GET("/users", userHandler.List)
			admin.PUT("/users/:id", userHandler.Update)
		}
	}
}
