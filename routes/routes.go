package routes

import (
	"net/http"
	"time"

	"wellvix/handlers"
	"wellvix/middleware"
	"wellvix/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers calendar discovery and editing.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		// Discovery endpoints are public: clients browse before signing in.
		api.GET("/:providerID/month", hb.GetMonthAvailabilityHandler)
		api.GET("/:providerID/slots", hb.GetSlotsHandler)
		api.GET("/:providerID/weekly", hb.GetWeeklyAvailabilityHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(middleware.RoleProvider))
		protected.PUT("/:providerID/weekly", hb.SetWeeklyAvailabilityHandler)
		protected.PUT("/:providerID/exceptions", hb.SetExceptionHandler)
		protected.DELETE("/:providerID/exceptions/:date", hb.DeleteExceptionHandler)
	}
}

// RegisterBookingRoutes registers the reservation flow.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.POST("", middleware.JWTAuthMiddleware(middleware.RoleClient), hb.RequestBookingHandler)
		api.DELETE("/:bookingID", middleware.JWTAuthMiddleware(middleware.RoleClient), hb.CancelBookingHandler)

		api.GET("/:bookingID", middleware.JWTAuthMiddleware(), hb.GetBookingHandler)

		provider := api.Group("")
		provider.Use(middleware.JWTAuthMiddleware(middleware.RoleProvider))
		provider.GET("", hb.ListBookingsHandler)
		provider.POST("/:bookingID/accept", hb.AcceptBookingHandler)
		provider.POST("/:bookingID/reject", hb.RejectBookingHandler)
	}
}

// RegisterOrderRoutes registers the order lifecycle.
func RegisterOrderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/orders")
	{
		api.GET("/:orderID", middleware.JWTAuthMiddleware(), hb.GetOrderHandler)
		api.GET("", middleware.JWTAuthMiddleware(), hb.ListOrdersHandler)

		client := api.Group("")
		client.Use(middleware.JWTAuthMiddleware(middleware.RoleClient))
		client.POST("", hb.CreateDraftOrderHandler)
		client.POST("/:orderID/submit", hb.SubmitOrderHandler)
		client.POST("/:orderID/approve", hb.ApproveOrderHandler)
		client.POST("/:orderID/revision", hb.RequestRevisionHandler)
		client.POST("/:orderID/intent", hb.CreatePaymentIntentHandler)

		provider := api.Group("")
		provider.Use(middleware.JWTAuthMiddleware(middleware.RoleProvider))
		provider.POST("/:orderID/accept", hb.AcceptOrderHandler)
		provider.POST("/:orderID/deliver", hb.DeliverOrderHandler)
	}
}

// RegisterWebhookRoutes registers gateway callbacks. Signature
// verification stands in for auth here.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/webhooks/stripe", hb.StripeWebhookHandler)
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthMiddleware(middleware.RoleAdmin))
		adminGroup.POST("/orders/:orderID/cancel", hb.CancelOrderHandler)
		adminGroup.POST("/orders/:orderID/refund", hb.RefundOrderHandler)
		adminGroup.POST("/sweep", hb.RunSweepHandler)
		adminGroup.GET("/events", hb.ListProcessedEventsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterOrderRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
