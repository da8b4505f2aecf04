package routes

import (
	"stayhub/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all endpoints for the booking engine.
func RegisterRoutes(r *gin.Engine, bookingHandler *handlers.BookingHandler) {
	r.GET("/healthz", handlers.Health)

	api := r.Group("/api")
	{
		api.POST("/search", bookingHandler.Search)
		api.POST("/lock", bookingHandler.Lock)

		booking := api.Group("/booking")
		{
			booking.POST("/guest", bookingHandler.SubmitGuest)
			booking.POST("/payment", bookingHandler.AuthorizePayment)
			booking.POST("/confirm", bookingHandler.Confirm)
			booking.GET("/:ref", bookingHandler.GetBooking)
			booking.DELETE("/:ref", bookingHandler.Cancel)
		}
	}
}
