package bookings

import (
	"stayhub/internal/auth"
	"stayhub/internal/shared/config"
	"stayhub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures customer and operator booking routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	bookingsGroup := rg.Group("/bookings")
	bookingsGroup.Use(middleware.JWTAuthWithConfig(cfg))
	{
		bookingsGroup.POST("/hold", controller.CreateHold)        // POST /api/v1/bookings/hold
		bookingsGroup.POST("/:id/checkout", controller.Checkout)  // POST /api/v1/bookings/:id/checkout
		bookingsGroup.GET("", controller.ListMyBookings)          // GET /api/v1/bookings
		bookingsGroup.GET("/:id", controller.GetBooking)          // GET /api/v1/bookings/:id
		bookingsGroup.POST("/:id/cancel", controller.CancelBooking) // POST /api/v1/bookings/:id/cancel
	}

	adminGroup := rg.Group("/admin/bookings")
	adminGroup.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRoles(string(auth.RoleAdmin)))
	{
		adminGroup.GET("", controller.AdminListBookings)                    // GET /api/v1/admin/bookings
		adminGroup.POST("", controller.AdminCreateBooking)                  // POST /api/v1/admin/bookings
		adminGroup.PATCH("/:id", controller.AdminUpdateBooking)             // PATCH /api/v1/admin/bookings/:id
		adminGroup.PATCH("/:id/status", controller.AdminUpdateStatus)       // PATCH /api/v1/admin/bookings/:id/status
		adminGroup.POST("/:id/cancel", controller.AdminCancelBooking)       // POST /api/v1/admin/bookings/:id/cancel
		adminGroup.PATCH("/:id/details/:detailId", controller.AdminUpdateDetail) // PATCH /api/v1/admin/bookings/:id/details/:detailId
		adminGroup.POST("/:id/notes", controller.AdminAddNote)              // POST /api/v1/admin/bookings/:id/notes
		adminGroup.GET("/:id/notes", controller.AdminListNotes)             // GET /api/v1/admin/bookings/:id/notes
		adminGroup.GET("/:id/timeline", controller.AdminGetTimeline)        // GET /api/v1/admin/bookings/:id/timeline
	}
}
