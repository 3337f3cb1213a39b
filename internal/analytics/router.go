package analytics

import (
	"stayhub/internal/auth"
	"stayhub/internal/shared/config"
	"stayhub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAnalyticsRoutes configures the admin reporting routes
func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	group := rg.Group("/admin/analytics")
	group.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRoles(string(auth.RoleAdmin)))
	{
		group.GET("/dashboard", controller.GetDashboard)  // GET /api/v1/admin/analytics/dashboard
		group.GET("/bookings", controller.GetBookingStats) // GET /api/v1/admin/analytics/bookings
		group.GET("/revenue", controller.GetRevenueStats)  // GET /api/v1/admin/analytics/revenue
		group.GET("/occupancy", controller.GetOccupancy)   // GET /api/v1/admin/analytics/occupancy
	}
}
