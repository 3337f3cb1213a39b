package hotels

import (
	"stayhub/internal/auth"
	"stayhub/internal/shared/config"
	"stayhub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupHotelRoutes configures hotel browsing and room search routes
func SetupHotelRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	hotelsGroup := rg.Group("/hotels")
	{
		hotelsGroup.GET("", controller.ListHotels)            // GET /api/v1/hotels
		hotelsGroup.GET("/:id", controller.GetHotel)          // GET /api/v1/hotels/:id
		hotelsGroup.GET("/:id/rooms", controller.GetHotelRooms) // GET /api/v1/hotels/:id/rooms
	}

	rooms := rg.Group("/rooms")
	{
		rooms.GET("/search", controller.SearchRooms) // GET /api/v1/rooms/search
	}

	adminGroup := rg.Group("/admin")
	adminGroup.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRoles(string(auth.RoleAdmin)))
	{
		adminGroup.POST("/hotels", controller.CreateHotel) // POST /api/v1/admin/hotels
	}
}
