package payments

import (
	"stayhub/internal/auth"
	"stayhub/internal/shared/config"
	"stayhub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures payment settlement routes. Status updates are
// restricted to admins; gateways report through the same endpoint with an
// admin-scoped service token.
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	paymentsGroup := rg.Group("/payments")
	paymentsGroup.Use(middleware.JWTAuthWithConfig(cfg))
	{
		paymentsGroup.GET("/:id", controller.GetPayment)                 // GET /api/v1/payments/:id
		paymentsGroup.GET("/booking/:bookingId", controller.ListForBooking) // GET /api/v1/payments/booking/:bookingId
	}

	adminPayments := rg.Group("/admin/payments")
	adminPayments.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRoles(string(auth.RoleAdmin)))
	{
		adminPayments.PATCH("/:id/status", controller.UpdateStatus) // PATCH /api/v1/admin/payments/:id/status
		adminPayments.POST("/:id/retry", controller.Retry)          // POST /api/v1/admin/payments/:id/retry
	}
}
