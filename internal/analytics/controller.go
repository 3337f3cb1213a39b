package analytics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stayhub/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (ac *Controller) GetDashboard(c *gin.Context) {
	var query RangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	dashboard, err := ac.service.GetDashboard(c.Request.Context(), query)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to build dashboard", err.Error())
		return
	}
	response.Success(c, http.StatusOK, "Dashboard retrieved", dashboard)
}

func (ac *Controller) GetBookingStats(c *gin.Context) {
	var query RangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	stats, err := ac.service.GetBookingStats(c.Request.Context(), query)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to compute booking stats", err.Error())
		return
	}
	response.Success(c, http.StatusOK, "Booking stats retrieved", stats)
}

func (ac *Controller) GetRevenueStats(c *gin.Context) {
	var query RangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	stats, err := ac.service.GetRevenueStats(c.Request.Context(), query)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to compute revenue stats", err.Error())
		return
	}
	response.Success(c, http.StatusOK, "Revenue stats retrieved", stats)
}

func (ac *Controller) GetOccupancy(c *gin.Context) {
	var query RangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	rows, err := ac.service.GetOccupancy(c.Request.Context(), query, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to compute occupancy", err.Error())
		return
	}
	response.Success(c, http.StatusOK, "Occupancy retrieved", rows)
}
