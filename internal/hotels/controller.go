package hotels

import (
	"errors"
	"net/http"

	"stayhub/internal/inventory"
	"stayhub/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListHotels handles GET /api/v1/hotels?city=
func (c *Controller) ListHotels(ctx *gin.Context) {
	city := ctx.Query("city")

	hotels, err := c.service.ListHotels(ctx.Request.Context(), city)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list hotels", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Hotels retrieved successfully", hotels)
}

// GetHotel handles GET /api/v1/hotels/:id
func (c *Controller) GetHotel(ctx *gin.Context) {
	hotelID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid hotel ID", nil)
		return
	}

	hotel, err := c.service.GetHotel(ctx.Request.Context(), hotelID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(ctx, http.StatusNotFound, "Hotel not found", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to get hotel", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Hotel retrieved successfully", hotel)
}

// GetHotelRooms handles GET /api/v1/hotels/:id/rooms
func (c *Controller) GetHotelRooms(ctx *gin.Context) {
	hotelID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid hotel ID", nil)
		return
	}

	rooms, err := c.service.GetHotelRooms(ctx.Request.Context(), hotelID)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list rooms", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Rooms retrieved successfully", rooms)
}

// SearchRooms handles GET /api/v1/rooms/search
func (c *Controller) SearchRooms(ctx *gin.Context) {
	var query RoomSearchQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid search query", err.Error())
		return
	}

	results, err := c.service.SearchRooms(ctx.Request.Context(), query)
	if err != nil {
		if errors.Is(err, inventory.ErrBadDate) || errors.Is(err, inventory.ErrBadDateRange) {
			response.Error(ctx, http.StatusBadRequest, err.Error(), nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Room search failed", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Rooms found", results)
}

// CreateHotel handles POST /api/v1/admin/hotels
func (c *Controller) CreateHotel(ctx *gin.Context) {
	var hotel Hotel
	if err := ctx.ShouldBindJSON(&hotel); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := c.service.CreateHotel(ctx.Request.Context(), &hotel); err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to create hotel", nil)
		return
	}

	response.Success(ctx, http.StatusCreated, "Hotel created successfully", hotel)
}
