package payments

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stayhub/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// UpdateStatus handles gateway callbacks and admin settlement of a payment
func (pc *Controller) UpdateStatus(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid payment ID", err.Error())
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	payment, err := pc.service.UpdateStatus(c.Request.Context(), paymentID, req)
	if err != nil {
		pc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Payment status updated", payment)
}

func (pc *Controller) Retry(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid payment ID", err.Error())
		return
	}

	payment, err := pc.service.Retry(c.Request.Context(), paymentID)
	if err != nil {
		pc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Payment reopened for retry", payment)
}

func (pc *Controller) GetPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid payment ID", err.Error())
		return
	}

	payment, err := pc.service.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		pc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Payment retrieved", payment)
}

func (pc *Controller) ListForBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", err.Error())
		return
	}

	payments, err := pc.service.ListForBooking(c.Request.Context(), bookingID)
	if err != nil {
		pc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Payments retrieved", payments)
}

func (pc *Controller) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		response.Error(c, http.StatusNotFound, "Payment not found", err.Error())
	case errors.Is(err, ErrInvalidMethod),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrAmountExceedsDue):
		response.Error(c, http.StatusBadRequest, "Invalid payment request", err.Error())
	case errors.Is(err, ErrInvalidStatusTransition),
		errors.Is(err, ErrRetryOnlyFailed):
		response.Error(c, http.StatusConflict, "Payment state conflict", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "Failed to process payment", err.Error())
	}
}
