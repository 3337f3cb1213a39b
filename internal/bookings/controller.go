package bookings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stayhub/internal/auth"
	"stayhub/internal/inventory"
	"stayhub/internal/payments"
	"stayhub/internal/pricing"
	"stayhub/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateHold opens a priced temporary booking for the authenticated account
func (bc *Controller) CreateHold(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	hold, err := bc.service.CreateHold(c.Request.Context(), accountID, req)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	status := http.StatusCreated
	message := "Temporary booking created"
	if hold.Reused {
		status = http.StatusOK
		message = "Existing hold returned"
	}
	response.Success(c, status, message, hold)
}

// Checkout converts the hold into a booked stay with a pending payment
func (bc *Controller) Checkout(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", err.Error())
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	result, err := bc.service.Checkout(c.Request.Context(), accountID, bookingID, req)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Checkout completed", result)
}

func (bc *Controller) GetBooking(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", err.Error())
		return
	}

	booking, err := bc.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	if booking.AccountID != accountID && !isAdmin(c) {
		response.Error(c, http.StatusForbidden, "Access denied", nil)
		return
	}
	response.Success(c, http.StatusOK, "Booking retrieved", booking)
}

func (bc *Controller) ListMyBookings(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := bc.service.ListAccountBookings(c.Request.Context(), accountID, query)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Bookings retrieved", result)
}

func (bc *Controller) CancelBooking(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", err.Error())
		return
	}

	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	cancelled, err := bc.service.CancelBooking(c.Request.Context(), accountID, bookingID, req.Reason)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	if !cancelled {
		response.Success(c, http.StatusOK, "Booking was already cancelled", nil)
		return
	}
	response.Success(c, http.StatusOK, "Booking cancelled", nil)
}

// Admin handlers

func (bc *Controller) AdminListBookings(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := bc.service.AdminListBookings(c.Request.Context(), query)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Bookings retrieved", result)
}

func (bc *Controller) AdminCreateBooking(c *gin.Context) {
	var req AdminCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	booking, err := bc.service.AdminCreateBooking(c.Request.Context(), req)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Booking created", booking)
}

func (bc *Controller) AdminUpdateStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", err.Error())
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	booking, err := bc.service.AdminUpdateStatus(c.Request.Context(), bookingID, req)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Booking status updated", booking)
}

func (bc *Controller) AdminCancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", err.Error())
		return
	}

	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	cancelled, err := bc.service.AdminCancelBooking(c.Request.Context(), bookingID, req.Reason)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	if !cancelled {
		response.Success(c, http.StatusOK, "Booking was already cancelled", nil)
		return
	}
	response.Success(c, http.StatusOK, "Booking cancelled", nil)
}

func (bc *Controller) AdminUpdateBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", err.Error())
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	booking, err := bc.service.UpdateBooking(c.Request.Context(), bookingID, req)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Booking updated", booking)
}

func (bc *Controller) AdminUpdateDetail(c *gin.Context) {
	detailID, err := uuid.Parse(c.Param("detailId"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid detail ID", err.Error())
		return
	}

	var req UpdateDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	detail, err := bc.service.UpdateBookingDetail(c.Request.Context(), detailID, req)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Booking detail updated", detail)
}

func (bc *Controller) AdminAddNote(c *gin.Context) {
	authorID, ok := accountIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", err.Error())
		return
	}

	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	note, err := bc.service.AddNote(c.Request.Context(), bookingID, authorID, req)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Note added", note)
}

func (bc *Controller) AdminListNotes(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", err.Error())
		return
	}

	notes, err := bc.service.ListNotes(c.Request.Context(), bookingID)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Notes retrieved", notes)
}

func (bc *Controller) AdminGetTimeline(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", err.Error())
		return
	}

	timeline, err := bc.service.GetTimeline(c.Request.Context(), bookingID)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Timeline retrieved", timeline)
}

func (bc *Controller) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrDetailNotFound):
		response.Error(c, http.StatusNotFound, "Booking not found", err.Error())
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "Access denied", err.Error())
	case errors.Is(err, inventory.ErrNotEnoughAvailability):
		response.Error(c, http.StatusConflict, "Not enough rooms available", err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotCancellable):
		response.Error(c, http.StatusConflict, "Booking state conflict", err.Error())
	case errors.Is(err, ErrBookingExpired):
		response.Error(c, http.StatusGone, "Booking hold expired", err.Error())
	case errors.Is(err, inventory.ErrBadDate),
		errors.Is(err, inventory.ErrBadDateRange),
		errors.Is(err, ErrRoomNotInHotel),
		errors.Is(err, ErrNothingToUpdate),
		errors.Is(err, payments.ErrInvalidMethod):
		response.Error(c, http.StatusBadRequest, "Invalid booking request", err.Error())
	case errors.Is(err, pricing.ErrNoRate):
		response.Error(c, http.StatusUnprocessableEntity, "No pricing available for the requested stay", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "Failed to process booking", err.Error())
	}
}

func accountIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("account_id")
	if !exists {
		return uuid.Nil, false
	}
	str, ok := value.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func isAdmin(c *gin.Context) bool {
	role, exists := c.Get("account_role")
	return exists && role == string(auth.RoleAdmin)
}
