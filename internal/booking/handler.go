package booking

import (
	"errors"
	"net/http"
	"strconv"

	"dojobook/internal/api"
	"dojobook/internal/auth"
	"dojobook/internal/eligibility"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CheckEligibility godoc
// @Summary      Check booking eligibility
// @Description  Evaluates whether the current user may book the class, without booking it.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        classID  path      int  true  "Class ID"
// @Success      200      {object}  eligibility.Decision
// @Failure      500      {object}  api.ErrorResponse
// @Router       /classes/{classID}/eligibility [get]
func (h *Handler) CheckEligibility(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	decision, err := h.service.CanBook(c.Request.Context(), userID, classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Eligibility check failed"})
		return
	}

	c.JSON(http.StatusOK, decision)
}

// BookClass godoc
// @Summary      Book a class
// @Description  Evaluates eligibility and commits the booking on admit. Denials return 403 with the decision.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        classID  path      int  true  "Class ID"
// @Success      201      {object}  BookResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  eligibility.Decision
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /classes/{classID}/book [post]
func (h *Handler) BookClass(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	b, decision, err := h.service.Book(c.Request.Context(), userID, classID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyBooked):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "You already have a booking for this class"})
		case errors.Is(err, ErrClassFull):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Class is full"})
		case errors.Is(err, ErrTrialExhausted):
			// Lost the trial race after an admit decision; the caller
			// should re-check eligibility and retry once.
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Trial allowance exhausted, please retry"})
		case errors.Is(err, ErrCommitFailed):
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to record booking"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Booking failed"})
		}
		return
	}

	if !decision.CanBook {
		status := http.StatusForbidden
		if decision.Reason == eligibility.ReasonClassNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, decision)
		return
	}

	c.JSON(http.StatusCreated, BookResponse{Booking: b, Decision: decision})
}

// CancelBooking godoc
// @Summary      Cancel booking
// @Description  Cancels a confirmed booking of the current user. Cancelled bookings leave quota accounting.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  CancelBookingResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	isAdmin := auth.GetRole(c) == "admin"
	err = h.service.Cancel(c.Request.Context(), userID, bookingID, isAdmin)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
			return
		}
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, CancelBookingResponse{Message: "Booking cancelled successfully"})
}

// ListMyBookings godoc
// @Summary      List own bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  BookingWithDetails
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookings, err := h.service.ListMyBookings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListBookingsByClass godoc
// @Summary      List bookings for a class
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        classID  path      int  true  "Class ID"
// @Success      200      {array}  BookingWithDetails
// @Router       /admin/classes/{classID}/bookings [get]
func (h *Handler) ListBookingsByClass(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	bookings, err := h.service.ListForClass(c.Request.Context(), classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}
