package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stagepass/internal/models"
)

// CreateBooking - POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.BookEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Bookings.Book(c.Request.Context(), sessionFrom(c), &req)
	if err != nil {
		fail(c, "book_event", err)
		return
	}

	succeed("book_event")
	c.JSON(http.StatusCreated, response)
}

// CancelBooking - PATCH /api/bookings/cancel
func (h *Handlers) CancelBooking(c *gin.Context) {
	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Bookings.Cancel(c.Request.Context(), sessionFrom(c), &req); err != nil {
		fail(c, "cancel_booking", err)
		return
	}

	succeed("cancel_booking")
	c.Status(http.StatusOK)
}

// ListBookings - GET /api/bookings
// The calling consumer's own bookings.
func (h *Handlers) ListBookings(c *gin.Context) {
	response, err := h.services.Bookings.ListOwn(c.Request.Context(), sessionFrom(c))
	if err != nil {
		fail(c, "list_bookings", err)
		return
	}

	succeed("list_bookings")
	c.JSON(http.StatusOK, response)
}

// ListEventBookings - GET /api/events/:id/bookings
// All bookings of one of the organiser's events.
func (h *Handlers) ListEventBookings(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || eventID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	response, err := h.services.Bookings.ListForEvent(c.Request.Context(), sessionFrom(c), eventID)
	if err != nil {
		fail(c, "list_event_bookings", err)
		return
	}

	succeed("list_event_bookings")
	c.JSON(http.StatusOK, response)
}
