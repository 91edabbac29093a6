package handlers

import (
	"net/http"

	"tourbooking/internal/http/middleware"
	"tourbooking/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/bookings?status=&page=
func (h *Handlers) ListBookings(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	page, err := h.Listing.ListBookings(c.Request.Context(), rc.UserID, c.Query("status"), c.Query("page"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	if isFragmentRequest(c) {
		c.JSON(http.StatusOK, gin.H{"bookings": page.Bookings, "pagination": page.Pagination})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings":       page.Bookings,
		"pagination":     page.Pagination,
		"current_status": page.Status,
		"status_filters": services.StatusFilters,
		"user":           gin.H{"id": rc.UserID, "email": rc.Email},
	})
}

// GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "booking")
	if !ok {
		return
	}
	view, err := h.workflow(c).Details(c.Request.Context(), rc.UserID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /api/bookings/:id/confirmation.pdf
func (h *Handlers) BookingConfirmationPDF(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "booking")
	if !ok {
		return
	}

	docs := h.Docs
	docs.RequestID = middleware.GetRequestID(c)
	if docs.Bookings == nil {
		docs.Bookings = h.workflow(c)
	}
	pdfBytes, filename, err := docs.ConfirmationPDF(c.Request.Context(), rc.UserID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
