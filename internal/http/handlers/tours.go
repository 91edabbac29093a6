package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/tours?q=&page=
func (h *Handlers) ListTours(c *gin.Context) {
	page, err := h.Listing.ListTours(c.Request.Context(), c.Query("q"), c.Query("page"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/tours/:id
func (h *Handlers) GetTour(c *gin.Context) {
	id, ok := paramID(c, "tour")
	if !ok {
		return
	}
	detail, err := h.Listing.TourDetail(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
