package handlers

import (
	"net/http"

	"tourbooking/internal/domain/models"
	"tourbooking/internal/http/middleware"
	"tourbooking/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) workflow(c *gin.Context) services.BookingWorkflow {
	wf := h.Workflow
	wf.RequestID = middleware.GetRequestID(c)
	return wf
}

type startPayload struct {
	Participants        int    `json:"participants"`
	SpecialRequirements string `json:"special_requirements"`
}

type participantsPayload struct {
	Participants []models.ParticipantInput `json:"participants"`
}

type countPayload struct {
	Count *int `json:"count"`
}

// ==========================
// Start
// ==========================

// GET /api/book/schedule/:id
func (h *Handlers) ShowStart(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "schedule")
	if !ok {
		return
	}
	view, err := h.workflow(c).ShowStart(c.Request.Context(), rc.SessionID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/book/schedule/:id
func (h *Handlers) StartBooking(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "schedule")
	if !ok {
		return
	}
	var in startPayload
	if !BindJSONOrError(c, &in) {
		return
	}
	draft, err := h.workflow(c).Start(c.Request.Context(), rc.SessionID, services.StartRequest{
		ScheduleID:          id,
		Participants:        in.Participants,
		SpecialRequirements: in.SpecialRequirements,
	})
	if err != nil {
		RespondDomainErrorWithInput(c, err, in)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft, "next": nextLocation(draft.Step)})
}

// ==========================
// Participants
// ==========================

// GET /api/book/participants
func (h *Handlers) ShowParticipants(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	view, err := h.workflow(c).ShowParticipants(c.Request.Context(), rc.SessionID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/book/participants
func (h *Handlers) SubmitParticipants(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var in participantsPayload
	if !BindJSONOrError(c, &in) {
		return
	}
	draft, err := h.workflow(c).SubmitParticipants(c.Request.Context(), rc.SessionID, in.Participants)
	if err != nil {
		RespondDomainErrorWithInput(c, err, in)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft, "next": nextLocation(draft.Step)})
}

// POST /api/book/participant-count
func (h *Handlers) UpdateParticipantCount(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var in countPayload
	if !BindJSONOrError(c, &in) {
		return
	}
	if in.Count == nil {
		respondError(c, http.StatusBadRequest, "validation_error", "count is required")
		return
	}
	update, err := h.workflow(c).UpdateParticipantCount(c.Request.Context(), rc.SessionID, *in.Count)
	if err != nil {
		RespondDomainErrorWithInput(c, err, in)
		return
	}
	c.JSON(http.StatusOK, update)
}

// ==========================
// Payment & confirmation
// ==========================

// GET /api/book/payment
func (h *Handlers) ShowPayment(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	view, err := h.workflow(c).ShowPayment(c.Request.Context(), rc.SessionID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/book/payment
func (h *Handlers) SubmitPayment(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var signal models.PaymentSignal
	if !BindJSONOrError(c, &signal) {
		return
	}
	res, err := h.workflow(c).SubmitPayment(c.Request.Context(), rc, signal)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	location := "/api/book/confirmation/" + res.Booking.Reference
	c.Header("Location", location)
	c.JSON(http.StatusCreated, gin.H{
		"booking":      res.Booking,
		"participants": res.Participants,
		"payment":      res.Payment,
		"next":         location,
	})
}

// GET /api/book/confirmation/:reference
func (h *Handlers) Confirmation(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	view, err := h.workflow(c).Confirmation(c.Request.Context(), rc, c.Param("reference"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func nextLocation(step models.DraftStep) string {
	switch step {
	case models.StepParticipants:
		return "/api/book/participants"
	case models.StepPayment:
		return "/api/book/payment"
	default:
		return RestartLocation
	}
}
