package handlers

import (
	"net/http"

	"tourbooking/internal/domain"
	"tourbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// RestartLocation is where a stale booking step sends the client.
const RestartLocation = "/api/tours"

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	Input     any               `json:"input,omitempty"`
	Notice    string            `json:"notice,omitempty"`
	RequestID string            `json:"request_id"`
}

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	RespondDomainErrorWithInput(c, err, nil)
}

// RespondDomainErrorWithInput echoes input back on validation errors so the
// client can re-render the form with what was submitted.
func RespondDomainErrorWithInput(c *gin.Context, err error, input any) {
	reqID := middleware.GetRequestID(c)
	if err != nil {
		_ = c.Error(err)
	}

	switch {
	case domain.IsStaleSession(err):
		c.Header("Location", RestartLocation)
		c.JSON(http.StatusSeeOther, ErrorResponse{
			Error:     err.Error(),
			Code:      "stale_session",
			Notice:    domain.NoticeStartOver,
			RequestID: reqID,
		})
	case domain.IsValidation(err):
		verr, _ := domain.AsValidation(err)
		fields := verr.Fields
		if len(fields) == 0 && verr.Field != "" {
			fields = map[string]string{verr.Field: verr.Msg}
		}
		msg := verr.Msg
		if msg == "" {
			msg = verr.Error()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     msg,
			Code:      "validation_error",
			Fields:    fields,
			Input:     input,
			RequestID: reqID,
		})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:     err.Error(),
			Code:      "not_found",
			Notice:    "The requested item was not found.",
			RequestID: reqID,
		})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:     err.Error(),
			Code:      "conflict",
			RequestID: reqID,
		})
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
