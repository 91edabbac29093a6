package handlers

import (
	"errors"
	"net/http"

	"tourbooking/internal/http/middleware"
	"tourbooking/internal/services"
	"tourbooking/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handlers) auth(c *gin.Context) services.AuthService {
	svc := h.Auth
	svc.RequestID = middleware.GetRequestID(c)
	return svc
}

// POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := h.auth(c).Register(c.Request.Context(), req)
	if err != nil {
		req.Password = ""
		RespondDomainErrorWithInput(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registration successful", "user": user})
}

// POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req services.LoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	sess, err := h.auth(c).Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// POST /api/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	if err := h.Drafts.Clear(c.Request.Context(), rc.SessionID); err != nil {
		utils.OrNop(h.Logger).Warn("clear draft on logout failed", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
