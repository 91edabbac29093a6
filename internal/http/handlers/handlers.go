package handlers

import (
	"tourbooking/internal/http/middleware"
	"tourbooking/internal/services"
	"tourbooking/internal/session"

	"go.uber.org/zap"
)

// Handlers holds the long-lived services the routes need.
type Handlers struct {
	Workflow services.BookingWorkflow
	Listing  services.ListingService
	Auth     services.AuthService
	Docs     services.DocsService
	Drafts   session.DraftStore
	Logger   *zap.Logger
}

var _ middleware.TokenParser = services.AuthService{}
