package api

import (
	stdhttp "net/http"

	intconfig "tourbooking/internal/config"
	h "tourbooking/internal/http/handlers"
	"tourbooking/internal/http/middleware"
	"tourbooking/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(env intconfig.Env, hs *h.Handlers) *gin.Engine {
	log := utils.OrNop(hs.Logger)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	authed := middleware.RequireAuth(hs.Auth)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", hs.Register)
		auth.POST("/login", hs.Login)
		auth.POST("/logout", authed, hs.Logout)

		// Catalog
		tours := api.Group("/tours")
		tours.GET("", hs.ListTours)
		tours.GET("/:id", hs.GetTour)

		// Booking flow
		book := api.Group("/book", authed)
		book.GET("/schedule/:id", hs.ShowStart)
		book.POST("/schedule/:id", hs.StartBooking)
		book.GET("/participants", hs.ShowParticipants)
		book.POST("/participants", hs.SubmitParticipants)
		book.POST("/participant-count", hs.UpdateParticipantCount)
		book.GET("/payment", hs.ShowPayment)
		book.POST("/payment", hs.SubmitPayment)
		book.GET("/confirmation/:reference", hs.Confirmation)

		// My bookings
		bookings := api.Group("/bookings", authed)
		bookings.GET("", hs.ListBookings)
		bookings.GET("/:id", hs.GetBooking)
		bookings.GET("/:id/confirmation.pdf", hs.BookingConfirmationPDF)
	}

	h.SetRouter(r)
	return r
}
