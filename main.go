package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "tourbooking/internal/config"
	intdb "tourbooking/internal/db"
	"tourbooking/internal/domain/models"
	router "tourbooking/internal/http"
	"tourbooking/internal/http/handlers"
	"tourbooking/internal/jobs"
	"tourbooking/internal/notifications"
	"tourbooking/internal/repositories"
	"tourbooking/internal/services"
	"tourbooking/internal/session"
	"tourbooking/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger := utils.NewLogger(env.AppEnv)
	defer func() { _ = logger.Sync() }()

	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer intconfig.CloseDB()

	if env.RunMigrations {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := intdb.Migrate(ctx, db)
		cancel()
		if err != nil {
			logger.Fatal("run migrations", zap.Error(err))
		}
	}

	drafts := draftStore(env, logger)
	notifier := buildNotifier(env, logger)

	tours := repositories.TourRepository{DB: db}
	bookings := repositories.BookingRepository{DB: db}
	payments := repositories.PaymentRepository{DB: db}
	capacity := services.CapacityService{Catalog: services.SQLCatalog{Tours: tours, Bookings: bookings}}

	failedStatus := models.BookingStatus(env.FailedPaymentStatus)
	if !failedStatus.Valid() {
		logger.Warn("unknown BOOKING_FAILED_PAYMENT_STATUS, using pending", zap.String("value", env.FailedPaymentStatus))
		failedStatus = models.BookingPending
	}

	workflow := services.BookingWorkflow{
		Capacity: capacity,
		Ledger: services.SQLLedger{
			DB:       db,
			Tours:    tours,
			Bookings: bookings,
			Payments: payments,
			Logger:   logger,
		},
		Drafts:              drafts,
		Notifier:            notifier,
		Logger:              logger,
		FailedPaymentStatus: failedStatus,
	}

	hs := &handlers.Handlers{
		Workflow: workflow,
		Listing:  services.ListingService{Tours: tours, Bookings: bookings, Capacity: capacity},
		Auth: services.AuthService{
			Users:  repositories.UserRepository{DB: db},
			Secret: []byte(env.JWTSecret),
			TTL:    env.JWTTTL,
			Logger: logger,
		},
		Docs:   services.DocsService{Bookings: workflow, Logger: logger},
		Drafts: drafts,
		Logger: logger,
	}

	scheduler := cron.New()
	reminders := jobs.ReminderJob{Bookings: bookings, Notifier: notifier, Logger: logger}
	if _, err := reminders.Register(scheduler, env.ReminderCron); err != nil {
		logger.Fatal("register reminder job", zap.String("spec", env.ReminderCron), zap.Error(err))
	}
	scheduler.Start()

	r := router.NewRouter(env, hs)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-scheduler.Stop().Done()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

func draftStore(env intconfig.Env, logger *zap.Logger) session.DraftStore {
	if env.RedisURL == "" {
		logger.Info("REDIS_URL not set, keeping booking drafts in memory")
		return session.NewMemoryStore(env.SessionTTL)
	}
	client, err := intconfig.ConnectRedis(context.Background(), env.RedisURL)
	if err != nil {
		logger.Fatal("connect redis", zap.Error(err))
	}
	return session.RedisStore{Client: client, TTL: env.SessionTTL}
}

func buildNotifier(env intconfig.Env, logger *zap.Logger) services.Notifier {
	mail := notifications.EmailNotifier{
		APIURL:      env.MailAPIURL,
		APIKey:      env.MailAPIKey,
		SenderEmail: env.MailSender,
		SenderName:  env.MailSenderName,
		Logger:      logger,
	}
	if !mail.Configured() {
		logger.Info("mail API not configured, notifications are logged only")
		return notifications.LogNotifier{Logger: logger}
	}
	return mail
}
