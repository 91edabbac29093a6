package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string
	AppEnv  string

	DBDSN         string
	RunMigrations bool

	RedisURL   string
	SessionTTL time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowedOrigins []string

	// FailedPaymentStatus is the booking status stored when the payment signal failed.
	FailedPaymentStatus string

	MailAPIURL     string
	MailAPIKey     string
	MailSender     string
	MailSenderName string

	ReminderCron string
}

const defaultDSN = "root:@tcp(127.0.0.1:3306)/tour_booking?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"

func LoadEnv() Env {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	return Env{
		AppAddr:             getString("APP_ADDR", ":8080"),
		GinMode:             getString("GIN_MODE", ""),
		AppEnv:              getString("APP_ENV", "development"),
		DBDSN:               getString("DB_DSN", defaultDSN),
		RunMigrations:       getBool("RUN_MIGRATIONS", true),
		RedisURL:            getString("REDIS_URL", ""),
		SessionTTL:          getDuration("SESSION_TTL", 24*time.Hour),
		JWTSecret:           getString("JWT_SECRET", "change-me-in-production"),
		JWTTTL:              getDuration("JWT_TTL", 24*time.Hour),
		CORSAllowedOrigins:  getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		FailedPaymentStatus: strings.ToLower(getString("BOOKING_FAILED_PAYMENT_STATUS", "pending")),
		MailAPIURL:          getString("MAIL_API_URL", "https://api.brevo.com/v3/smtp/email"),
		MailAPIKey:          getString("MAIL_API_KEY", ""),
		MailSender:          getString("MAIL_SENDER", ""),
		MailSenderName:      getString("MAIL_SENDER_NAME", "Tour Bookings"),
		ReminderCron:        getString("REMINDER_CRON", "0 8 * * *"),
	}
}

func getString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getList(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	out := []string{}
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
