package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mkbeefcake/clinic-scheduler/internal/api/router"
	"github.com/mkbeefcake/clinic-scheduler/internal/appointment"
	"github.com/mkbeefcake/clinic-scheduler/internal/calendar"
	appconfig "github.com/mkbeefcake/clinic-scheduler/internal/config"
	"github.com/mkbeefcake/clinic-scheduler/internal/http/handlers"
	"github.com/mkbeefcake/clinic-scheduler/internal/locking"
	"github.com/mkbeefcake/clinic-scheduler/internal/notify"
	"github.com/mkbeefcake/clinic-scheduler/internal/observability/metrics"
	"github.com/mkbeefcake/clinic-scheduler/internal/schedule"
	"github.com/mkbeefcake/clinic-scheduler/internal/sheets"
	"github.com/mkbeefcake/clinic-scheduler/internal/sms"
	"github.com/mkbeefcake/clinic-scheduler/pkg/logging"
)

func main() {
	// Load .env for local development; silently absent in production.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.ForEnv(cfg.Env, cfg.LogLevel)
	logger.Info("starting clinic-scheduler API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.Timezone,
	)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid clinic timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	policy := schedule.Policy{
		OpenHour:            cfg.OpenHour,
		CloseHour:           cfg.CloseHour,
		LunchStart:          cfg.LunchStart,
		LunchEnd:            cfg.LunchEnd,
		SlotDurationMinutes: cfg.ServiceTimeMinutes,
		StrictBoundaries:    cfg.StrictSlotBoundary,
	}
	if err := policy.Validate(); err != nil {
		logger.Error("invalid business-hours policy", "error", err)
		os.Exit(1)
	}
	engine := schedule.NewEngine(policy, loc, cfg.AvailabilityDays)

	ctx := context.Background()

	// Calendar repository: Google when a calendar id is configured,
	// otherwise an in-memory store for local development.
	var repo calendar.Repository
	if cfg.CalendarID != "" {
		googleRepo, err := calendar.NewGoogleRepository(ctx, cfg.GoogleCredentialsFile, cfg.CalendarID, loc)
		if err != nil {
			logger.Error("failed to create Google Calendar client", "error", err)
			os.Exit(1)
		}
		repo = googleRepo
	} else {
		logger.Warn("GMAIL_ACCOUNT not set, using in-memory calendar")
		repo = calendar.NewInMemoryRepository()
	}

	var audit appointment.AuditLog
	if cfg.SpreadsheetID != "" {
		auditLog, err := sheets.NewAuditLog(ctx, cfg.GoogleCredentialsFile, cfg.SpreadsheetID)
		if err != nil {
			// The sheet is a best-effort trail; keep serving without it.
			logger.Warn("failed to create Sheets client, audit logging disabled", "error", err)
		} else {
			audit = auditLog
		}
	}

	var smsSender notify.SMSSender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		twilioClient, err := sms.New(sms.Config{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromNumber: cfg.TwilioPhoneNumber,
			Timeout:    cfg.TwilioTimeout,
			Logger:     logger,
		})
		if err != nil {
			logger.Warn("failed to create Twilio client, SMS disabled", "error", err)
		} else {
			smsSender = twilioClient
		}
	} else {
		logger.Warn("Twilio credentials not configured, SMS confirmations disabled")
	}

	emailSender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)

	var notifier appointment.Notifier
	if smsSender != nil || emailSender != nil {
		var email notify.EmailSender
		if emailSender != nil {
			email = emailSender
		}
		notifier = notify.NewService(smsSender, email, cfg.OperatorEmail, cfg.ClinicName, logger)
	}

	var locker locking.Locker
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not available, booking lock disabled", "error", err)
		} else {
			locker = locking.NewRedisLocker(redisClient, cfg.BookingLockTTL, logger)
		}
	}

	appointmentMetrics := metrics.NewAppointmentMetrics(prometheus.DefaultRegisterer)

	svc := appointment.NewService(appointment.Config{
		Repo:          repo,
		Engine:        engine,
		Location:      loc,
		ClinicAddress: cfg.ClinicAddress,
		Audit:         audit,
		Notifier:      notifier,
		Locker:        locker,
		Metrics:       appointmentMetrics,
		Logger:        logger,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		AppointmentHandler: handlers.NewAppointmentHandler(svc, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
