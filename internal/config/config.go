package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	CORSOrigins   []string
	ClinicName    string
	ClinicAddress string
	Timezone      string

	// Business hours policy
	OpenHour           int
	CloseHour          int
	LunchStart         int
	LunchEnd           int
	ServiceTimeMinutes int
	StrictSlotBoundary bool
	AvailabilityDays   int

	// Google Calendar / Sheets
	GoogleCredentialsFile string
	CalendarID            string
	SpreadsheetID         string

	// Twilio SMS
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	TwilioTimeout     time.Duration

	// SendGrid operator notifications (optional)
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	OperatorEmail     string

	// Redis booking lock (optional)
	RedisAddr      string
	RedisPassword  string
	BookingLockTTL time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		ClinicName:    getEnv("CLINIC_NAME", "Aldershot Denture Clinic"),
		ClinicAddress: getEnv("CLINIC_ADDRESS", ""),
		Timezone:      getEnv("CLINIC_TIMEZONE", "America/Toronto"),

		OpenHour:           getEnvAsInt("OPEN_HOUR", 9),
		CloseHour:          getEnvAsInt("CLOSE_HOUR", 17),
		LunchStart:         getEnvAsInt("LUNCH_START", 12),
		LunchEnd:           getEnvAsInt("LUNCH_END", 13),
		ServiceTimeMinutes: getEnvAsInt("SERVICE_TIME", 60),
		StrictSlotBoundary: getEnvAsBool("STRICT_SLOT_BOUNDARY", false),
		AvailabilityDays:   getEnvAsInt("AVAILABILITY_DAYS", 3),

		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "service-account.json"),
		CalendarID:            getEnv("GMAIL_ACCOUNT", ""),
		SpreadsheetID:         getEnv("SPREAD_SHEET", ""),

		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		TwilioTimeout:     getEnvAsDuration("TWILIO_TIMEOUT", 10*time.Second),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Clinic Scheduler"),
		OperatorEmail:     getEnv("OPERATOR_EMAIL", ""),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		BookingLockTTL: getEnvAsDuration("BOOKING_LOCK_TTL", 30*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
