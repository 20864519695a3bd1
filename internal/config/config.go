package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	Port          string
	LogLevel      string
	OpenAIAPIKey  string

	SendGridAPIKey           string
	SendGridHost             string
	SendGridMailFrom         string
	SendGridInviteTemplate   string
	SendGridReminderTemplate string

	// Mail actions (invite, reminder) that may currently send email.
	SendMailActions []string
	// Email domains allowed to sign up. Empty means every domain.
	SignUpDomains []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real env vars win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "splitmate"),
		DBPassword:    getEnv("DB_PASSWORD", "splitmate"),
		DBName:        getEnv("DB_NAME", "splitmate"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),

		SendGridAPIKey:           getEnv("SENDGRID_API_KEY", ""),
		SendGridHost:             getEnv("SENDGRID_HOST", "https://api.sendgrid.com"),
		SendGridMailFrom:         getEnv("SENDGRID_MAIL_FROM", "no-reply@splitmate.app"),
		SendGridInviteTemplate:   getEnv("SENDGRID_INVITE_TEMPLATE", ""),
		SendGridReminderTemplate: getEnv("SENDGRID_REMINDER_TEMPLATE", ""),

		SendMailActions: getEnvList("FEATURE_SENDMAIL_ACTIONS", "invite,reminder"),
		SignUpDomains:   getEnvList("FEATURE_SIGNUP_DOMAINS", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, strings.ToLower(v))
		}
	}
	return values
}
