package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadENV loads variables from .env when GO_ENV is unset or development
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// JWT Configuration
	JWT_SECRET string
	JWT_ISSUER string
	// Redis Configuration
	REDIS_URL string
	// Mail Configuration
	SMTP_HOST string
	SMTP_PORT int
	SMTP_USER string
	SMTP_PASS string
	SMTP_FROM string
	APP_URL   string
	// Payment providers
	HOTMART_WEBHOOK_SECRET string
	HOTMART_CLIENT_ID      string
	HOTMART_CLIENT_SECRET  string
	HOTMART_USE_SANDBOX    bool
	STRIPE_SECRET_KEY      string
	STRIPE_WEBHOOK_SECRET  string
	PAGARME_API_KEY        string
	PAGARME_BASE_URL       string
	// Media storage (S3-compatible Spaces)
	SPACES_ACCESS_KEY string
	SPACES_SECRET_KEY string
	SPACES_BUCKET     string
	SPACES_REGION     string
	SPACES_ENDPOINT   string
	SPACES_CDN_URL    string
	// Content
	COURSE_CONTENT_FOLDER string
	// Default number of days a student keeps access after payment
	COURSE_ACCESS_DAYS int
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	accessDays, err := strconv.Atoi(os.Getenv("COURSE_ACCESS_DAYS"))
	if err != nil || accessDays <= 0 {
		accessDays = 365
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	contentFolder := os.Getenv("COURSE_CONTENT_FOLDER")
	if contentFolder == "" {
		contentFolder = "course_content"
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		PORT:         port,
		// JWT
		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_ISSUER: os.Getenv("JWT_ISSUER"),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Mail
		SMTP_HOST: getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTP_PORT: smtpPort,
		SMTP_USER: os.Getenv("SMTP_USERNAME"),
		SMTP_PASS: os.Getenv("SMTP_PASSWORD"),
		SMTP_FROM: getEnvOrDefault("SMTP_FROM", "noreply@drjulio.com"),
		APP_URL:   getEnvOrDefault("APP_URL", "http://localhost:3000"),
		// Payment providers
		HOTMART_WEBHOOK_SECRET: os.Getenv("HOTMART_WEBHOOK_SECRET"),
		HOTMART_CLIENT_ID:      os.Getenv("HOTMART_CLIENT_ID"),
		HOTMART_CLIENT_SECRET:  os.Getenv("HOTMART_CLIENT_SECRET"),
		HOTMART_USE_SANDBOX:    os.Getenv("HOTMART_USE_SANDBOX") == "true",
		STRIPE_SECRET_KEY:      os.Getenv("STRIPE_SECRET_KEY"),
		STRIPE_WEBHOOK_SECRET:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PAGARME_API_KEY:        os.Getenv("PAGARME_API_KEY"),
		PAGARME_BASE_URL:       getEnvOrDefault("PAGARME_BASE_URL", "https://api.pagar.me/1"),
		// Media storage
		SPACES_ACCESS_KEY: os.Getenv("SPACES_ACCESS_KEY"),
		SPACES_SECRET_KEY: os.Getenv("SPACES_SECRET_KEY"),
		SPACES_BUCKET:     os.Getenv("SPACES_BUCKET"),
		SPACES_REGION:     os.Getenv("SPACES_REGION"),
		SPACES_ENDPOINT:   os.Getenv("SPACES_ENDPOINT"),
		SPACES_CDN_URL:    os.Getenv("SPACES_CDN_URL"),
		// Content
		COURSE_CONTENT_FOLDER: contentFolder,
		COURSE_ACCESS_DAYS:    accessDays,
	}

	return envVariables, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
