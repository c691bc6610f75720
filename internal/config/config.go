package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	ServerPort  string
	Environment string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration
	RedisAddress string

	// JWT configuration
	JWTSecret string

	// Attachment store: "local" or "s3"
	AttachmentDriver string
	AttachmentDir    string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool

	// Review policy
	IdeaMinCommentLen      int
	ChallengeMinCommentLen int
	ReviewedDashboardLimit int

	// Quorum policy. The idea track is decidable when any of the three
	// thresholds is met; the challenge track uses MinReviews only.
	QuorumMinReviews  int
	QuorumRolePercent float64
	QuorumStaleAfter  time.Duration

	// Collaboration policy
	RerequestAfterRejection bool

	FrontendAddress string
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Find .env file
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	AppConfig = Config{
		ServerPort:  getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "idea_review"),

		RedisAddress: getEnv("REDIS_ADDRESS", "localhost:6379"),

		JWTSecret: getEnv("JWT_SECRET", "idea-review-secret"),

		AttachmentDriver: getEnv("ATTACHMENT_DRIVER", "local"),
		AttachmentDir:    getEnv("ATTACHMENT_DIR", "./storage/attachments"),
		S3Endpoint:       getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:      getEnv("S3_SECRET_KEY", ""),
		S3Bucket:         getEnv("S3_BUCKET", "idea-attachments"),
		S3UseSSL:         getEnvBool("S3_USE_SSL", false),

		IdeaMinCommentLen:      getEnvInt("IDEA_MIN_COMMENT_LEN", 10),
		ChallengeMinCommentLen: getEnvInt("CHALLENGE_MIN_COMMENT_LEN", 50),
		ReviewedDashboardLimit: getEnvInt("REVIEWED_DASHBOARD_LIMIT", 10),

		QuorumMinReviews:  getEnvInt("QUORUM_MIN_REVIEWS", 2),
		QuorumRolePercent: getEnvFloat("QUORUM_ROLE_PERCENT", 0.6),
		QuorumStaleAfter:  getEnvDuration("QUORUM_STALE_AFTER", 7*24*time.Hour),

		RerequestAfterRejection: getEnvBool("COLLAB_REREQUEST_AFTER_REJECTION", false),

		FrontendAddress: getEnv("FRONTEND_ADDRESS", "https://production-frontend.com"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
