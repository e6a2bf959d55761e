package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath      string
	JWTPublicKeyPath       string
	JWTExpiry              time.Duration
	RefreshTokenExpiry     time.Duration

	GoogleClientID string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	// Mail-notification API (external service with one endpoint per kind).
	MailAPIBaseURL string
	MailAPITimeout time.Duration

	// Notification dispatcher retry policy and worker pool.
	NotifyMaxAttempts int
	NotifyBaseDelay   time.Duration
	NotifyWorkers     int
	NotifyQueueSize   int

	// Book-metadata catalog search API.
	CatalogAPIBaseURL string
	CatalogAPITimeout time.Duration

	ProfileImageURLTTL time.Duration
	MaxUploadBytes     int64

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Sessions      string
	OwnedBooks    string
	WantedBooks   string
	Chats         string
	Messages      string
	Swaps         string
	Notifications string
	Preferences   string
	Files         string
	Neighborhoods string
	Verifications string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:      getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			OwnedBooks:    getEnv("DYNAMO_TABLE_OWNED_BOOKS", "owned_books"),
			WantedBooks:   getEnv("DYNAMO_TABLE_WANTED_BOOKS", "wanted_books"),
			Chats:         getEnv("DYNAMO_TABLE_CHATS", "chats"),
			Messages:      getEnv("DYNAMO_TABLE_MESSAGES", "messages"),
			Swaps:         getEnv("DYNAMO_TABLE_SWAPS", "swaps"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Preferences:   getEnv("DYNAMO_TABLE_PREFERENCES", "notification_preferences"),
			Files:         getEnv("DYNAMO_TABLE_FILES", "files"),
			Neighborhoods: getEnv("DYNAMO_TABLE_NEIGHBORHOODS", "neighborhoods"),
			Verifications: getEnv("DYNAMO_TABLE_USER_VERIFICATIONS", "user_verifications"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "bookswap-files"),

		JWTPrivateKeyPath:  getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:   getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:          time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenExpiry: time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		MailAPIBaseURL: getEnv("MAIL_API_BASE_URL", "http://localhost:8090"),
		MailAPITimeout: time.Duration(getEnvInt("MAIL_API_TIMEOUT_SECONDS", 8)) * time.Second,

		NotifyMaxAttempts: getEnvInt("NOTIFY_MAX_ATTEMPTS", 3),
		NotifyBaseDelay:   time.Duration(getEnvInt("NOTIFY_BASE_DELAY_MS", 750)) * time.Millisecond,
		NotifyWorkers:     getEnvInt("NOTIFY_WORKERS", 4),
		NotifyQueueSize:   getEnvInt("NOTIFY_QUEUE_SIZE", 256),

		CatalogAPIBaseURL: getEnv("CATALOG_API_BASE_URL", "https://openlibrary.org"),
		CatalogAPITimeout: time.Duration(getEnvInt("CATALOG_API_TIMEOUT_SECONDS", 10)) * time.Second,

		ProfileImageURLTTL: time.Duration(getEnvInt("PROFILE_IMAGE_URL_TTL_MINUTES", 60)) * time.Minute,
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
