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

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	RefreshTokenDur   time.Duration
	// SessionFreshness is the server-side staleness window checked against a
	// session's updated_at. Independent of (and shorter-lived than) JWTExpiry.
	SessionFreshness time.Duration

	OTPExpiry        time.Duration
	EmailTokenExpiry time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SNSRegion    string

	// Pool / delivery settings.
	PoolMaxSendAttempts int
	PoolBatchLimit      int

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users             string
	Sessions          string
	Statuses          string
	Devices           string
	Notifications     string
	Files             string
	UserVerifications string
	AppVersions       string
	Roles             string
	News              string

	EmailPool      string
	SMSPool        string
	PushPool       string
	EmailSent      string
	SMSSent        string
	PushSent       string
	EmailTemplates string
	SMSTemplates   string
	PushTemplates  string
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
			Users:             getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:          getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Statuses:          getEnv("DYNAMO_TABLE_STATUSES", "statuses"),
			Devices:           getEnv("DYNAMO_TABLE_DEVICES", "devices"),
			Notifications:     getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Files:             getEnv("DYNAMO_TABLE_FILES", "files"),
			UserVerifications: getEnv("DYNAMO_TABLE_USER_VERIFICATIONS", "user_verifications"),
			AppVersions:       getEnv("DYNAMO_TABLE_APP_VERSIONS", "app_versions"),
			Roles:             getEnv("DYNAMO_TABLE_ROLES", "roles"),
			News:              getEnv("DYNAMO_TABLE_NEWS", "news"),
			EmailPool:         getEnv("DYNAMO_TABLE_EMAIL_POOL", "email_pool"),
			SMSPool:           getEnv("DYNAMO_TABLE_SMS_POOL", "sms_pool"),
			PushPool:          getEnv("DYNAMO_TABLE_PUSH_POOL", "push_pool"),
			EmailSent:         getEnv("DYNAMO_TABLE_EMAIL_SENT", "email_sent"),
			SMSSent:           getEnv("DYNAMO_TABLE_SMS_SENT", "sms_sent"),
			PushSent:          getEnv("DYNAMO_TABLE_PUSH_SENT", "push_sent"),
			EmailTemplates:    getEnv("DYNAMO_TABLE_EMAIL_TEMPLATES", "email_templates"),
			SMSTemplates:      getEnv("DYNAMO_TABLE_SMS_TEMPLATES", "sms_templates"),
			PushTemplates:     getEnv("DYNAMO_TABLE_PUSH_TEMPLATES", "push_templates"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "api-pool-files"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenDur:   time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,
		SessionFreshness:  time.Duration(getEnvInt("SESSION_FRESHNESS_DAYS", 3)) * 24 * time.Hour,

		OTPExpiry:        time.Duration(getEnvInt("OTP_EXPIRY_MINUTES", 15)) * time.Minute,
		EmailTokenExpiry: time.Duration(getEnvInt("EMAIL_TOKEN_EXPIRY_HOURS", 24)) * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),

		PoolMaxSendAttempts: getEnvInt("POOL_MAX_SEND_ATTEMPTS", 3),
		PoolBatchLimit:      getEnvInt("POOL_BATCH_LIMIT", 5000),

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
