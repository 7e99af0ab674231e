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

	// Upstream feed polling.
	FeedURL            string
	FeedTimeout        time.Duration
	PollRetryDelay     time.Duration // after a transient fetch failure
	PollUnchangedDelay time.Duration // fetched day already stored, identical
	PollAbsorbedDelay  time.Duration // new or revised record written

	// Notifier fan-out.
	NotifyInterval     time.Duration
	LookbackDays       int
	SendTimeout        time.Duration // per-recipient delivery timeout
	SendRate           float64       // deliveries per second across a fan-out
	SendBurst          int
	AdminAddress       string // alerted on subscribe/unsubscribe; empty disables
	AdminChannel       string
	EligiblePopulation int64 // denominator for dose percentages

	JWTPublicKeyPath string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPSubject  string
	SMTPUsername string
	SMTPPassword string

	SNSRegion      string
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Records         string
	Subscribers     string
	Watermarks      string
	Supply          string
	DeliveryReports string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "eu-west-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Records:         getEnv("DYNAMO_TABLE_RECORDS", "vaccine_records"),
			Subscribers:     getEnv("DYNAMO_TABLE_SUBSCRIBERS", "subscribers"),
			Watermarks:      getEnv("DYNAMO_TABLE_WATERMARKS", "watermarks"),
			Supply:          getEnv("DYNAMO_TABLE_SUPPLY", "supply_records"),
			DeliveryReports: getEnv("DYNAMO_TABLE_DELIVERY_REPORTS", "delivery_reports"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "vaxwatch-exports"),

		FeedURL:            getEnv("FEED_URL", ""),
		FeedTimeout:        getEnvDuration("FEED_TIMEOUT", 30*time.Second),
		PollRetryDelay:     getEnvDuration("POLL_RETRY_DELAY", 30*time.Second),
		PollUnchangedDelay: getEnvDuration("POLL_UNCHANGED_DELAY", 10*time.Minute),
		PollAbsorbedDelay:  getEnvDuration("POLL_ABSORBED_DELAY", 60*time.Minute),

		NotifyInterval:     getEnvDuration("NOTIFY_INTERVAL", 200*time.Second),
		LookbackDays:       getEnvInt("LOOKBACK_DAYS", 14),
		SendTimeout:        getEnvDuration("SEND_TIMEOUT", 10*time.Second),
		SendRate:           getEnvFloat("SEND_RATE", 5),
		SendBurst:          getEnvInt("SEND_BURST", 5),
		AdminAddress:       getEnv("ADMIN_ADDRESS", ""),
		AdminChannel:       getEnv("ADMIN_CHANNEL", "email"),
		EligiblePopulation: int64(getEnvInt("ELIGIBLE_POPULATION", 3909809)),

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "updates@vaxwatch.example"),
		SMTPSubject:  getEnv("SMTP_SUBJECT", "Daily vaccination update"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion:      getEnv("SNS_REGION", "eu-west-1"),
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

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
