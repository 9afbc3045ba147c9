package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName           string `mapstructure:"SERVICE_NAME"`
	HTTPPort              string `mapstructure:"HTTP_PORT"`
	GRPCPort              string `mapstructure:"GRPC_PORT"`
	PrometheusMetricsPort string `mapstructure:"PROMETHEUS_METRICS_PORT"`

	MongoURI        string `mapstructure:"MONGO_URI"`
	MongoDatabase   string `mapstructure:"MONGO_DATABASE"`
	MongoCollection string `mapstructure:"MONGO_COLLECTION"`

	RedisAddress  string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	NATSURL string `mapstructure:"NATS_URL"`

	S3Endpoint     string        `mapstructure:"S3_ENDPOINT"`
	S3AccessKey    string        `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey    string        `mapstructure:"S3_SECRET_KEY"`
	S3Bucket       string        `mapstructure:"S3_BUCKET"`
	S3Region       string        `mapstructure:"S3_REGION"`
	S3UseSSL       bool          `mapstructure:"S3_USE_SSL"`
	S3PublicHost   string        `mapstructure:"S3_PUBLIC_HOST"`
	S3CreateBucket bool          `mapstructure:"S3_CREATE_BUCKET"`
	PresignExpiry  time.Duration `mapstructure:"PRESIGN_EXPIRY"`
	MaxImageBytes  int64         `mapstructure:"MAX_IMAGE_BYTES"`

	SMTPHost       string `mapstructure:"SMTP_HOST"`
	SMTPPort       int    `mapstructure:"SMTP_PORT"`
	SMTPUsername   string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword   string `mapstructure:"SMTP_PASSWORD"`
	SMTPEncryption string `mapstructure:"SMTP_ENCRYPTION"`
	MailFrom       string `mapstructure:"MAIL_FROM"`

	AdminEmail string `mapstructure:"ADMIN_EMAIL"`
	JWTSecret  string `mapstructure:"JWT_SECRET"` // empty: claims are decoded without signature checks

	ModerationURL          string        `mapstructure:"MODERATION_URL"`
	ModerationAPIKey       string        `mapstructure:"MODERATION_API_KEY"`
	ModerationModel        string        `mapstructure:"MODERATION_MODEL"`
	ModerationTimeout      time.Duration `mapstructure:"MODERATION_TIMEOUT"`
	ModerationBlockedTerms []string      `mapstructure:"MODERATION_BLOCKED_TERMS"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	ContactRateLimit   int    `mapstructure:"CONTACT_RATE_LIMIT"`
	TrustProxyHeaders  bool   `mapstructure:"TRUST_PROXY_HEADERS"`

	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
	LogOutputFile          string `mapstructure:"LOG_OUTPUT_FILE"`
	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "marketplace-service")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("GRPC_PORT", "50052")
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9092")

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "gus_marketplace")
	v.SetDefault("MONGO_COLLECTION", "listings")

	// Redis and NATS stay disabled unless an address is configured.
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", time.Hour)

	v.SetDefault("NATS_URL", "")

	v.SetDefault("S3_ENDPOINT", "s3.us-east-2.amazonaws.com")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "gus-market-listing-imgs")
	v.SetDefault("S3_REGION", "us-east-2")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_PUBLIC_HOST", "s3.us-east-2.amazonaws.com")
	v.SetDefault("S3_CREATE_BUCKET", false)
	v.SetDefault("PRESIGN_EXPIRY", 15*time.Hour)
	v.SetDefault("MAX_IMAGE_BYTES", 10<<20)

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_ENCRYPTION", "starttls")
	v.SetDefault("MAIL_FROM", "GUS Marketplace <postmaster@gusmarketplace.com>")

	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("MODERATION_URL", "")
	v.SetDefault("MODERATION_API_KEY", "")
	v.SetDefault("MODERATION_MODEL", "omni-moderation-latest")
	v.SetDefault("MODERATION_TIMEOUT", 10*time.Second)
	v.SetDefault("MODERATION_BLOCKED_TERMS", []string{})

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("CONTACT_RATE_LIMIT", 5)
	v.SetDefault("TRUST_PROXY_HEADERS", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT_FILE", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		appLogger.Debug("No .env file loaded, relying on environment variables", zap.Error(err))
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	cfg.ModerationBlockedTerms = normalizeTerms(cfg.ModerationBlockedTerms)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.AdminEmail == "" {
		appLogger.Warn("ADMIN_EMAIL is not set, only owners can delete their listings")
	}
	if cfg.JWTSecret == "" {
		appLogger.Warn("JWT_SECRET is not set, bearer tokens are decoded without signature verification")
	}
	if cfg.ModerationURL == "" {
		appLogger.Warn("MODERATION_URL is not set, falling back to the blocked-terms moderator")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("grpc_port", cfg.GRPCPort),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("s3_bucket", cfg.S3Bucket),
		zap.String("s3_public_host", cfg.S3PublicHost),
		zap.Duration("presign_expiry", cfg.PresignExpiry),
		zap.Bool("smtp_configured", cfg.SMTPHost != ""),
		zap.Bool("jwt_secret_present", cfg.JWTSecret != ""),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
	)
	return &cfg, nil
}

// Validate checks settings without which the service cannot start.
func (c *Config) Validate() error {
	switch {
	case c.MongoURI == "":
		return fmt.Errorf("MONGO_URI is required")
	case c.MongoDatabase == "":
		return fmt.Errorf("MONGO_DATABASE is required")
	case c.S3Bucket == "":
		return fmt.Errorf("S3_BUCKET is required")
	case c.S3PublicHost == "":
		return fmt.Errorf("S3_PUBLIC_HOST is required")
	case c.PresignExpiry <= 0:
		return fmt.Errorf("PRESIGN_EXPIRY must be positive, got %s", c.PresignExpiry)
	case c.MaxImageBytes <= 0:
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive, got %d", c.MaxImageBytes)
	}
	return nil
}

// normalizeTerms accepts both a list and a single comma separated value.
func normalizeTerms(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, term := range strings.Split(raw, ",") {
			if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
				out = append(out, term)
			}
		}
	}
	return out
}
