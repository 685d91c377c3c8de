// Package config loads runtime configuration from the environment.
package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the hangar service.
type Config struct {
	Addr string `env:"ADDR,default=:8080"`

	DBDSN string `env:"DB_DSN,required"`

	S3Endpoint       string `env:"S3_ENDPOINT,required"`
	S3AccessKey      string `env:"S3_ACCESS_KEY,required"`
	S3SecretKey      string `env:"S3_SECRET_KEY,required"`
	S3Bucket         string `env:"S3_BUCKET,required"`
	S3Region         string `env:"S3_REGION,default=us-east-1"`
	S3DisableTLS     bool   `env:"S3_DISABLE_TLS,default=false"`
	S3ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE,default=true"`

	// PublicBaseURL is prepended to object keys to form download URLs.
	PublicBaseURL string `env:"PUBLIC_BASE_URL,required"`

	JWTSigningKey string        `env:"JWT_SIGNING_KEY,required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,default=12h"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=*"`
	MaxUploadBytes int64    `env:"MAX_UPLOAD_BYTES,default=268435456"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	NATSURL      string `env:"NATS_URL"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
