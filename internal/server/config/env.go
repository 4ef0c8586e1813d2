package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv loads variables from path into the process environment.
// Variables already set win; a missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

type lookupFunc func(key string) (string, bool)

// applyEnv overlays environment variables onto cfg. Unset or empty
// variables leave the current value in place.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("APP_ENV", &cfg.Env)
	str("HTTP_ADDR", &cfg.EndpointAddrHTTP)
	if port, ok := lookup("PORT"); ok && port != "" {
		cfg.EndpointAddrHTTP = ":" + port
	}
	str("GRPC_ADDR", &cfg.EndpointAddrGRPC)
	str("STORE_BACKEND", &cfg.StoreBackend)
	str("MONGO_URI", &cfg.MongoURI)
	str("MONGO_DATABASE", &cfg.MongoDatabase)
	str("DATABASE_DSN", &cfg.DatabaseDSN)
	str("JWT_SECRET", &cfg.SecretKey)
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_REGION", &cfg.S3Region)
	str("S3_BASE_ENDPOINT", &cfg.S3BaseEndpoint)
	str("S3_PUBLIC_URL", &cfg.S3PublicURL)
	str("NATS_URL", &cfg.NatsURL)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.OtelEndpoint)
	str("SERVICE_NAME", &cfg.ServiceName)

	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TOKEN_VALIDITY", &cfg.TokenValidityDuration},
		{"REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"HEALTH_CHECK_INTERVAL", &cfg.HealthCheckInterval},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{"NOTIFY_SELF_LIKE", &cfg.NotifySelfLike},
		{"NOTIFY_COMMENT", &cfg.NotifyComment},
	}
	for _, f := range flags {
		v, ok := lookup(f.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", f.key, err)
		}
		*f.dst = parsed
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
