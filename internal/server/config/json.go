package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/abanwa/twitter/internal/flagx"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Pointer
// booleans distinguish "false" from "absent"; empty strings and zero
// durations leave the current value untouched.
type JsonConfig struct {
	Env                   string   `json:"env"`
	EndpointAddrHTTP      string   `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string   `json:"endpoint_addr_grpc"`
	StoreBackend          string   `json:"store_backend"`
	MongoURI              string   `json:"mongo_uri"`
	MongoDatabase         string   `json:"mongo_database"`
	DatabaseDSN           string   `json:"database_dsn"`
	SecretKey             string   `json:"secret_key"`
	TokenValidityDuration Duration `json:"token_validity_duration"`
	RequestTimeout        Duration `json:"request_timeout"`
	HealthCheckInterval   Duration `json:"health_check_interval"`
	AllowedOrigins        []string `json:"allowed_origins"`
	NotifySelfLike        *bool    `json:"notify_self_like"`
	NotifyComment         *bool    `json:"notify_comment"`
	S3AccessKey           string   `json:"s3_access_key"`
	S3SecretKey           string   `json:"s3_secret_key"`
	S3Bucket              string   `json:"s3_bucket"`
	S3Region              string   `json:"s3_region"`
	S3BaseEndpoint        string   `json:"s3_base_endpoint"`
	S3PublicURL           string   `json:"s3_public_url"`
	NatsURL               string   `json:"nats_url"`
	RedisAddr             string   `json:"redis_addr"`
	OtelEndpoint          string   `json:"otel_endpoint"`
	ServiceName           string   `json:"service_name"`
}

// parseJson overlays the file named by -c/-config onto config. Without the
// flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	c.applyTo(config)
	return nil
}

func (c *JsonConfig) applyTo(config *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&config.Env, c.Env)
	set(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.StoreBackend, c.StoreBackend)
	set(&config.MongoURI, c.MongoURI)
	set(&config.MongoDatabase, c.MongoDatabase)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	set(&config.S3AccessKey, c.S3AccessKey)
	set(&config.S3SecretKey, c.S3SecretKey)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.S3PublicURL, c.S3PublicURL)
	set(&config.NatsURL, c.NatsURL)
	set(&config.RedisAddr, c.RedisAddr)
	set(&config.OtelEndpoint, c.OtelEndpoint)
	set(&config.ServiceName, c.ServiceName)

	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.HealthCheckInterval.Duration > 0 {
		config.HealthCheckInterval = c.HealthCheckInterval.Duration
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.NotifySelfLike != nil {
		config.NotifySelfLike = *c.NotifySelfLike
	}
	if c.NotifyComment != nil {
		config.NotifyComment = *c.NotifyComment
	}
}
