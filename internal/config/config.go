// Package config builds the immutable process-wide configuration on startup
package config

import (
	"fmt"

	wbfconfig "github.com/wb-go/wbf/config"
)

type Config struct {
	AppPort     string
	GinMode     string
	PostgresDSN string
	Imagga      ImaggaConfig
	Minio       MinioConfig
	Kafka       KafkaConfig
}

type ImaggaConfig struct {
	APIURL    string
	APIKey    string
	APISecret string
}

type MinioConfig struct {
	Endpoint  string
	PublicURL string
	User      string
	Password  string
	Bucket    string
	UseSSL    bool
}

// KafkaConfig - optional event stream; eventing is disabled when Broker is empty
type KafkaConfig struct {
	Broker string
	Topic  string
}

// Load reads all settings once and fails if a required one is absent, so a
// misconfigured process never starts serving requests
func Load(src *wbfconfig.Config) (*Config, error) {
	cfg := &Config{
		AppPort:     getOrDefault(src, "APP_PORT", "8080"),
		GinMode:     getOrDefault(src, "GIN_MODE", "release"),
		PostgresDSN: src.GetString("POSTGRES_DSN"),
		Imagga: ImaggaConfig{
			APIURL:    getOrDefault(src, "IMAGGA_API_URL", "https://api.imagga.com"),
			APIKey:    src.GetString("IMAGGA_API_KEY"),
			APISecret: src.GetString("IMAGGA_API_SECRET"),
		},
		Minio: MinioConfig{
			Endpoint:  getOrDefault(src, "MINIO_ENDPOINT", "localhost:9000"),
			PublicURL: src.GetString("MINIO_PUBLIC_URL"),
			User:      src.GetString("MINIO_USER"),
			Password:  src.GetString("MINIO_PASS"),
			Bucket:    getOrDefault(src, "BUCKET_NAME", "images"),
			UseSSL:    src.GetString("MINIO_USE_SSL") == "true",
		},
		Kafka: KafkaConfig{
			Broker: src.GetString("KAFKA_BROKER"),
			Topic:  getOrDefault(src, "KAFKA_TOPIC", "image.created"),
		},
	}

	for name, value := range map[string]string{
		"POSTGRES_DSN":      cfg.PostgresDSN,
		"IMAGGA_API_KEY":    cfg.Imagga.APIKey,
		"IMAGGA_API_SECRET": cfg.Imagga.APISecret,
	} {
		if value == "" {
			return nil, fmt.Errorf("missing required environment variable %s", name)
		}
	}

	return cfg, nil
}

func getOrDefault(src *wbfconfig.Config, key, fallback string) string {
	if v := src.GetString(key); v != "" {
		return v
	}
	return fallback
}
