package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string
	CORSOrigins []string

	// StoreDriver selects the document store backend: "firestore" or "memory".
	StoreDriver string

	FirebaseProject            string
	FirebaseAPIKey             string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string

	MediaProvider     string
	StorageBucket     string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
	S3PublicURL       string

	RedisURL        string
	ProfileCacheTTL time.Duration

	AMQPURL      string
	AMQPExchange string

	FeedLimit int
}

func Load() (*Config, error) {
	godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{
		ServerPort:  v.GetString("SERVER_PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),

		FirebaseProject:            v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseAPIKey:             v.GetString("FIREBASE_API_KEY"),
		FirebaseServiceAccountJSON: v.GetString("FIREBASE_SERVICE_ACCOUNT_JSON"),
		FirebaseServiceAccountPath: v.GetString("FIREBASE_SERVICE_ACCOUNT_PATH"),

		MediaProvider:     strings.ToLower(v.GetString("MEDIA_PROVIDER")),
		StorageBucket:     v.GetString("STORAGE_BUCKET"),
		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3Region:          v.GetString("S3_REGION"),
		S3AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		S3Bucket:          v.GetString("S3_BUCKET"),
		S3PublicURL:       v.GetString("S3_PUBLIC_URL"),

		RedisURL:        v.GetString("REDIS_URL"),
		ProfileCacheTTL: v.GetDuration("PROFILE_CACHE_TTL"),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),

		FeedLimit: v.GetInt("FEED_LIMIT"),
	}

	if config.FeedLimit <= 0 {
		config.FeedLimit = 20
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("STORE_DRIVER", "firestore")
	v.SetDefault("MEDIA_PROVIDER", "gcs")
	v.SetDefault("S3_REGION", "auto")
	v.SetDefault("PROFILE_CACHE_TTL", 10*time.Minute)
	v.SetDefault("AMQP_EXCHANGE", "alima.events")
	v.SetDefault("FEED_LIMIT", 20)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
