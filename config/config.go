package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Storage    StorageConfig
	Minio      MinioConfig
	GCS        GCSConfig
	MQ         MQConfig
	RabbitMQ   RabbitMQConfig
	PubSub     PubSubConfig
	Payment    PaymentConfig
	Media      MediaConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// StorageConfig selects the object-storage backend for media uploads.
type StorageConfig struct {
	// Backend is one of "minio" or "gcs".
	Backend string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// MQConfig selects the message-broker backend for domain events.
// An empty Backend disables event publishing.
type MQConfig struct {
	// Backend is one of "rabbitmq", "pubsub", or "" (disabled).
	Backend string

	// OfferTopic is the channel offer-published events are sent to.
	OfferTopic string
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

// PaymentConfig configures the card-processor client.
type PaymentConfig struct {
	// SecretKey authenticates charge requests against the processor.
	SecretKey string

	// APIBaseURL is the processor endpoint, overridable for tests.
	APIBaseURL string

	// Currency is the fixed ISO currency code used for every charge.
	Currency string

	// TimeoutSeconds bounds each outbound processor call.
	TimeoutSeconds int
}

// MediaConfig configures how stored objects are exposed to clients.
type MediaConfig struct {
	// PublicBaseURL is the externally reachable prefix under which
	// uploaded objects can be fetched (bucket and key are appended).
	PublicBaseURL string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "brocante"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "brocante_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "minio"),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "brocante-media"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
		MQ: MQConfig{
			Backend:    getEnv("MQ_BACKEND", ""),
			OfferTopic: getEnv("MQ_OFFER_TOPIC", "offers.published"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 0),
		},
		PubSub: PubSubConfig{
			ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
		},
		Payment: PaymentConfig{
			SecretKey:      getEnv("PAYMENT_SECRET_KEY", ""),
			APIBaseURL:     getEnv("PAYMENT_API_URL", "https://api.stripe.com"),
			Currency:       getEnv("PAYMENT_CURRENCY", "eur"),
			TimeoutSeconds: getEnvInt("PAYMENT_TIMEOUT_SECONDS", 15),
		},
		Media: MediaConfig{
			PublicBaseURL: getEnv("MEDIA_PUBLIC_URL", "http://localhost:9000"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(valueStr)
		if err == nil {
			return value
		}
	}
	return defaultValue
}
