package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	API      ServiceConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	Catalog  CatalogConfig
	Features FeatureFlags
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port        int
	ReadTimeout time.Duration
}

// ServiceConfig describes the remote storefront API.
// A zero Timeout leaves the transport default in place.
type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	EventsTopic   string
	ConsumerGroup string
}

type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

type CheckoutConfig struct {
	// RedirectDelay is how long the UI waits before following the
	// post-order redirect to the payment step.
	RedirectDelay time.Duration
	DraftTTL      time.Duration
}

type CatalogConfig struct {
	ImageConcurrency int
	DefaultPageSize  int
}

type FeatureFlags struct {
	EnableEvents        bool
	EnableCartBroadcast bool
	EnableAdmin         bool
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnvInt("SERVER_PORT", 8090),
			ReadTimeout: time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
		},
		API: ServiceConfig{
			BaseURL: strings.TrimRight(getEnvString("STOREFRONT_API_BASE_URL", "http://localhost:8080/api"), "/"),
			Timeout: getEnvDuration("API_TIMEOUT", 0),
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "storefront"),
			Password:     getEnvString("DB_PASSWORD", "storefront"),
			Name:         getEnvString("DB_NAME", "storefront"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			EventsTopic:   getEnvString("KAFKA_EVENTS_TOPIC", "storefront.events"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "storefront"),
		},
		Session: SessionConfig{
			CookieName: getEnvString("SESSION_COOKIE_NAME", "sf_session"),
			MaxAge:     getEnvDuration("SESSION_MAX_AGE", 10*365*24*time.Hour),
			Secure:     getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		Checkout: CheckoutConfig{
			RedirectDelay: getEnvDuration("CHECKOUT_REDIRECT_DELAY", 0),
			DraftTTL:      getEnvDuration("CHECKOUT_DRAFT_TTL", 30*time.Minute),
		},
		Catalog: CatalogConfig{
			ImageConcurrency: getEnvInt("CATALOG_IMAGE_CONCURRENCY", 4),
			DefaultPageSize:  getEnvInt("CATALOG_PAGE_SIZE", 20),
		},
		Features: FeatureFlags{
			EnableEvents:        getEnvBool("FEATURE_EVENTS", false),
			EnableCartBroadcast: getEnvBool("FEATURE_CART_BROADCAST", false),
			EnableAdmin:         getEnvBool("FEATURE_ADMIN", true),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("1.5s") and plain integers,
// which are read as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
