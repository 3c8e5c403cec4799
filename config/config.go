package config

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTPAddr             string
	UpstreamBaseURL      string
	PublicBaseURL        string
	UpstreamTimeout      time.Duration
	StorageDriver        string
	RedisHost            string
	RedisPort            string
	DBHost               string
	DBPort               string
	DBName               string
	DBUser               string
	DBPassword           string
	KafkaBroker          string
	OrderEventsTopic     string
	MenuCacheTTL         time.Duration
	StatusPollInterval   time.Duration
	CheckoutHandoffDelay time.Duration
	CORSAllowedOrigins   []string
	WorkspaceCacheSize   int
	WorkspaceIdleTTL     time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("UPSTREAM_BASE_URL", "http://127.0.0.1:8000/api")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")
	v.SetDefault("STORAGE_DRIVER", StorageMemory)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "noah_food")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("KAFKA_BROKER", "")
	v.SetDefault("ORDER_EVENTS_TOPIC", "order-events")
	v.SetDefault("MENU_CACHE_TTL", "0s")
	v.SetDefault("STATUS_POLL_INTERVAL", "12s")
	v.SetDefault("CHECKOUT_HANDOFF_DELAY", "600ms")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("WORKSPACE_CACHE_SIZE", 10000)
	v.SetDefault("WORKSPACE_IDLE_TTL", "30m")

	cfg := Config{
		HTTPAddr:             v.GetString("HTTP_ADDR"),
		UpstreamBaseURL:      strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		PublicBaseURL:        strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		UpstreamTimeout:      v.GetDuration("UPSTREAM_TIMEOUT"),
		StorageDriver:        strings.ToLower(v.GetString("STORAGE_DRIVER")),
		RedisHost:            v.GetString("REDIS_HOST"),
		RedisPort:            v.GetString("REDIS_PORT"),
		DBHost:               v.GetString("DB_HOST"),
		DBPort:               v.GetString("DB_PORT"),
		DBName:               v.GetString("DB_NAME"),
		DBUser:               v.GetString("DB_USER"),
		DBPassword:           v.GetString("DB_PASSWORD"),
		KafkaBroker:          v.GetString("KAFKA_BROKER"),
		OrderEventsTopic:     v.GetString("ORDER_EVENTS_TOPIC"),
		MenuCacheTTL:         v.GetDuration("MENU_CACHE_TTL"),
		StatusPollInterval:   v.GetDuration("STATUS_POLL_INTERVAL"),
		CheckoutHandoffDelay: v.GetDuration("CHECKOUT_HANDOFF_DELAY"),
		CORSAllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		WorkspaceCacheSize:   v.GetInt("WORKSPACE_CACHE_SIZE"),
		WorkspaceIdleTTL:     v.GetDuration("WORKSPACE_IDLE_TTL"),
	}

	switch cfg.StorageDriver {
	case StorageMemory, StorageRedis, StoragePostgres:
	default:
		return Config{}, errors.New("unknown STORAGE_DRIVER: " + cfg.StorageDriver)
	}
	return cfg, nil
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func (c Config) PostgresDSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
}

func MustInitPostgres(cfg Config) *sql.DB {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(cfg Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaWriter(cfg Config) *kafka.Writer {
	// Order events are sparse, so flush without waiting for a full batch.
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBroker),
		Topic:        cfg.OrderEventsTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
