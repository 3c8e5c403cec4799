package main

import (
	"log"
	"net/http"

	"noah-food/config"
	httpapi "noah-food/web-svc/internal/api/http"
	"noah-food/web-svc/internal/service"
	"noah-food/web-svc/internal/storage"
	"noah-food/web-svc/internal/upstream"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	var redisClient *redis.Client
	if cfg.StorageDriver == config.StorageRedis || cfg.MenuCacheTTL > 0 {
		redisClient = config.MustInitRedis(cfg)
		defer redisClient.Close()
	}

	var store storage.KeyValueStore
	switch cfg.StorageDriver {
	case config.StorageRedis:
		store = storage.NewRedisStore(redisClient, "noah:", 0)
	case config.StoragePostgres:
		db := config.MustInitPostgres(cfg)
		defer db.Close()
		if err := storage.Migrate(db); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		store = storage.NewPostgresStore(db)
	default:
		store = storage.NewMemoryStore()
	}

	deps, closeDeps := newDependencies(cfg, redisClient)
	defer closeDeps()

	handler := newRouter(cfg, store, deps)

	log.Printf("web-svc starting on %s (storage=%s, upstream=%s)", cfg.HTTPAddr, cfg.StorageDriver, cfg.UpstreamBaseURL)
	if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
		log.Fatal(err)
	}
}

// newDependencies wires the upstream client and the optional menu cache and
// order event publisher. The returned func releases the publisher.
func newDependencies(cfg config.Config, redisClient *redis.Client) (service.Dependencies, func()) {
	deps := service.Dependencies{
		API:            upstream.NewClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
		DefaultBaseURL: cfg.UpstreamBaseURL,
		HandoffDelay:   cfg.CheckoutHandoffDelay,
	}
	if cfg.MenuCacheTTL > 0 && redisClient != nil {
		deps.MenuCache = storage.NewRedisMenuCache(redisClient, cfg.MenuCacheTTL)
	}

	closeFn := func() {}
	if cfg.KafkaBroker != "" {
		writer := config.NewKafkaWriter(cfg)
		deps.Publisher = storage.NewKafkaPublisher(writer)
		closeFn = func() {
			if err := writer.Close(); err != nil {
				log.Printf("Warning: failed to close kafka writer: %v", err)
			}
		}
	} else {
		log.Println("Warning: KAFKA_BROKER not set, order events are disabled")
	}
	return deps, closeFn
}

func newRouter(cfg config.Config, store storage.KeyValueStore, deps service.Dependencies) http.Handler {
	registry := httpapi.NewRegistry(store, func(scoped service.Storage) *service.Workspace {
		return service.NewWorkspace(scoped, deps)
	}, cfg.WorkspaceCacheSize, cfg.WorkspaceIdleTTL)
	qr := service.TrackingQRGenerator{BaseURL: cfg.PublicBaseURL}
	return httpapi.NewHandler(registry, qr, cfg.StatusPollInterval).SetupRoutes(cfg.CORSAllowedOrigins)
}
