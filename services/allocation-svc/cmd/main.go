// Command allocation-svc serves the virtual network bandwidth allocation
// engine over gRPC.
//
// Configuration is read from config.yaml (or CONFIG_PATH) and NETALLOC_*
// environment variables. The service runs without PostgreSQL or Redis:
//
//   - database.enabled=false keeps run history in memory (history.max_items)
//   - cache.enabled=false disables result caching
//   - history.enabled=false turns the run history RPCs off
//
// Example:
//
//	NETALLOC_DATABASE_ENABLED=true \
//	NETALLOC_DATABASE_HOST=localhost \
//	NETALLOC_CACHE_ENABLED=true \
//	NETALLOC_CACHE_DRIVER=redis \
//	go run ./services/allocation-svc/cmd
package main

import (
	"context"
	"log"

	allocationv1 "netalloc/pkg/api/allocation/v1"
	"netalloc/pkg/cache"
	"netalloc/pkg/config"
	"netalloc/pkg/logger"
	"netalloc/pkg/server"
	"netalloc/services/allocation-svc/internal/repository"
	"netalloc/services/allocation-svc/internal/service"
)

func main() {
	cfg, err := config.LoadWithServiceDefaults("allocation-svc", 50051)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx := context.Background()

	// История запусков
	history, err := repository.NewHistory(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open run history", "error", err)
	}
	defer history.Close()
	logger.Log.Info("Run history", "backend", history.Backend, "max_items", cfg.History.MaxItems)

	// Кэш результатов перебора, при ошибке работаем без него
	var results *cache.AllocationCache
	if cfg.Cache.Enabled {
		base, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("Failed to create cache, continuing without cache", "error", err)
		} else {
			defer base.Close()
			results = cache.NewAllocationCache(base, cfg.Cache.DefaultTTL)
			logger.Log.Info("Allocation cache initialized",
				"driver", cfg.Cache.Driver,
				"ttl", cfg.Cache.DefaultTTL,
			)
		}
	}

	srv := server.New(cfg)

	svc := service.NewAllocationService(service.ConfigFrom(cfg), history.Runs, results, srv.Metrics())
	allocationv1.RegisterAllocationServiceServer(srv.GetEngine(), svc)

	logger.Log.Info("Starting allocation service",
		"port", cfg.GRPC.Port,
		"max_hops", cfg.Allocation.MaxHops,
		"workers", cfg.Allocation.Workers,
		"coupling", cfg.Allocation.Coupling,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server error", "error", err)
	}

	if results != nil {
		if st, err := results.Stats(ctx); err == nil {
			logger.Log.Info("Allocation cache stats",
				"keys", st.TotalKeys,
				"hits", st.Hits,
				"misses", st.Misses,
				"hit_rate", st.HitRate,
			)
		}
	}
}
