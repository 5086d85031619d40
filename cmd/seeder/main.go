package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"luxestay/internal/adapters/observability"
	redisad "luxestay/internal/adapters/redis"
	"luxestay/internal/app"
	"luxestay/internal/domain"
	"luxestay/internal/shared"
	mysqlrepo "luxestay/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", cfg.SeedFile).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	recs, err := app.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("read seed file failed")
	}

	if cfg.MigrationsPath != "" {
		if err := mysqlrepo.Migrate(cfg.MigrationsPath, cfg.MySQLDSN); err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}
	}
	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	// drop stale catalog entries the API may have cached
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, skipping cache invalidation")
		} else {
			defer rc.Close()
			cache = rc
		}
	}
	seeder := app.NewSeedService(repo, repo, app.NewCatalogService(repo, cache, cfg.CacheTTL), nil)

	workers := cfg.SeedWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var hotels, reviews, failed atomic.Int64

	for i, rec := range recs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(i int, rec map[string]any) {
			defer wg.Done()
			defer sem.Release(1)

			h, n, err := seeder.SeedHotel(ctx, rec)
			if err != nil {
				failed.Add(1)
				log.Warn().Int("record", i).Err(err).Msg("seed failed")
				return
			}
			hotels.Add(1)
			reviews.Add(int64(n))
			log.Info().Int64("id", h.ID).Int("reviews", n).Msg("seed ok")
		}(i, rec)
	}

	wg.Wait()
	log.Info().
		Int64("hotels", hotels.Load()).
		Int64("reviews", reviews.Load()).
		Int64("failed", failed.Load()).
		Msg("seeding completed")
	if failed.Load() > 0 {
		log.Fatal().Msg("some records failed")
	}
}
