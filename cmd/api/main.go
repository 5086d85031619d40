package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"luxestay/internal/adapters/gateway"
	server "luxestay/internal/adapters/http_server"
	"luxestay/internal/adapters/inventory"
	"luxestay/internal/adapters/observability"
	redisad "luxestay/internal/adapters/redis"
	"luxestay/internal/app"
	"luxestay/internal/domain"
	"luxestay/internal/shared"
	"luxestay/internal/storage/memory"
	mysqlrepo "luxestay/internal/storage/mysql"
)

// catalogStore is what the catalog, admin and review services need.
type catalogStore interface {
	domain.HotelRepository
	domain.ReviewRepository
}

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// bookings and payments only live for the process
	mem := memory.New()
	var store catalogStore = mem

	switch cfg.Store {
	case "mysql":
		if cfg.MigrationsPath != "" {
			if err := mysqlrepo.Migrate(cfg.MigrationsPath, cfg.MySQLDSN); err != nil {
				log.Fatal().Err(err).Msg("migrate failed")
			}
			log.Info().Str("source", cfg.MigrationsPath).Msg("migrations applied")
		}
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()
		log.Info().Msg("database connection ok")
		store = mysqlrepo.New(db)
	default:
		log.Info().Msg("using in-memory catalog")
	}

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, catalog cache disabled")
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	ids := app.NewTimeIDs(nil)
	catalog := app.NewCatalogService(store, cache, cfg.CacheTTL)

	if cfg.Store == "memory" {
		seedMemory(ctx, cfg.SeedFile, mem, store, catalog)
	}

	var avail domain.AvailabilityChecker = inventory.NewSimulated(cfg.AvailabilityDelay, uint64(time.Now().UnixNano()))
	if cfg.InventoryBase != "" {
		c, err := inventory.New(cfg.InventoryBase, cfg.InventoryKey, cfg.InventoryRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize inventory client")
		}
		avail = c
		log.Info().Str("base", cfg.InventoryBase).Msg("availability from inventory service")
	}
	gw := gateway.NewSimulated(cfg.PaymentDelay, cfg.DeclineCards)

	sessions := app.NewSessions(cfg.SessionTTL,
		func() *app.BookingWorkflow {
			return app.NewBookingWorkflow(avail, mem, app.BookingOptions{ProcessingDelay: cfg.BookingDelay, Hotels: catalog})
		},
		func() *app.PaymentWorkflow {
			return app.NewPaymentWorkflow(gw, mem, mem, app.PaymentOptions{TaxRate: cfg.TaxRate, Currency: cfg.Currency})
		},
		nil,
	)

	// http
	srv := server.New(15 * time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Catalog:  catalog,
		Admin:    app.NewAdminService(store, catalog, ids),
		Reviews:  app.NewReviewService(store, catalog, ids, nil),
		Sessions: sessions,
		Ledger:   app.NewLedgerService(mem, mem, cfg.TaxRate),
	})
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.Store).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gctx, time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

// seedMemory fills the in-memory catalog from the seed file, or from the
// built-in demo data when the file is missing.
func seedMemory(ctx context.Context, path string, mem *memory.Store, store catalogStore, catalog *app.CatalogService) {
	recs, err := app.LoadSeedFile(path)
	if err != nil {
		log.Info().Str("file", path).Err(err).Msg("no seed file, using demo catalog")
		for _, h := range memory.SeedHotels() {
			_ = mem.UpsertHotel(ctx, h)
		}
		for _, r := range memory.SeedReviews() {
			_ = mem.UpsertReview(ctx, r)
		}
		return
	}
	seeder := app.NewSeedService(store, store, catalog, nil)
	for _, rec := range recs {
		if _, _, err := seeder.SeedHotel(ctx, rec); err != nil {
			log.Warn().Err(err).Msg("seed record skipped")
		}
	}
	log.Info().Str("file", path).Int("records", len(recs)).Msg("catalog seeded")
}
