package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	Store          string // memory|mysql
	MySQLDSN       string
	MigrationsPath string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	InventoryBase string
	InventoryKey  string
	InventoryRPS  int

	AvailabilityDelay time.Duration
	BookingDelay      time.Duration
	PaymentDelay      time.Duration

	TaxRate      decimal.Decimal
	Currency     string
	DeclineCards string

	SessionTTL time.Duration

	SeedFile    string
	SeedWorkers int
}

// Load reads the environment, after merging a .env file when one exists.
// Variables already set in the environment win over .env.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	ms := func(k string, def int) time.Duration { return time.Duration(atoi(k, def)) * time.Millisecond }

	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		HTTPAddr:          env("HTTP_ADDR", ":8080"),
		MetricsAddr:       env("METRICS_ADDR", ""),
		Store:             env("STORE", "memory"),
		MySQLDSN:          env("MYSQL_DSN", "root:root@tcp(localhost:3306)/luxestay?parseTime=true&charset=utf8mb4&loc=UTC"),
		MigrationsPath:    env("MIGRATIONS_PATH", "file://migrations"),
		RedisAddr:         env("REDIS_ADDR", ""),
		RedisPass:         env("REDIS_PASSWORD", ""),
		RedisDB:           atoi("REDIS_DB", 0),
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		InventoryBase:     env("INVENTORY_BASE_URL", ""),
		InventoryKey:      env("INVENTORY_API_KEY", ""),
		InventoryRPS:      atoi("INVENTORY_RPS", 5),
		AvailabilityDelay: ms("AVAILABILITY_DELAY_MS", 1000),
		BookingDelay:      ms("BOOKING_DELAY_MS", 1500),
		PaymentDelay:      ms("PAYMENT_DELAY_MS", 2000),
		TaxRate:           decimal.RequireFromString("0.10"),
		Currency:          env("CURRENCY", "USD"),
		DeclineCards:      env("DECLINE_CARDS", "4000000000000002"),
		SessionTTL:        time.Duration(atoi("SESSION_TTL_SECONDS", 3600)) * time.Second,
		SeedFile:          env("SEED_FILE", "seed/hotels.json"),
		SeedWorkers:       atoi("SEED_WORKERS", 4),
	}
	if v := os.Getenv("TAX_RATE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			c.TaxRate = d
		} else {
			log.Warn().Str("value", v).Msg("invalid TAX_RATE, using 0.10")
		}
	}
	if c.Store != "memory" && c.Store != "mysql" {
		log.Warn().Str("store", c.Store).Msg("unknown STORE, using memory")
		c.Store = "memory"
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
