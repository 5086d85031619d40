//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"luxestay/internal/adapters/gateway"
	server "luxestay/internal/adapters/http_server"
	"luxestay/internal/adapters/inventory"
	redisad "luxestay/internal/adapters/redis"
	"luxestay/internal/app"
	"luxestay/internal/domain"
	"luxestay/internal/storage/memory"
	mysqlrepo "luxestay/internal/storage/mysql"
)

// ---------- helpers ----------

func migrationsURL(t *testing.T) string {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = filepath.Join("..", "..", "migrations")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		t.Fatalf("migrations dir: %v", err)
	}
	if st, err := os.Stat(abs); err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", abs)
	}
	return "file://" + abs
}

func startMySQL(t *testing.T) *mysqlrepo.Repo {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=luxestay",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/luxestay?charset=utf8mb4&loc=UTC", resource.GetPort("3306/tcp"))
	if err := pool.Retry(func() error {
		db, err := mysqlrepo.Open(context.Background(), dsn)
		if err != nil {
			return err
		}
		return db.Close()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	if err := mysqlrepo.Migrate(migrationsURL(t), dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := mysqlrepo.Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return mysqlrepo.New(db)
}

// fakeInventory serves the availability API; it always has 3 rooms free.
func fakeInventory(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/availability", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("x-api-key") != "inv-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"available_rooms":3}}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, &hits
}

type client struct {
	t    *testing.T
	base string
	sid  string
}

func (c *client) call(method, path string, body any, dst any) int {
	c.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		c.t.Fatalf("request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sid != "" {
		req.Header.Set(server.SessionHeader, c.sid)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if dst != nil && res.StatusCode < 300 {
		if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
			c.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return res.StatusCode
}

func (c *client) must(code int, method, path string, body, dst any) {
	c.t.Helper()
	if got := c.call(method, path, body, dst); got != code {
		c.t.Fatalf("%s %s: status %d, want %d", method, path, got, code)
	}
}

func login(t *testing.T, base string, admin bool) *client {
	t.Helper()
	c := &client{t: t, base: base}
	var out struct {
		ID string `json:"id"`
	}
	c.must(http.StatusCreated, "POST", "/v1/sessions", map[string]any{"admin": admin}, &out)
	c.sid = out.ID
	return c
}

// ---------- the test ----------

func TestHTTP_EndToEnd_BookAndPay(t *testing.T) {
	repo := startMySQL(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	cache := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	inv, hits := fakeInventory(t)
	avail, err := inventory.New(inv.URL, "inv-key", 50)
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}

	// the catalog lives in MySQL; bookings and payments stay in process
	ledger := memory.New()
	ids := app.NewTimeIDs(nil)
	catalog := app.NewCatalogService(repo, cache, time.Minute)
	seed := app.NewSeedService(repo, repo, catalog, nil)
	recs, err := app.LoadSeedFile(filepath.Join("..", "..", "seed", "hotels.json"))
	if err != nil {
		t.Fatalf("seed file: %v", err)
	}
	for _, rec := range recs {
		if _, _, err := seed.SeedHotel(ctx, rec); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	gw := gateway.NewSimulated(0, "4000000000000002")
	tax := decimal.RequireFromString("0.10")
	sessions := app.NewSessions(time.Hour,
		func() *app.BookingWorkflow {
			return app.NewBookingWorkflow(avail, ledger, app.BookingOptions{ProcessingDelay: 20 * time.Millisecond, Hotels: catalog})
		},
		func() *app.PaymentWorkflow {
			return app.NewPaymentWorkflow(gw, ledger, ledger, app.PaymentOptions{TaxRate: tax})
		},
		nil,
	)
	srv := server.New(10 * time.Second)
	srv.MountHandlers(&server.Handlers{
		Catalog:  catalog,
		Admin:    app.NewAdminService(repo, catalog, ids),
		Reviews:  app.NewReviewService(repo, catalog, ids, nil),
		Sessions: sessions,
		Ledger:   app.NewLedgerService(ledger, ledger, tax),
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// catalog comes out of MySQL, then out of Redis
	anon := &client{t: t, base: ts.URL}
	var hotels []domain.Hotel
	anon.must(200, "GET", "/v1/hotels", nil, &hotels)
	if len(hotels) != 3 {
		t.Fatalf("hotels: %+v", hotels)
	}
	if len(mr.Keys()) == 0 {
		t.Fatalf("listing was not cached")
	}

	// admin adds a hotel; the cached list is dropped
	admin := login(t, ts.URL, true)
	var created domain.Hotel
	admin.must(http.StatusCreated, "POST", "/v1/admin/hotels", map[string]any{
		"name": "Harbor Inn", "location": "Boston, MA", "price": "150", "rooms": 12, "amenities": "WiFi, Bar",
	}, &created)
	anon.must(200, "GET", "/v1/hotels", nil, &hotels)
	if len(hotels) != 4 {
		t.Fatalf("after create: %d hotels", len(hotels))
	}

	// guest books it asynchronously
	guest := login(t, ts.URL, false)
	guest.must(200, "PUT", "/v1/booking/hotel", map[string]any{"hotel_id": created.ID}, nil)
	guest.must(200, "PUT", "/v1/booking/request", map[string]any{
		"check_in": "2025-06-01", "check_out": "2025-06-04", "guests": 2, "room_type": "suite",
	}, nil)

	var view app.BookingView
	guest.must(http.StatusAccepted, "POST", "/v1/booking/availability?async=true", nil, nil)
	waitFor(t, func() bool {
		guest.must(200, "GET", "/v1/booking", nil, &view)
		return view.State == domain.BookingAvailabilityKnown
	})
	if view.AvailableRooms != 3 || hits.Load() != 1 {
		t.Fatalf("availability: rooms=%d hits=%d", view.AvailableRooms, hits.Load())
	}

	guest.must(http.StatusAccepted, "POST", "/v1/booking/submit?async=true", nil, nil)
	if code := guest.call("POST", "/v1/booking/submit", nil, nil); code != http.StatusConflict {
		// busy while pending, confirmed once done: 409 either way
		t.Fatalf("second submit: %d", code)
	}
	waitFor(t, func() bool {
		guest.must(200, "GET", "/v1/booking", nil, &view)
		return view.State == domain.BookingConfirmed
	})
	if view.Booking == nil || view.Nights != 3 || !view.Total.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("confirmed: %+v", view)
	}

	var pay app.PaymentView
	guest.must(200, "PUT", "/v1/payment/details", map[string]any{
		"card_number": "4242 4242 4242 4242", "expiry": "0929", "cvv": "321", "cardholder_name": "Grace Hopper",
	}, nil)
	guest.must(http.StatusCreated, "POST", "/v1/payment/submit", nil, &pay)
	if pay.Payment == nil || !pay.Payment.Amount.Equal(decimal.NewFromInt(495)) || pay.Payment.BookingRef != view.Booking.Ref {
		t.Fatalf("payment: %+v", pay)
	}

	// review lands in MySQL and leads the list
	var rv domain.Review
	guest.must(http.StatusCreated, "POST", "/v1/reviews", map[string]any{
		"hotel_id": created.ID, "rating": 5, "comment": "Quiet rooms, great bar.",
	}, &rv)
	var reviews []domain.Review
	anon.must(200, "GET", fmt.Sprintf("/v1/reviews?hotel_id=%d", created.ID), nil, &reviews)
	if len(reviews) != 1 || reviews[0].ID != rv.ID || reviews[0].HotelName != "Harbor Inn" {
		t.Fatalf("reviews: %+v", reviews)
	}

	var b domain.Booking
	admin.must(200, "GET", "/v1/admin/bookings/"+view.Booking.Ref, nil, &b)
	if b.PaymentStatus != domain.PaymentSuccess {
		t.Fatalf("booking: %+v", b)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}
