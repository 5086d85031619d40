package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"luxestay/internal/domain"
)

// ---- fakes ----

type fixedAvail struct {
	n     int
	err   error
	calls atomic.Int32
}

func (f *fixedAvail) CheckAvailability(ctx context.Context, hotelID int64, req domain.BookingRequest) (int, error) {
	f.calls.Add(1)
	return f.n, f.err
}

// blockingAvail holds every call until release is closed or ctx ends.
type blockingAvail struct {
	n       int
	release chan struct{}
	entered chan struct{}
}

func newBlockingAvail(n int) *blockingAvail {
	return &blockingAvail{n: n, release: make(chan struct{}), entered: make(chan struct{}, 8)}
}

func (b *blockingAvail) CheckAvailability(ctx context.Context, hotelID int64, req domain.BookingRequest) (int, error) {
	b.entered <- struct{}{}
	select {
	case <-b.release:
		return b.n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

type fakeGateway struct {
	mu      sync.Mutex
	err     error
	charged []domain.Charge
}

func (g *fakeGateway) Charge(ctx context.Context, c domain.Charge) (domain.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return domain.ChargeResult{}, g.err
	}
	g.charged = append(g.charged, c)
	return domain.ChargeResult{TransactionID: "TXN-TEST"}, nil
}

// jsonCache stores values the way a remote cache would: serialized.
type jsonCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  int
}

func (c *jsonCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *jsonCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}

func (c *jsonCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels++
	delete(c.store, key)
	return nil
}

// countingHotels wraps a repository and counts reads.
type countingHotels struct {
	domain.HotelRepository
	gets  atomic.Int32
	lists atomic.Int32
}

func (c *countingHotels) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	c.gets.Add(1)
	return c.HotelRepository.GetHotel(ctx, id)
}

func (c *countingHotels) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.Hotel, error) {
	c.lists.Add(1)
	return c.HotelRepository.ListHotels(ctx, q)
}

// ---- helpers ----

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func waitCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
