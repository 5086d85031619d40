package inventory

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"luxestay/internal/domain"
)

// Simulated stands in for the inventory service: after Delay it reports a
// uniformly random count of 1 to 10 free rooms.
type Simulated struct {
	Delay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulated(delay time.Duration, seed uint64) *Simulated {
	return &Simulated{Delay: delay, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Simulated) CheckAvailability(ctx context.Context, _ int64, _ domain.BookingRequest) (int, error) {
	if !sleepCtx(ctx, s.Delay) {
		return 0, ctx.Err()
	}
	s.mu.Lock()
	n := 1 + s.rng.IntN(10)
	s.mu.Unlock()
	return n, nil
}
