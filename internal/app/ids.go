package app

import (
	"sync"
	"time"
)

// TimeIDs hands out unix-millisecond ids, bumped so that each id is strictly
// greater than the previous one even within the same millisecond.
type TimeIDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewTimeIDs(now func() time.Time) *TimeIDs {
	if now == nil {
		now = time.Now
	}
	return &TimeIDs{now: now}
}

func (g *TimeIDs) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
