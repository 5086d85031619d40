// Package gateway holds the card processor used by the payment workflow.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"luxestay/internal/domain"
)

// Simulated approves every charge after Delay except for cards on the
// decline list.
type Simulated struct {
	Delay   time.Duration
	decline map[string]struct{}
}

// NewSimulated takes the declined card numbers as a comma-separated list;
// spaces inside a number are ignored.
func NewSimulated(delay time.Duration, declineCSV string) *Simulated {
	g := &Simulated{Delay: delay, decline: map[string]struct{}{}}
	for _, c := range strings.Split(declineCSV, ",") {
		c = strings.ReplaceAll(strings.TrimSpace(c), " ", "")
		if c != "" {
			g.decline[c] = struct{}{}
		}
	}
	return g
}

func (g *Simulated) Charge(ctx context.Context, c domain.Charge) (domain.ChargeResult, error) {
	if g.Delay > 0 {
		t := time.NewTimer(g.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return domain.ChargeResult{}, ctx.Err()
		case <-t.C:
		}
	}
	if _, ok := g.decline[c.CardDigits]; ok {
		log.Info().Str("card", lastFour(c.CardDigits)).Msg("charge declined")
		return domain.ChargeResult{}, fmt.Errorf("%w: card ending %s", domain.ErrPaymentDeclined, lastFour(c.CardDigits))
	}
	id := "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return domain.ChargeResult{TransactionID: id}, nil
}

func lastFour(digits string) string {
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
