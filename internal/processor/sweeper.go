package processor

import (
	"context"
	"time"

	"github.com/nimasrn/paywise/internal/services"
	"github.com/nimasrn/paywise/pkg/logger"
)

type PaymentExpirer interface {
	ExpireOverdue(ctx context.Context) (*services.ExpiryResult, error)
}

// ExpirySweeper periodically expires overdue payment links.
type ExpirySweeper struct {
	expirer  PaymentExpirer
	interval time.Duration
}

func NewExpirySweeper(expirer PaymentExpirer, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ExpirySweeper{
		expirer:  expirer,
		interval: interval,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *ExpirySweeper) Run(ctx context.Context) {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *ExpirySweeper) Sweep(ctx context.Context) int {
	res, err := s.expirer.ExpireOverdue(ctx)
	if err != nil {
		logger.Error("Expiry sweep failed", "error", err)
		if res == nil {
			return 0
		}
	}
	return len(res.Expired)
}
