package checkout

import (
	"context"
	"log"
	"time"
)

type expirer interface {
	ExpireCheckoutSessions(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically flips pending sessions past their deadline to
// expired. Housekeeping only: readers and the conditional terminal
// transition already treat such sessions as expired.
type Sweeper struct {
	repo     expirer
	interval time.Duration
}

func NewSweeper(repo expirer, interval time.Duration) *Sweeper {
	return &Sweeper{repo: repo, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := s.repo.ExpireCheckoutSessions(ctx, time.Now().UTC())
			if err != nil {
				log.Printf("expiry sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("expired %d stale checkout sessions", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
