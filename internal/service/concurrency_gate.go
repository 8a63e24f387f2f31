package service

import (
	"context"
	"log"

	"github.com/iliyamo/auth-session-service/internal/repository"
)

// ConcurrencyGate maintains the single global active-session counter.
// The counter is advisory: CheckLimit reports when the configured ceiling
// is reached but no login path rejects on it.  The decrement clamps at
// zero because a negative count always signals a missed increment or a
// double decrement upstream, and a monitoring number must never go
// visibly negative.
type ConcurrencyGate struct {
	repo *repository.SessionRepo
	max  int64
}

func NewConcurrencyGate(repo *repository.SessionRepo, max int64) *ConcurrencyGate {
	return &ConcurrencyGate{repo: repo, max: max}
}

// Increment bumps the counter. Failures are logged and swallowed: the
// counter is bookkeeping and must never fail a login that already
// committed its primary writes.
func (g *ConcurrencyGate) Increment(ctx context.Context) {
	if _, err := g.repo.IncrementActive(ctx); err != nil {
		log.Printf("gate: increment failed | err=%v", err)
	}
}

// Decrement lowers the counter, clamping at zero. The clamp itself is a
// read-then-write race, but it only corrects a monitoring number and
// never feeds an admission decision, so the race is tolerated.
func (g *ConcurrencyGate) Decrement(ctx context.Context) {
	n, err := g.repo.DecrementActive(ctx)
	if err != nil {
		log.Printf("gate: decrement failed | err=%v", err)
		return
	}
	if n < 0 {
		log.Printf("gate: counter went negative, clamping to zero | observed=%d", n)
		if _, err := g.repo.IncrementActive(ctx); err != nil {
			log.Printf("gate: clamp correction failed | err=%v", err)
		}
	}
}

// ActiveCount reads the current counter value; a read failure degrades
// to zero.
func (g *ConcurrencyGate) ActiveCount(ctx context.Context) int64 {
	n, err := g.repo.ActiveCount(ctx)
	if err != nil {
		log.Printf("gate: read failed | err=%v", err)
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// CheckLimit reports whether the active count has reached the configured
// ceiling. Purely observational.
func (g *ConcurrencyGate) CheckLimit(ctx context.Context) bool {
	return g.ActiveCount(ctx) >= g.max
}
